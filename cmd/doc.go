// Package cmd implements the xs command-line client of xunsearch. It provides
// a hierarchical command structure for managing the index of a project and
// for searching it.
//
// The package is organized into several subpackages:
//
//   - index: Commands for index operations (import, clean, flush, synonyms, dictionary, etc.)
//   - search: Commands for search operations (query, count, hot queries, corrections, perf, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See xs -help for a list of all commands.
package cmd
