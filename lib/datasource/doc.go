// Package datasource provides the record sources of a bulk import: json
// lines, csv files, postgres tables or queries and kafka topics.
//
// Sources are created with Open and read with Next until io.EOF. Malformed
// items are logged, counted and skipped.
package datasource
