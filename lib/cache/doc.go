// Package cache provides a redis backed cache for the match count of search
// queries.
package cache
