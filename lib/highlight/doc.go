// Package highlight marks the terms of a search query in result text.
package highlight
