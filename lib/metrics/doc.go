// Package metrics defines the prometheus collectors of bulk imports and the
// count cache, and serves them together with the wire level metrics of the
// client.
package metrics
