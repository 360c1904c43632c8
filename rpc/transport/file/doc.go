// Package file implements a write only sink for the client transport.
//
// A "file://" connection string opens (and truncates) a local file and every
// frame that would have been sent to the server is appended to it. Nothing
// is ever read back: the dispatcher treats blocking commands on a file sink
// as immediately successful. The recorded stream can later be replayed to an
// index server, which makes the sink useful for offline bulk imports.
package file
