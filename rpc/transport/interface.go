package transport

import (
	"github.com/hightman/xunsearch/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is a single blocking connection to an xunsearch server.
//
// A transport is not safe for concurrent use. Any failed write or read
// closes the underlying connection and leaves the transport Broken until the
// next successful Connect.
type IRPCClientTransport interface {
	// Connect closes any prior connection and connects to the given address.
	// The transport is Broken until the connect succeeded.
	Connect(address string, config common.ClientConfig) error
	// Write writes all buffers or fails with a TransportError reporting the
	// number of bytes sent and the reason.
	Write(bufs ...[]byte) error
	// Read reads exactly n bytes or fails with a TransportError.
	Read(n int) ([]byte, error)
	// Close closes the connection without sending anything and marks the
	// transport Broken.
	Close() error
	// Connected reports whether a connection exists and is not Broken.
	Connected() bool
	// WriteOnly reports whether the transport is a sink that never answers.
	WriteOnly() bool
	// GetName returns the name of the transport medium (tcp, unix, file).
	GetName() string
}
