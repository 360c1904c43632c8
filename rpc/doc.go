// Package rpc contains the client side of the xunsearch server protocol. It
// is the communication layer between applications and the index and search
// servers of a project.
//
// The package is organized into several subpackages:
//
//   - common: The Command frame and its binary codec, the opcode and response
//     code tables, the client configuration and the logger.
//
//   - transport: Connection abstractions with pluggable implementations
//     (TCP, Unix sockets and a write only file sink).
//
//   - client: The dispatcher of one server connection and the Index, Search
//     and Scws APIs of a project built on it.
package rpc
