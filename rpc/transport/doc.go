// Package transport defines the client transport used to talk to the
// xunsearch index and search servers.
//
// The package focuses on:
//   - Defining the blocking, single connection transport contract
//   - Parsing connection strings into endpoints (tcp, unix socket, file sink)
//
// Key Components:
//
//   - IRPCClientTransport: connect, write, read and close one connection. A
//     failed write or read leaves the transport Broken.
//
//   - Endpoint: a parsed connection string. A bare port number means
//     localhost, "file://" selects a write only sink that records the byte
//     stream instead of talking to a server.
//
// Implementations live in the sub packages tcp, unix and file, all built on
// the medium independent transport in package base.
package transport
