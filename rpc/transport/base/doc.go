// Package base provides the medium independent part of the client transport.
// It implements transport.IRPCClientTransport on top of a small connector
// interface so that tcp, unix sockets and file sinks only differ in how a
// connection is opened.
//
// The package focuses on:
//   - Blocking writes of several buffers in one call (net.Buffers)
//   - Blocking reads of an exact number of bytes
//   - Per call deadlines derived from ClientConfig.TimeoutSecond
//   - Turning the connection Broken after any incomplete write or read
//
// Key Components:
//
//   - IClientConnector: medium specific connect, upgrade and write only flag.
//
//   - clientTransport: the single connection state machine
//     (closed, connecting, open, broken). Failures are reported as
//     xserror.TransportError with the number of bytes transferred and a
//     reason of timeout, closed or unknown.
//
// Thread Safety:
//
//	A transport is owned by exactly one caller and is not safe for
//	concurrent use.
package base
