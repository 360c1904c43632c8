// Package xserror defines the error types shared by all xunsearch client
// packages.
//
// Every error type matches one sentinel with errors.Is:
//
//   - TransportError (ErrTransport): connect failures, incomplete writes or
//     reads, use of a closed or broken connection.
//   - ProtocolError (ErrProtocol): error frames sent by the server and
//     responses that do not match the expected opcode / argument.
//   - EncodingError (ErrEncoding): values that can not be encoded.
//   - ConfigError (ErrConfig): invalid project configuration or scheme.
//   - ReplicaError (ErrReplica): a replica index server failed a command that
//     the primary server accepted.
//
// Encoding and config errors are always raised before a byte is written.
package xserror
