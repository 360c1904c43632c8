// Package common provides the data structures shared by the transport and
// client layers of the xunsearch client: the Command frame and its wire
// codec, the opcode / argument / code tables of the server protocol, the
// client configuration and the custom logger.
//
// Key Components:
//
//   - Command: a single frame exchanged with the server. The wire format is an
//     8 byte little endian header (opcode, arg1, arg2, length of buf1, length
//     of buf) followed by buf and buf1. Buf1 is limited to 255 bytes and is
//     silently truncated by Serialize.
//
//   - Opcode: the operation of a Command. Opcodes with the high bit set are
//     fire-and-forget, the server never answers them. Every opcode has a
//     readable name for logs.
//
//   - Codes: arguments of OK and ERR responses together with the messages the
//     server sends for every error code.
//
//   - ClientConfig: timeouts and socket options of a server connection.
//
//   - Logger: a dragonboat logger.ILogger implementation used for all
//     xs loggers, configured once with InitLoggers.
package common
