package xserror

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Sentinel Errors
// --------------------------------------------------------------------------

// The sentinels below can be matched with errors.Is against any error of the
// corresponding type, even when it was wrapped several times.
var (
	ErrTransport = errors.New("xs: transport error")
	ErrProtocol  = errors.New("xs: protocol error")
	ErrEncoding  = errors.New("xs: encoding error")
	ErrConfig    = errors.New("xs: config error")
	ErrReplica   = errors.New("xs: replica error")
)

// --------------------------------------------------------------------------
// Transport Error
// --------------------------------------------------------------------------

// Failure reasons reported by TransportError
const (
	ReasonTimeout = "timeout"
	ReasonClosed  = "closed"
	ReasonUnknown = "unknown"
)

// TransportError reports a failed connect, an incomplete write or read, or an
// operation on a closed or broken connection.
type TransportError struct {
	Op     string // connect, send, recv or check
	Done   int    // bytes transferred before the failure
	Total  int    // bytes that should have been transferred
	Reason string // timeout, closed or unknown (send/recv only)
	Msg    string // free text message (connect/check)
	Err    error  // underlying cause, may be nil
}

func (e *TransportError) Error() string {
	var msg string
	switch e.Op {
	case "send":
		msg = fmt.Sprintf("Failed to send the data to server completely (SIZE:%d/%d, REASON:%s)", e.Done, e.Total, e.Reason)
	case "recv":
		msg = fmt.Sprintf("Failed to recv the data from server completely (SIZE:%d/%d, REASON:%s)", e.Done, e.Total, e.Reason)
	default:
		msg = e.Msg
	}
	if e.Err != nil && e.Op == "connect" {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// --------------------------------------------------------------------------
// Protocol Error
// --------------------------------------------------------------------------

// ProtocolError is either an error frame sent by the server (Code > 0) or a
// response whose opcode or argument did not match what the caller expected
// (Unexpected is set).
type ProtocolError struct {
	Code       int
	Msg        string
	Unexpected bool
	Cmd        uint8
	Arg        uint16
}

// NewServerError creates a ProtocolError from a server error frame
func NewServerError(code int, msg string) *ProtocolError {
	return &ProtocolError{Code: code, Msg: msg}
}

// NewUnexpectedError creates a ProtocolError for a response that does not match
func NewUnexpectedError(context string, cmd uint8, arg uint16) *ProtocolError {
	return &ProtocolError{
		Msg:        fmt.Sprintf("Unexpected respond%s {CMD:%d, ARG:%d}", context, cmd, arg),
		Unexpected: true,
		Cmd:        cmd,
		Arg:        arg,
	}
}

func (e *ProtocolError) Error() string {
	if e.Unexpected {
		return e.Msg
	}
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// --------------------------------------------------------------------------
// Encoding / Config Errors
// --------------------------------------------------------------------------

// EncodingError is raised when a value can not be put on the wire, e.g. a range
// boundary that is too long or a value the charset conversion rejects.
type EncodingError struct {
	Msg string
	Err error
}

// NewEncodingError creates a new EncodingError with a formatted message
func NewEncodingError(format string, args ...any) *EncodingError {
	return &EncodingError{Msg: fmt.Sprintf(format, args...)}
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
func (e *EncodingError) Unwrap() error        { return e.Err }

// ConfigError is raised for invalid project files, field schemes and
// tokenizer references.
type ConfigError struct {
	Msg string
	Err error
}

// NewConfigError creates a new ConfigError with a formatted message
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
func (e *ConfigError) Unwrap() error        { return e.Err }

// --------------------------------------------------------------------------
// Replica Error
// --------------------------------------------------------------------------

// ReplicaError wraps the failure of a command replayed on a replica index
// server after the primary server accepted it.
type ReplicaError struct {
	Endpoint string
	Err      error
}

func (e *ReplicaError) Error() string {
	return fmt.Sprintf("replica %s: %v", e.Endpoint, e.Err)
}

func (e *ReplicaError) Is(target error) bool { return target == ErrReplica }
func (e *ReplicaError) Unwrap() error        { return e.Err }

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// Code returns the server error code carried by err, or 0 if err is not a
// server error frame.
func Code(err error) int {
	var pe *ProtocolError
	if errors.As(err, &pe) && !pe.Unexpected {
		return pe.Code
	}
	return 0
}
