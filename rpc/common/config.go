package common

import (
	"fmt"
	"strings"
)

// Default timeouts used when a ClientConfig leaves them at zero
const (
	DefaultConnectTimeoutSecond = 5
	DefaultTimeoutSecond        = 30
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds the settings of a single server connection
type ClientConfig struct {
	// TimeoutSecond bounds every blocking write and read, 0 disables the deadline
	TimeoutSecond int
	// ConnectTimeoutSecond bounds the connect of tcp and unix sockets
	ConnectTimeoutSecond int
	// TCPNoDelay disables Nagle's algorithm on tcp connections
	TCPNoDelay bool
	// TCPKeepAliveSec enables tcp keep alive probes, 0 disables them
	TCPKeepAliveSec int
	// LogLevel of all xs loggers
	LogLevel string
}

// DefaultClientConfig returns the configuration used by the cli and tests
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		TimeoutSecond:        DefaultTimeoutSecond,
		ConnectTimeoutSecond: DefaultConnectTimeoutSecond,
		TCPNoDelay:           true,
		LogLevel:             "info",
	}
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Connect Timeout", fmt.Sprintf("%d sec", c.ConnectTimeoutSecond))

	addSection("TCP")
	addField("No Delay", fmt.Sprintf("%t", c.TCPNoDelay))
	addField("Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSec))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
