package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// Medium names the kind of connection an endpoint points to
type Medium string

const (
	MediumTCP  Medium = "tcp"
	MediumUnix Medium = "unix"
	MediumFile Medium = "file"
)

// Endpoint is a parsed connection string
type Endpoint struct {
	Medium  Medium
	Address string // host:port, socket path or file path
}

// ParseEndpoint parses a connection string as found in a project
// configuration:
//
//	8383                -> tcp localhost:8383
//	host:8383           -> tcp host:8383
//	file:///tmp/out.bin -> write only file sink
//	unix:///tmp/xs.sock -> unix socket
//	/tmp/xs.sock        -> unix socket
func ParseEndpoint(conn string) (Endpoint, error) {
	conn = strings.TrimSpace(conn)
	switch {
	case conn == "":
		return Endpoint{}, fmt.Errorf("empty connection string")
	case isPort(conn):
		return Endpoint{Medium: MediumTCP, Address: "localhost:" + conn}, nil
	case strings.HasPrefix(conn, "file://"):
		return Endpoint{Medium: MediumFile, Address: conn[len("file://"):]}, nil
	case strings.HasPrefix(conn, "unix://"):
		return Endpoint{Medium: MediumUnix, Address: conn[len("unix://"):]}, nil
	case strings.Contains(conn, ":"):
		return Endpoint{Medium: MediumTCP, Address: conn}, nil
	default:
		return Endpoint{Medium: MediumUnix, Address: conn}, nil
	}
}

// String returns the canonical connection string of the endpoint
func (e Endpoint) String() string {
	if e.Medium == MediumTCP {
		return e.Address
	}
	return string(e.Medium) + "://" + e.Address
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0 && n < 65536
}
