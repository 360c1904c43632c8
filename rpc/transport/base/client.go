package base

import (
	"io"
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger(common.LoggerTransport)

var (
	bytesSent     = metrics.NewCounter("xs_transport_bytes_sent_total")
	bytesReceived = metrics.NewCounter("xs_transport_bytes_received_total")
	ioFailures    = metrics.NewCounter("xs_transport_failures_total")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for medium specific connection operations
type IClientConnector interface {
	// Connect opens a single connection to the given address
	Connect(address string, config common.ClientConfig) (io.ReadWriteCloser, error)

	// GetName returns the name of the transport medium (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies medium specific settings to an established connection
	UpgradeConnection(conn io.ReadWriteCloser, config common.ClientConfig) error

	// WriteOnly reports whether connections of this medium never answer
	WriteOnly() bool
}

// deadliner is implemented by net.Conn and *os.File
type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// clientTransport implements the blocking client transport independent of
// the specific transport medium (unix, tcp, file)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      io.ReadWriteCloser
	address   string
	broken    bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix and file)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(address string, config common.ClientConfig) error {
	t.Close()

	t.config = config
	t.address = address
	t.broken = true

	conn, err := t.connector.Connect(address, config)
	if err != nil {
		t.conn = nil
		return &xserror.TransportError{
			Op:  "connect",
			Msg: "Failed to connect to server (" + t.connector.GetName() + "://" + address + ")",
			Err: err,
		}
	}

	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		_ = conn.Close()
		t.conn = nil
		return &xserror.TransportError{Op: "connect", Msg: "Failed to upgrade connection to " + address, Err: err}
	}

	t.conn = conn
	t.broken = false
	Logger.Debugf("Connected to %s using %s transport", address, t.connector.GetName())
	return nil
}

func (t *clientTransport) Write(bufs ...[]byte) error {
	if err := t.check(); err != nil {
		return err
	}

	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	if total == 0 {
		return nil
	}

	if d, ok := t.conn.(deadliner); ok && t.config.TimeoutSecond > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(time.Duration(t.config.TimeoutSecond) * time.Second))
	}

	// net.Buffers consumes its receiver, so hand it a private copy of the slice
	nb := make(net.Buffers, len(bufs))
	copy(nb, bufs)
	n, err := nb.WriteTo(t.conn)
	bytesSent.Add(int(n))

	if err != nil || int(n) != total {
		reason := failureReason(err)
		t.fail()
		Logger.Warningf("Write to %s failed after %d/%d bytes: %s (%v)", t.address, n, total, reason, err)
		return &xserror.TransportError{Op: "send", Done: int(n), Total: total, Reason: reason, Err: err}
	}
	return nil
}

func (t *clientTransport) Read(n int) ([]byte, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	if d, ok := t.conn.(deadliner); ok && t.config.TimeoutSecond > 0 {
		_ = d.SetReadDeadline(time.Now().Add(time.Duration(t.config.TimeoutSecond) * time.Second))
	}

	buf := make([]byte, n)
	m, err := io.ReadFull(t.conn, buf)
	bytesReceived.Add(m)

	if err != nil {
		reason := failureReason(err)
		t.fail()
		Logger.Warningf("Read from %s failed after %d/%d bytes: %s (%v)", t.address, m, n, reason, err)
		return nil, &xserror.TransportError{Op: "recv", Done: m, Total: n, Reason: reason, Err: err}
	}
	return buf, nil
}

func (t *clientTransport) Close() error {
	if t.conn == nil || t.broken {
		t.broken = true
		return nil
	}
	t.broken = true
	Logger.Debugf("Closing connection to %s", t.address)
	return t.conn.Close()
}

func (t *clientTransport) Connected() bool {
	return t.conn != nil && !t.broken
}

func (t *clientTransport) WriteOnly() bool {
	return t.connector.WriteOnly()
}

func (t *clientTransport) GetName() string {
	return t.connector.GetName()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// check returns an error if the connection can not be used
func (t *clientTransport) check() error {
	if t.conn == nil {
		return &xserror.TransportError{Op: "check", Msg: "No server connection"}
	}
	if t.broken {
		return &xserror.TransportError{Op: "check", Msg: "Broken server connection"}
	}
	return nil
}

// fail closes the connection after an io error, nothing is sent anymore
func (t *clientTransport) fail() {
	ioFailures.Inc()
	if t.conn != nil && !t.broken {
		_ = t.conn.Close()
	}
	t.broken = true
}
