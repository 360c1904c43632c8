package tcp

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
	"github.com/hightman/xunsearch/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(address string, config common.ClientConfig) (io.ReadWriteCloser, error) {
	timeout := config.ConnectTimeoutSecond
	if timeout <= 0 {
		timeout = common.DefaultConnectTimeoutSecond
	}
	return net.DialTimeout("tcp", address, time.Duration(timeout)*time.Second)
}

func (c *clientConnector) UpgradeConnection(conn io.ReadWriteCloser, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return fmt.Errorf("not a tcp connection")
	}

	if err := tcpConn.SetNoDelay(config.TCPNoDelay); err != nil {
		return err
	}

	if config.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(config.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}
	return nil
}

func (c *clientConnector) WriteOnly() bool {
	return false
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
