package unix

import (
	"io"
	"net"
	"time"

	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
	"github.com/hightman/xunsearch/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(address string, config common.ClientConfig) (io.ReadWriteCloser, error) {
	timeout := config.ConnectTimeoutSecond
	if timeout <= 0 {
		timeout = common.DefaultConnectTimeoutSecond
	}
	return net.DialTimeout("unix", address, time.Duration(timeout)*time.Second)
}

func (c *clientConnector) UpgradeConnection(conn io.ReadWriteCloser, config common.ClientConfig) error {
	return nil
}

func (c *clientConnector) WriteOnly() bool {
	return false
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
