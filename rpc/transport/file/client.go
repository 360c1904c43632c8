package file

import (
	"fmt"
	"io"
	"os"

	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
	"github.com/hightman/xunsearch/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for local files
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "file"
}

func (c *clientConnector) Connect(address string, config common.ClientConfig) (io.ReadWriteCloser, error) {
	f, err := os.Create(address)
	if err != nil {
		return nil, fmt.Errorf("Failed to open local file for writing: `%s': %w", address, err)
	}
	return f, nil
}

func (c *clientConnector) UpgradeConnection(conn io.ReadWriteCloser, config common.ClientConfig) error {
	return nil
}

func (c *clientConnector) WriteOnly() bool {
	return true
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewFileClientTransport creates a new write only file transport
func NewFileClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
