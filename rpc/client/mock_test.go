package client

import (
	"testing"

	"github.com/hightman/xunsearch/lib/project"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
)

const testIni = `
project.name = demo
server.index = 8383; 8385
server.search = 8384

[pid]
type = id

[subject]
type = title

[message]
type = body

[chrono]
type = numeric

[tag]
index = self
tokenizer = split(,)

[cate]
index = self
cutlen = 25
`

// mockTransport records written data and replays scripted response frames
type mockTransport struct {
	writes    [][]byte
	replies   []byte
	connected bool
	writeOnly bool
	failWrite error
}

func (m *mockTransport) Connect(address string, config common.ClientConfig) error {
	m.connected = true
	return nil
}

func (m *mockTransport) Write(bufs ...[]byte) error {
	if !m.connected {
		return &xserror.TransportError{Op: "check", Msg: "No server connection"}
	}
	if m.failWrite != nil {
		m.connected = false
		return m.failWrite
	}
	var data []byte
	for _, buf := range bufs {
		data = append(data, buf...)
	}
	m.writes = append(m.writes, data)
	return nil
}

func (m *mockTransport) Read(n int) ([]byte, error) {
	if len(m.replies) < n {
		m.connected = false
		return nil, &xserror.TransportError{Op: "recv", Done: len(m.replies), Total: n, Reason: xserror.ReasonClosed}
	}
	buf := m.replies[:n]
	m.replies = m.replies[n:]
	return buf, nil
}

func (m *mockTransport) Close() error {
	m.connected = false
	return nil
}

func (m *mockTransport) Connected() bool { return m.connected }
func (m *mockTransport) WriteOnly() bool { return m.writeOnly }
func (m *mockTransport) GetName() string { return "mock" }

// reply queues response frames
func (m *mockTransport) reply(cmds ...*common.Command) {
	for _, cmd := range cmds {
		m.replies = cmd.AppendTo(m.replies)
	}
}

// commands decodes everything written so far
func (m *mockTransport) commands(t *testing.T) []*common.Command {
	t.Helper()
	var cmds []*common.Command
	for _, data := range m.writes {
		for len(data) > 0 {
			cmd := &common.Command{}
			n, err := cmd.Deserialize(data)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			cmds = append(cmds, cmd)
			data = data[n:]
		}
	}
	return cmds
}

// reset forgets what was written
func (m *mockTransport) reset() {
	m.writes = nil
}

func opcodes(cmds []*common.Command) []common.Opcode {
	ops := make([]common.Opcode, len(cmds))
	for i, cmd := range cmds {
		ops[i] = cmd.Cmd
	}
	return ops
}

func ok(arg int) *common.Command {
	return common.NewCommandArg(common.CmdOk, arg, nil, nil)
}

func okBuf(arg int, buf string) *common.Command {
	return common.NewCommandArg(common.CmdOk, arg, []byte(buf), nil)
}

func errFrame(code int, msg string) *common.Command {
	return common.NewCommandArg(common.CmdErr, code, []byte(msg), nil)
}

// mockFactory hands out one mock per endpoint address, creating them on
// demand
type mockFactory map[string]*mockTransport

func (f mockFactory) get(address string) *mockTransport {
	m, ok := f[address]
	if !ok {
		m = &mockTransport{}
		f[address] = m
	}
	return m
}

func (f mockFactory) option() Option {
	return WithTransportFactory(func(ep transport.Endpoint) (transport.IRPCClientTransport, error) {
		return f.get(ep.Address), nil
	})
}

// newTestXS creates a context of the test project whose connections use
// mock transports
func newTestXS(t *testing.T) (*XS, mockFactory) {
	t.Helper()
	p, err := project.Parse([]byte(testIni), "demo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := mockFactory{}
	xs, err := New(p, f.option())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return xs, f
}

// openSearch opens the search connection of a test context
func openSearch(t *testing.T) (*Search, *mockTransport) {
	t.Helper()
	xs, f := newTestXS(t)
	m := f.get("localhost:8384")
	m.reply(ok(common.OkProject))
	s, err := xs.Search()
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	m.reset()
	return s, m
}

// openIndex opens the index connections (primary and replica) of a test
// context
func openIndex(t *testing.T) (*Index, *mockTransport, *mockTransport) {
	t.Helper()
	xs, f := newTestXS(t)
	primary, replica := f.get("localhost:8383"), f.get("localhost:8385")
	primary.reply(ok(common.OkProject), ok(common.OkTimeoutSet))
	replica.reply(ok(common.OkProject), ok(common.OkTimeoutSet))
	idx, err := xs.Index()
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	primary.reset()
	replica.reset()
	return idx, primary, replica
}
