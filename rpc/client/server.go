package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hightman/xunsearch/lib/cache"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/hightman/xunsearch/rpc/transport"
	"github.com/hightman/xunsearch/rpc/transport/file"
	"github.com/hightman/xunsearch/rpc/transport/tcp"
	"github.com/hightman/xunsearch/rpc/transport/unix"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger(common.LoggerClient)

// TransportFactory creates the transport used to reach an endpoint
type TransportFactory func(ep transport.Endpoint) (transport.IRPCClientTransport, error)

// DefaultTransportFactory picks the tcp, unix or file transport by the medium
// of the endpoint
func DefaultTransportFactory(ep transport.Endpoint) (transport.IRPCClientTransport, error) {
	switch ep.Medium {
	case transport.MediumTCP:
		return tcp.NewTCPClientTransport(), nil
	case transport.MediumUnix:
		return unix.NewUnixClientTransport(), nil
	case transport.MediumFile:
		return file.NewFileClientTransport(), nil
	default:
		return nil, xserror.NewConfigError("Unsupported connection medium `%s'", ep.Medium)
	}
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type options struct {
	config  common.ClientConfig
	factory TransportFactory
	project string
	counts  *cache.CountCache
}

// Option configures a Server or an XS context
type Option func(*options)

// WithConfig sets the connection settings
func WithConfig(config common.ClientConfig) Option {
	return func(o *options) { o.config = config }
}

// WithTransportFactory replaces the transport factory, mainly used by tests
func WithTransportFactory(factory TransportFactory) Option {
	return func(o *options) { o.factory = factory }
}

// WithProject binds the connection to a project, every (re)open sends USE
func WithProject(name string) Option {
	return func(o *options) { o.project = name }
}

func buildOptions(opts []Option) options {
	o := options{config: common.DefaultClientConfig(), factory: DefaultTransportFactory}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// Server is one blocking connection to an index or search server. Commands
// that are never answered are kept in a send buffer and go out in front of
// the next answered command.
//
// A Server is not safe for concurrent use.
type Server struct {
	conn       string
	endpoint   transport.Endpoint
	transport  transport.IRPCClientTransport
	opts       options
	project    string
	sendBuffer []byte
	openHooks  []func() error
	openedOnce bool
}

// NewServer creates an unopened server connection
func NewServer(conn string, opts ...Option) *Server {
	return &Server{conn: conn, opts: buildOptions(opts)}
}

// OpenServer creates a server connection and opens it
func OpenServer(conn string, opts ...Option) (*Server, error) {
	s := NewServer(conn, opts...)
	if err := s.Open(conn); err != nil {
		return nil, err
	}
	return s, nil
}

// onOpen registers a function called after every successful open
func (s *Server) onOpen(hook func() error) {
	s.openHooks = append(s.openHooks, hook)
}

// Open closes the current connection and connects to conn. The bound
// project, if any, is selected right after the connect.
func (s *Server) Open(conn string) error {
	_ = s.Close()

	ep, err := transport.ParseEndpoint(conn)
	if err != nil {
		return &xserror.ConfigError{Msg: "Invalid connection string `" + conn + "'", Err: err}
	}
	s.conn = conn
	s.endpoint = ep
	s.sendBuffer = nil
	s.project = ""

	t, err := s.opts.factory(ep)
	if err != nil {
		return err
	}
	if err := t.Connect(ep.Address, s.opts.config); err != nil {
		return err
	}
	s.transport = t
	if s.openedOnce {
		Logger.Infof("Reconnected to %s", ep)
	} else {
		Logger.Debugf("Connected to %s", ep)
	}
	s.openedOnce = true

	if s.opts.project != "" {
		if err := s.SetProject(s.opts.project, ""); err != nil {
			return err
		}
	}
	for _, hook := range s.openHooks {
		if err := hook(); err != nil {
			return err
		}
	}
	return nil
}

// Reopen opens the connection again if it is broken or force is set
func (s *Server) Reopen(force bool) error {
	if s.Broken() || force {
		return s.Open(s.conn)
	}
	return nil
}

// Broken reports whether the connection can not be used anymore
func (s *Server) Broken() bool {
	return s.transport == nil || !s.transport.Connected()
}

// Close flushes the send buffer, says goodbye and closes the connection.
// Closing a closed or broken connection is a no-op.
func (s *Server) Close() error {
	if s.Broken() {
		return nil
	}

	var err error
	if len(s.sendBuffer) > 0 {
		err = s.transport.Write(s.sendBuffer)
		s.sendBuffer = nil
	}
	if err == nil && !s.transport.WriteOnly() {
		err = s.transport.Write(common.NewCommand(common.CmdQuit, 0, 0, nil, nil).Serialize())
	}
	if cerr := s.transport.Close(); err == nil {
		err = cerr
	}
	return err
}

// ConnString returns the canonical connection string
func (s *Server) ConnString() string {
	if s.endpoint.Medium == "" {
		if ep, err := transport.ParseEndpoint(s.conn); err == nil {
			return ep.String()
		}
		return s.conn
	}
	return s.endpoint.String()
}

// Project returns the project the connection is bound to
func (s *Server) Project() string {
	return s.project
}

// SetProject selects the project (and optionally its home directory) on the
// server. Nothing is sent if the project is already selected.
func (s *Server) SetProject(name, home string) error {
	if name == s.project {
		return nil
	}
	cmd := common.NewCommand(common.CmdUse, 0, 0, []byte(name), []byte(home))
	if _, err := s.ExecCommand(cmd, common.OkProject, common.CmdOk); err != nil {
		return err
	}
	s.project = name
	return nil
}

// SetTimeout sets the idle timeout of the connection on the server side, 0
// means never
func (s *Server) SetTimeout(sec int) error {
	cmd := common.NewCommandArg(common.CmdTimeout, sec, nil, nil)
	_, err := s.ExecCommand(cmd, common.OkTimeoutSet, common.CmdOk)
	return err
}

// --------------------------------------------------------------------------
// Dispatcher
// --------------------------------------------------------------------------

// ExecCommand sends a command and checks the response.
//
// Commands that are never answered are only appended to the send buffer and
// (nil, nil) is returned. Otherwise the send buffer and the command are
// written together and one response frame is read. On a file sink nothing
// is read and a response carrying resCmd and resArg is returned. An error
// frame becomes a *xserror.ProtocolError with the server code unless resCmd
// is common.CmdErr, any other opcode or argument mismatch is reported as an
// unexpected response. resArg common.ArgNone disables the argument check.
func (s *Server) ExecCommand(cmd *common.Command, resArg int, resCmd common.Opcode) (*common.Command, error) {
	name := cmd.Cmd.String()
	metrics.GetOrCreateCounter(fmt.Sprintf(`xs_commands_total{cmd=%q}`, name)).Inc()

	if cmd.Cmd.IsOneWay() {
		s.sendBuffer = cmd.AppendTo(s.sendBuffer)
		return nil, nil
	}

	start := time.Now()
	res, err := s.exec(cmd, resArg, resCmd)
	metrics.GetOrCreateHistogram(fmt.Sprintf(`xs_command_duration_seconds{cmd=%q}`, name)).UpdateDuration(start)
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`xs_command_errors_total{cmd=%q}`, name)).Inc()
		Logger.Debugf("Command %s on %s failed: %v", cmd, s.ConnString(), err)
	}
	return res, err
}

func (s *Server) exec(cmd *common.Command, resArg int, resCmd common.Opcode) (*common.Command, error) {
	if s.transport == nil {
		return nil, &xserror.TransportError{Op: "check", Msg: "No server connection"}
	}

	buf := cmd.AppendTo(s.sendBuffer)
	s.sendBuffer = nil
	if err := s.transport.Write(buf); err != nil {
		return nil, err
	}

	if s.transport.WriteOnly() {
		res := &common.Command{Cmd: resCmd}
		if resArg != common.ArgNone {
			res.SetArg(resArg)
		}
		return res, nil
	}

	res, err := s.GetRespond()
	if err != nil {
		return nil, err
	}
	return res, checkRespond(res, resArg, resCmd, "")
}

// checkRespond validates a response frame against the expected opcode and
// argument
func checkRespond(res *common.Command, resArg int, resCmd common.Opcode, context string) error {
	if res.Cmd == common.CmdErr && resCmd != common.CmdErr {
		return xserror.NewServerError(res.Arg(), string(res.Buf))
	}
	if res.Cmd != resCmd || (resArg != common.ArgNone && res.Arg() != resArg) {
		return xserror.NewUnexpectedError(context, uint8(res.Cmd), uint16(res.Arg()))
	}
	return nil
}

// SendCommand writes a single command without touching the send buffer and
// without waiting for a response
func (s *Server) SendCommand(cmd *common.Command) error {
	if s.transport == nil {
		return &xserror.TransportError{Op: "check", Msg: "No server connection"}
	}
	return s.transport.Write(cmd.Serialize())
}

// GetRespond reads one frame from the server
func (s *Server) GetRespond() (*common.Command, error) {
	if s.transport == nil {
		return nil, &xserror.TransportError{Op: "check", Msg: "No server connection"}
	}
	header, err := s.transport.Read(common.HeaderSize)
	if err != nil {
		return nil, err
	}
	res := &common.Command{}
	blen, blen1 := res.SetHeader(header)
	if res.Buf, err = s.transport.Read(blen); err != nil {
		return nil, err
	}
	if res.Buf1, err = s.transport.Read(blen1); err != nil {
		return nil, err
	}
	return res, nil
}

// execOK sends a command that is answered with an OK frame
func (s *Server) execOK(cmd *common.Command, resArg int) (*common.Command, error) {
	return s.ExecCommand(cmd, resArg, common.CmdOk)
}

// ignoreCodes returns nil if err is a server error with one of the codes
func ignoreCodes(err error, codes ...int) error {
	if err == nil {
		return nil
	}
	code := xserror.Code(err)
	for _, c := range codes {
		if code == c {
			return nil
		}
	}
	return err
}

// isCode reports whether err is a server error frame with the given code
func isCode(err error, code int) bool {
	var pe *xserror.ProtocolError
	return errors.As(err, &pe) && !pe.Unexpected && pe.Code == code
}
