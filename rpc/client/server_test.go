package client

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

func openTestServer(t *testing.T, m *mockTransport, opts ...Option) *Server {
	t.Helper()
	f := mockFactory{"localhost:8383": m}
	srv, err := OpenServer("8383", append(opts, f.option())...)
	if err != nil {
		t.Fatalf("OpenServer() error = %v", err)
	}
	return srv
}

func TestOneWayCommandsAreBuffered(t *testing.T) {
	m := &mockTransport{}
	srv := openTestServer(t, m)

	res, err := srv.ExecCommand(common.NewCommand(common.CmdQueryInit, 0, 0, nil, nil), common.ArgNone, common.CmdOk)
	if res != nil || err != nil {
		t.Fatalf("ExecCommand() = %v, %v, want nil, nil", res, err)
	}
	if len(m.writes) != 0 {
		t.Fatalf("one way command written immediately, writes = %d", len(m.writes))
	}

	m.reply(okBuf(common.OkDbTotal, "\x07\x00\x00\x00"))
	res, err = srv.ExecCommand(common.NewCommand(common.CmdSearchDbTotal, 0, 0, nil, nil), common.OkDbTotal, common.CmdOk)
	if err != nil {
		t.Fatalf("ExecCommand() error = %v", err)
	}
	if got := unpackI(res.Buf); got != 7 {
		t.Errorf("unpackI() = %v, want %v", got, 7)
	}
	if len(m.writes) != 1 {
		t.Errorf("writes = %v, want %v", len(m.writes), 1)
	}
	want := []common.Opcode{common.CmdQueryInit, common.CmdSearchDbTotal}
	if got := opcodes(m.commands(t)); !reflect.DeepEqual(got, want) {
		t.Errorf("opcodes = %v, want %v", got, want)
	}
}

func TestExecCommandResponses(t *testing.T) {
	tests := []struct {
		name           string
		reply          *common.Command
		resArg         int
		resCmd         common.Opcode
		wantCode       int
		wantUnexpected bool
	}{
		{
			name:   "matching response",
			reply:  ok(common.OkDbTotal),
			resArg: common.OkDbTotal,
			resCmd: common.CmdOk,
		},
		{
			name:   "argument not checked",
			reply:  ok(common.OkInfo),
			resArg: common.ArgNone,
			resCmd: common.CmdOk,
		},
		{
			name:     "server error",
			reply:    errFrame(common.ErrEmpty, "Data/Name empty"),
			resArg:   common.OkDbTotal,
			resCmd:   common.CmdOk,
			wantCode: common.ErrEmpty,
		},
		{
			name:           "wrong argument",
			reply:          ok(common.OkInfo),
			resArg:         common.OkDbTotal,
			resCmd:         common.CmdOk,
			wantUnexpected: true,
		},
		{
			name:           "wrong opcode",
			reply:          common.NewCommand(common.CmdSearchResultDoc, 0, 0, nil, nil),
			resArg:         common.ArgNone,
			resCmd:         common.CmdOk,
			wantUnexpected: true,
		},
		{
			name:   "error expected",
			reply:  errFrame(common.ErrXapian, "Xapian ERROR"),
			resArg: common.ArgNone,
			resCmd: common.CmdErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{}
			srv := openTestServer(t, m)
			m.reply(tt.reply)

			_, err := srv.ExecCommand(common.NewCommand(common.CmdSearchDbTotal, 0, 0, nil, nil), tt.resArg, tt.resCmd)
			if tt.wantCode == 0 && !tt.wantUnexpected {
				if err != nil {
					t.Fatalf("ExecCommand() error = %v", err)
				}
				return
			}

			var pe *xserror.ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("ExecCommand() error = %v, want ProtocolError", err)
			}
			if !errors.Is(err, xserror.ErrProtocol) {
				t.Errorf("errors.Is(err, ErrProtocol) = false, want true")
			}
			if pe.Unexpected != tt.wantUnexpected {
				t.Errorf("Unexpected = %v, want %v", pe.Unexpected, tt.wantUnexpected)
			}
			if got := xserror.Code(err); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestExecCommandFileSink(t *testing.T) {
	m := &mockTransport{writeOnly: true}
	srv := openTestServer(t, m)

	res, err := srv.ExecCommand(common.NewCommand(common.CmdIndexCommit, 0, 0, nil, nil), common.OkDbCommited, common.CmdOk)
	if err != nil {
		t.Fatalf("ExecCommand() error = %v", err)
	}
	if res.Cmd != common.CmdOk || res.Arg() != common.OkDbCommited {
		t.Errorf("ExecCommand() = %v, want synthesized OK DB_COMMITED", res)
	}

	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	want := []common.Opcode{common.CmdIndexCommit}
	if got := opcodes(m.commands(t)); !reflect.DeepEqual(got, want) {
		t.Errorf("opcodes = %v, want %v (no QUIT on a sink)", got, want)
	}
}

func TestCloseFlushesSendBuffer(t *testing.T) {
	m := &mockTransport{}
	srv := openTestServer(t, m)

	if _, err := srv.ExecCommand(common.NewCommand(common.CmdSearchSetCut, 3, 2, nil, nil), common.ArgNone, common.CmdOk); err != nil {
		t.Fatalf("ExecCommand() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	want := []common.Opcode{common.CmdSearchSetCut, common.CmdQuit}
	if got := opcodes(m.commands(t)); !reflect.DeepEqual(got, want) {
		t.Errorf("opcodes = %v, want %v", got, want)
	}
	if !srv.Broken() {
		t.Errorf("Broken() = false after Close, want true")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestSetProject(t *testing.T) {
	m := &mockTransport{}
	m.reply(ok(common.OkProject))
	srv := openTestServer(t, m, WithProject("demo"))

	if got := srv.Project(); got != "demo" {
		t.Errorf("Project() = %v, want %v", got, "demo")
	}
	if err := srv.SetProject("demo", ""); err != nil {
		t.Fatalf("SetProject() error = %v", err)
	}
	cmds := m.commands(t)
	if len(cmds) != 1 || cmds[0].Cmd != common.CmdUse || string(cmds[0].Buf) != "demo" {
		t.Errorf("commands = %v, want a single USE demo", cmds)
	}
}

func TestReopenBrokenConnection(t *testing.T) {
	m := &mockTransport{}
	m.reply(ok(common.OkProject))
	srv := openTestServer(t, m, WithProject("demo"))

	if err := srv.Reopen(false); err != nil {
		t.Fatalf("Reopen() on open connection error = %v", err)
	}
	if len(m.writes) != 1 {
		t.Fatalf("writes = %v after Reopen() of an open connection, want %v", len(m.writes), 1)
	}

	m.failWrite = &xserror.TransportError{Op: "send", Total: 8, Reason: xserror.ReasonClosed}
	_, err := srv.ExecCommand(common.NewCommand(common.CmdSearchDbTotal, 0, 0, nil, nil), common.OkDbTotal, common.CmdOk)
	if !errors.Is(err, xserror.ErrTransport) {
		t.Fatalf("ExecCommand() error = %v, want ErrTransport", err)
	}
	if !srv.Broken() {
		t.Fatalf("Broken() = false after failed write")
	}

	m.failWrite = nil
	m.reset()
	m.reply(ok(common.OkProject))
	if err := srv.Reopen(false); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if srv.Broken() {
		t.Errorf("Broken() = true after Reopen()")
	}
	cmds := m.commands(t)
	if len(cmds) != 1 || cmds[0].Cmd != common.CmdUse || string(cmds[0].Buf) != "demo" {
		t.Errorf("commands = %v, want a single USE demo", cmds)
	}
	if got := srv.Project(); got != "demo" {
		t.Errorf("Project() = %v, want %v", got, "demo")
	}
}

func TestExecCommandWithoutConnection(t *testing.T) {
	srv := NewServer("8383")
	_, err := srv.ExecCommand(common.NewCommand(common.CmdSearchDbTotal, 0, 0, nil, nil), common.OkDbTotal, common.CmdOk)
	if !errors.Is(err, xserror.ErrTransport) {
		t.Errorf("ExecCommand() error = %v, want ErrTransport", err)
	}
}

func TestConnString(t *testing.T) {
	tests := []struct {
		conn string
		want string
	}{
		{"8383", "localhost:8383"},
		{"10.0.0.1:8384", "10.0.0.1:8384"},
		{"unix:///tmp/xs.sock", "unix:///tmp/xs.sock"},
		{"file:///tmp/xs.bin", "file:///tmp/xs.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.conn, func(t *testing.T) {
			if got := NewServer(tt.conn).ConnString(); got != tt.want {
				t.Errorf("ConnString() = %v, want %v", got, tt.want)
			}
		})
	}
}
