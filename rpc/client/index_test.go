package client

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

func testDoc(t *testing.T, fields map[string]string) *document.Document {
	t.Helper()
	doc := document.New("")
	for name, value := range fields {
		if err := doc.Set(name, value); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	return doc
}

// replyBoth queues the same responses on the primary and the replica
func replyBoth(primary, replica *mockTransport, cmds ...*common.Command) {
	primary.reply(cmds...)
	replica.reply(cmds...)
}

func TestEncodeDocumentTermWeight(t *testing.T) {
	xs, _ := newTestXS(t)
	doc := testDoc(t, map[string]string{"pid": "1"})
	doc.AddTerm("cate", "Go", 130)

	cmds, err := encodeDocument(doc, xs.Scheme(), xs.Tokenizers(), "1", true)
	if err != nil {
		t.Fatalf("encodeDocument() error = %v", err)
	}
	cate, _ := xs.Field("cate")

	var weights []int
	for _, cmd := range cmds {
		if cmd.Cmd != common.CmdDocTerm || cmd.Arg2 != cate.Vno {
			continue
		}
		if string(cmd.Buf) != "go" {
			t.Errorf("term = %q, want %q", cmd.Buf, "go")
		}
		if cmd.Arg1&common.IndexFlagCheckStem == 0 {
			t.Errorf("term without stem check flag: %v", cmd)
		}
		weights = append(weights, int(cmd.Arg1&common.IndexWeightMask))
	}
	if want := []int{63, 63, 4}; !reflect.DeepEqual(weights, want) {
		t.Errorf("weights = %v, want %v", weights, want)
	}

	if first, last := cmds[0].Cmd, cmds[len(cmds)-1].Cmd; first != common.CmdIndexRequest || last != common.CmdIndexSubmit {
		t.Errorf("frame = %v ... %v, want INDEX_REQUEST ... INDEX_SUBMIT", first, last)
	}
}

func TestEncodeDocumentCustomTokenizer(t *testing.T) {
	xs, _ := newTestXS(t)
	doc := testDoc(t, map[string]string{"pid": "1", "tag": "Go,Xapian"})

	cmds, err := encodeDocument(doc, xs.Scheme(), xs.Tokenizers(), "1", true)
	if err != nil {
		t.Fatalf("encodeDocument() error = %v", err)
	}
	tag, _ := xs.Field("tag")

	var terms []string
	var value string
	for _, cmd := range cmds {
		if cmd.Arg2 != tag.Vno {
			continue
		}
		switch cmd.Cmd {
		case common.CmdDocTerm:
			terms = append(terms, string(cmd.Buf))
			if cmd.Arg1 != 1 {
				t.Errorf("wdf of boolean term = %v, want 1", cmd.Arg1)
			}
		case common.CmdDocValue:
			value = string(cmd.Buf)
		}
	}
	if want := []string{"go", "xapian"}; !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
	if value != "Go,Xapian" {
		t.Errorf("value = %q, want %q", value, "Go,Xapian")
	}
}

func TestIndexAddAndUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update   bool
		wantArg  uint8
		wantArg2 uint8
		wantKey  string
	}{
		{name: "add", update: false, wantArg: common.IndexRequestAdd, wantArg2: 0, wantKey: ""},
		{name: "update", update: true, wantArg: common.IndexRequestUpdate, wantArg2: 0, wantKey: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, primary, replica := openIndex(t)
			replyBoth(primary, replica, ok(common.OkRqstFinished))

			doc := testDoc(t, map[string]string{"pid": "42", "subject": "hello"})
			var err error
			if tt.update {
				err = idx.Update(doc)
			} else {
				err = idx.Add(doc)
			}
			if err != nil {
				t.Fatalf("submit error = %v", err)
			}

			for _, m := range []*mockTransport{primary, replica} {
				if len(m.writes) != 1 {
					t.Errorf("writes = %v, want %v", len(m.writes), 1)
				}
				cmds := m.commands(t)
				req := cmds[0]
				if req.Cmd != common.CmdIndexRequest || req.Arg1 != tt.wantArg || string(req.Buf) != tt.wantKey {
					t.Errorf("request = %v key %q, want arg1 %v key %q", req, req.Buf, tt.wantArg, tt.wantKey)
				}
				if req.Arg2 != tt.wantArg2 {
					t.Errorf("request arg2 = %v, want %v", req.Arg2, tt.wantArg2)
				}
				if last := cmds[len(cmds)-1]; last.Cmd != common.CmdIndexSubmit {
					t.Errorf("last command = %v, want INDEX_SUBMIT", last.Cmd)
				}
			}
		})
	}
}

func TestIndexMissingKey(t *testing.T) {
	idx, primary, _ := openIndex(t)
	err := idx.Add(testDoc(t, map[string]string{"subject": "hello"}))
	if !errors.Is(err, xserror.ErrEncoding) {
		t.Errorf("Add() error = %v, want ErrEncoding", err)
	}
	if len(primary.writes) != 0 {
		t.Errorf("writes = %v, want none", len(primary.writes))
	}
}

func TestIndexReplicaFailure(t *testing.T) {
	idx, primary, replica := openIndex(t)
	primary.reply(ok(common.OkDbClean))
	replica.reply(errFrame(common.ErrXapian, "Xapian ERROR"))

	err := idx.Clean()
	if !errors.Is(err, xserror.ErrReplica) {
		t.Fatalf("Clean() error = %v, want ErrReplica", err)
	}
	var re *xserror.ReplicaError
	if !errors.As(err, &re) || re.Endpoint != "localhost:8385" {
		t.Errorf("ReplicaError = %v, want endpoint localhost:8385", re)
	}
	if got := xserror.Code(err); got != common.ErrXapian {
		t.Errorf("Code() = %v, want %v", got, common.ErrXapian)
	}
}

func TestIndexPrimaryFailureSkipsReplicas(t *testing.T) {
	idx, primary, replica := openIndex(t)
	primary.reply(errFrame(common.ErrRebuilding, "DB has been rebuilding"))

	err := idx.Update(testDoc(t, map[string]string{"pid": "1"}))
	if xserror.Code(err) != common.ErrRebuilding || errors.Is(err, xserror.ErrReplica) {
		t.Errorf("Update() error = %v, want primary ERR %d", err, common.ErrRebuilding)
	}
	if len(replica.writes) != 0 {
		t.Errorf("replica writes = %v, want none", len(replica.writes))
	}
}

func TestIndexDel(t *testing.T) {
	tests := []struct {
		name     string
		terms    []string
		field    string
		wantCmd  common.Opcode
		wantRemv []string
		wantVno  uint8
	}{
		{name: "single", terms: []string{"A1"}, wantCmd: common.CmdIndexRemove, wantRemv: []string{"a1"}, wantVno: 0},
		{name: "many", terms: []string{"1", "2", "1"}, wantCmd: common.CmdIndexExdata, wantRemv: []string{"1", "2"}, wantVno: 0},
		{name: "other field", terms: []string{"x"}, field: "cate", wantCmd: common.CmdIndexRemove, wantRemv: []string{"x"}, wantVno: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, primary, replica := openIndex(t)
			replyBoth(primary, replica, ok(common.OkRqstFinished))

			if err := idx.Del(tt.terms, tt.field); err != nil {
				t.Fatalf("Del() error = %v", err)
			}
			cmds := primary.commands(t)
			if len(cmds) != 1 || cmds[0].Cmd != tt.wantCmd {
				t.Fatalf("commands = %v, want one %v", cmds, tt.wantCmd)
			}

			removes := cmds
			if tt.wantCmd == common.CmdIndexExdata {
				inner := &mockTransport{writes: [][]byte{cmds[0].Buf}}
				removes = inner.commands(t)
			}
			var got []string
			for _, cmd := range removes {
				if cmd.Cmd != common.CmdIndexRemove || cmd.Arg2 != tt.wantVno {
					t.Errorf("remove = %v, want INDEX_REMOVE of slot %d", cmd, tt.wantVno)
				}
				got = append(got, string(cmd.Buf))
			}
			if !reflect.DeepEqual(got, tt.wantRemv) {
				t.Errorf("removed = %v, want %v", got, tt.wantRemv)
			}
		})
	}
}

func TestAddExdataStart(t *testing.T) {
	valid := common.NewCommand(common.CmdIndexRemove, 0, 0, []byte("1"), nil).Serialize()
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "index remove", data: valid},
		{name: "empty", data: nil, wantErr: true},
		{name: "quit", data: common.NewCommand(common.CmdQuit, 0, 0, nil, nil).Serialize(), wantErr: true},
		{name: "doc term", data: common.NewCommand(common.CmdDocTerm, 0, 0, []byte("x"), nil).Serialize(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, primary, replica := openIndex(t)
			replyBoth(primary, replica, ok(common.OkRqstFinished))

			err := idx.AddExdata(tt.data)
			if tt.wantErr {
				if !errors.Is(err, xserror.ErrEncoding) {
					t.Errorf("AddExdata() error = %v, want ErrEncoding", err)
				}
				if len(primary.writes) != 0 {
					t.Errorf("writes = %v, want none", len(primary.writes))
				}
				return
			}
			if err != nil {
				t.Fatalf("AddExdata() error = %v", err)
			}
		})
	}
}

func TestIndexBuffer(t *testing.T) {
	idx, primary, replica := openIndex(t)
	if err := idx.OpenBuffer(1); err != nil {
		t.Fatalf("OpenBuffer() error = %v", err)
	}
	for _, id := range []string{"1", "2"} {
		if err := idx.Add(testDoc(t, map[string]string{"pid": id})); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := idx.Del([]string{"3"}, ""); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	if len(primary.writes) != 0 {
		t.Fatalf("writes = %v before CloseBuffer, want none", len(primary.writes))
	}

	replyBoth(primary, replica, ok(common.OkRqstFinished))
	if err := idx.CloseBuffer(); err != nil {
		t.Fatalf("CloseBuffer() error = %v", err)
	}
	cmds := primary.commands(t)
	if len(cmds) != 1 || cmds[0].Cmd != common.CmdIndexExdata {
		t.Fatalf("commands = %v, want one INDEX_EXDATA", cmds)
	}
	inner := (&mockTransport{writes: [][]byte{cmds[0].Buf}}).commands(t)
	var requests, submits, removes int
	for _, cmd := range inner {
		switch cmd.Cmd {
		case common.CmdIndexRequest:
			requests++
		case common.CmdIndexSubmit:
			submits++
		case common.CmdIndexRemove:
			removes++
		}
	}
	if requests != 2 || submits != 2 || removes != 1 {
		t.Errorf("requests, submits, removes = %d, %d, %d, want 2, 2, 1", requests, submits, removes)
	}
}

func TestIndexBufferFailure(t *testing.T) {
	tests := []struct {
		name         string
		primaryReply *common.Command
		replicaReply *common.Command
		wantErr      error
		wantKept     bool
	}{
		{
			name:         "primary failure keeps buffer",
			primaryReply: errFrame(common.ErrXapian, "Xapian ERROR"),
			wantErr:      xserror.ErrProtocol,
			wantKept:     true,
		},
		{
			name:         "replica failure drops buffer",
			primaryReply: ok(common.OkRqstFinished),
			replicaReply: errFrame(common.ErrXapian, "Xapian ERROR"),
			wantErr:      xserror.ErrReplica,
			wantKept:     false,
		},
		{
			name:         "success drops buffer",
			primaryReply: ok(common.OkRqstFinished),
			replicaReply: ok(common.OkRqstFinished),
			wantKept:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, primary, replica := openIndex(t)
			if err := idx.OpenBuffer(1); err != nil {
				t.Fatalf("OpenBuffer() error = %v", err)
			}
			if err := idx.Add(testDoc(t, map[string]string{"pid": "1"})); err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			primary.reply(tt.primaryReply)
			if tt.replicaReply != nil {
				replica.reply(tt.replicaReply)
			}
			err := idx.CloseBuffer()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("CloseBuffer() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("CloseBuffer() error = %v, want %v", err, tt.wantErr)
			}

			primary.reset()
			replica.reset()
			replyBoth(primary, replica, ok(common.OkRqstFinished))
			if err := idx.CloseBuffer(); err != nil {
				t.Fatalf("CloseBuffer() retry error = %v", err)
			}
			if got := len(primary.writes) == 1; got != tt.wantKept {
				t.Fatalf("buffer kept = %v, want %v", got, tt.wantKept)
			}
			if tt.wantKept {
				cmds := primary.commands(t)
				inner := (&mockTransport{writes: [][]byte{cmds[0].Buf}}).commands(t)
				if cmds[0].Cmd != common.CmdIndexExdata || inner[0].Cmd != common.CmdIndexRequest {
					t.Errorf("retry = %v with %v, want INDEX_EXDATA with INDEX_REQUEST", cmds[0].Cmd, inner[0].Cmd)
				}
			}
		})
	}
}

func TestFlushIndex(t *testing.T) {
	tests := []struct {
		name    string
		reply   *common.Command
		want    bool
		wantErr bool
	}{
		{name: "committed", reply: ok(common.OkDbCommited), want: true},
		{name: "busy", reply: errFrame(common.ErrBusy, "Server is too busy"), want: false},
		{name: "running", reply: errFrame(common.ErrRunning, "Import process running"), want: false},
		{name: "io error", reply: errFrame(common.ErrIOErr, "IO error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, primary, replica := openIndex(t)
			primary.reply(tt.reply)
			replica.reply(ok(common.OkDbCommited))

			got, err := idx.FlushIndex()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FlushIndex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FlushIndex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopRebuild(t *testing.T) {
	idx, primary, _ := openIndex(t)
	primary.reply(errFrame(common.ErrWrongPlace, "Use the command in the wrong place"))
	if err := idx.StopRebuild(); err != nil {
		t.Errorf("StopRebuild() error = %v, want nil", err)
	}
}

func TestRebuild(t *testing.T) {
	idx, primary, replica := openIndex(t)
	replyBoth(primary, replica, ok(common.OkDbRebuild), ok(common.OkDbRebuild))

	if err := idx.BeginRebuild(); err != nil {
		t.Fatalf("BeginRebuild() error = %v", err)
	}
	if !idx.Rebuilding() {
		t.Errorf("Rebuilding() = false, want true")
	}
	if err := idx.EndRebuild(); err != nil {
		t.Fatalf("EndRebuild() error = %v", err)
	}
	var phases []uint8
	for _, cmd := range primary.commands(t) {
		phases = append(phases, cmd.Arg1)
	}
	if want := []uint8{rebuildBegin, rebuildEnd}; !reflect.DeepEqual(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestSynonyms(t *testing.T) {
	idx, primary, replica := openIndex(t)
	replyBoth(primary, replica, ok(common.OkRqstFinished), ok(common.OkRqstFinished))

	if err := idx.AddSynonym("search", "find"); err != nil {
		t.Fatalf("AddSynonym() error = %v", err)
	}
	if err := idx.DelSynonym("search", ""); err != nil {
		t.Fatalf("DelSynonym() error = %v", err)
	}
	if err := idx.AddSynonym("", "find"); err != nil {
		t.Fatalf("AddSynonym() error = %v", err)
	}

	cmds := primary.commands(t)
	if len(cmds) != 2 {
		t.Fatalf("commands = %v, want 2", cmds)
	}
	if cmds[0].Arg1 != common.IndexSynonymsAdd || string(cmds[0].Buf) != "search" || string(cmds[0].Buf1) != "find" {
		t.Errorf("add synonym = %v", cmds[0])
	}
	if cmds[1].Arg1 != common.IndexSynonymsDel || len(cmds[1].Buf1) != 0 {
		t.Errorf("del synonym = %v", cmds[1])
	}
}
