package client

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

func scwsFrame(arg, off int, attr, word string) *common.Command {
	buf := binary.LittleEndian.AppendUint32(nil, uint32(off))
	head := make([]byte, 4)
	copy(head, attr)
	buf = append(buf, head...)
	return common.NewCommandArg(common.CmdOk, arg, append(buf, word...), nil)
}

func openScws(t *testing.T) (*Scws, *mockTransport) {
	t.Helper()
	xs, f := newTestXS(t)
	m := f.get("localhost:8384")
	m.reply(ok(common.OkProject))
	sc, err := xs.Scws()
	if err != nil {
		t.Fatalf("Scws() error = %v", err)
	}
	m.reset()
	return sc, m
}

func TestScwsResult(t *testing.T) {
	sc, m := openScws(t)
	m.reply(
		scwsFrame(common.OkScwsResult, 0, "r", "我们"),
		scwsFrame(common.OkScwsResult, 6, "n", "xunsearch"),
		ok(common.OkScwsResult),
	)

	sc.SetMulti(3)
	sc.SetIgnore(true)
	got, err := sc.Result("我们xunsearch")
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	want := []ScwsWord{{Off: 0, Attr: "r", Word: "我们"}, {Off: 6, Attr: "n", Word: "xunsearch"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Result() = %v, want %v", got, want)
	}

	cmds := m.commands(t)
	wantOps := []common.Opcode{common.CmdSearchScwsSet, common.CmdSearchScwsSet, common.CmdSearchScwsGet}
	if ops := opcodes(cmds); !reflect.DeepEqual(ops, wantOps) {
		t.Fatalf("opcodes = %v, want %v", ops, wantOps)
	}
	if cmds[0].Arg1 != common.ScwsSetIgnore || cmds[1].Arg1 != common.ScwsSetMulti || cmds[1].Arg2 != 3 {
		t.Errorf("settings = %v, %v", cmds[0], cmds[1])
	}
	if get := cmds[2]; get.Arg1 != common.ScwsGetResult || string(get.Buf) != "我们xunsearch" {
		t.Errorf("request = %v %q", get, get.Buf)
	}
}

func TestScwsSettingsAreResent(t *testing.T) {
	sc, m := openScws(t)
	m.reply(ok(common.OkScwsResult), ok(common.OkScwsResult))

	sc.SetDict("dict.xdb", DictXdb)
	sc.AddDict("extra.txt", DictTxt|DictMem)
	for i := 0; i < 2; i++ {
		if _, err := sc.Result("x"); err != nil {
			t.Fatalf("Result() error = %v", err)
		}
	}

	var dicts []string
	for _, cmd := range m.commands(t) {
		if cmd.Cmd == common.CmdSearchScwsSet {
			dicts = append(dicts, string(cmd.Buf))
		}
	}
	if want := []string{"dict.xdb", "extra.txt", "dict.xdb", "extra.txt"}; !reflect.DeepEqual(dicts, want) {
		t.Errorf("dictionaries = %v, want %v", dicts, want)
	}
}

func TestScwsTops(t *testing.T) {
	sc, m := openScws(t)
	m.reply(scwsFrame(common.OkScwsTops, 4, "nr", "张三"), ok(common.OkScwsTops))

	got, err := sc.Tops("text", 300, "~v")
	if err != nil {
		t.Fatalf("Tops() error = %v", err)
	}
	if want := []ScwsWord{{Off: 4, Attr: "nr", Word: "张三"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tops() = %v, want %v", got, want)
	}
	get := m.commands(t)[0]
	if get.Arg1 != common.ScwsGetTops || get.Arg2 != 255 || string(get.Buf1) != "~v" {
		t.Errorf("request = %v %q", get, get.Buf1)
	}
}

func TestScwsUnexpectedFrame(t *testing.T) {
	sc, m := openScws(t)
	m.reply(scwsFrame(common.OkScwsResult, 0, "n", "a"), ok(common.OkInfo))

	_, err := sc.Result("a")
	var pe *xserror.ProtocolError
	if !errors.As(err, &pe) || !pe.Unexpected {
		t.Errorf("Result() error = %v, want unexpected response", err)
	}
}

func TestScwsHasWord(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"OK", true},
		{"NO", false},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			sc, m := openScws(t)
			m.reply(okBuf(common.OkInfo, tt.reply))
			got, err := sc.HasWord("text", "v")
			if err != nil {
				t.Fatalf("HasWord() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasWord() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeScwsWord(t *testing.T) {
	if _, err := decodeScwsWord([]byte{1, 2, 3}); !errors.Is(err, xserror.ErrEncoding) {
		t.Errorf("decodeScwsWord() error = %v, want ErrEncoding", err)
	}
}

func TestScwsTokenizer(t *testing.T) {
	xs, f := newTestXS(t)
	m := f.get("localhost:8384")
	m.reply(
		ok(common.OkProject),
		scwsFrame(common.OkScwsResult, 0, "n", "中文"),
		scwsFrame(common.OkScwsResult, 6, "n", "分词"),
		ok(common.OkScwsResult),
	)

	tk, err := xs.Tokenizers().Get("scws(5)")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got, want := tk.GetTokens("中文分词", nil), []string{"中文", "分词"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GetTokens() = %v, want %v", got, want)
	}

	var multi int
	for _, cmd := range m.commands(t) {
		if cmd.Cmd == common.CmdSearchScwsSet && cmd.Arg1 == common.ScwsSetMulti {
			multi = int(cmd.Arg2)
		}
	}
	if multi != 5 {
		t.Errorf("multi = %v, want %v", multi, 5)
	}
}

func TestScwsTokenizerLevel(t *testing.T) {
	xs, _ := newTestXS(t)
	for _, arg := range []string{"16", "-1"} {
		if _, err := newScwsTokenizer(xs, arg); !errors.Is(err, xserror.ErrConfig) {
			t.Errorf("newScwsTokenizer(%q) error = %v, want ErrConfig", arg, err)
		}
	}
}
