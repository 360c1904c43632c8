package tokenizer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/xserror"
)

func TestBuiltins(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name      string
		tokenizer string
		value     string
		want      []string
	}{
		{"none", "none", "a b", []string{}},
		{"full", "full", "a b", []string{"a b"}},
		{"split default", "split", "a b c", []string{"a", "b", "c"}},
		{"split comma", "split(,)", "x,y", []string{"x", "y"}},
		{"split regex", "split(/[,;]+/)", "x,;y;z", []string{"x", "y", "z"}},
		{"xlen default", "xlen", "abcde", []string{"ab", "cd", "e"}},
		{"xlen 3", "xlen(3)", "abcdef", []string{"abc", "def"}},
		{"xstep default", "xstep", "abcde", []string{"ab", "abcd", "abcde"}},
		{"xstep exact", "xstep(2)", "abcd", []string{"ab", "abcd"}},
		{"upper case name", "XLEN(1)", "ab", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := r.Get(tt.tokenizer)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := tk.GetTokens(tt.value, nil); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrors(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"nosuch", "xlen(0)", "xstep(256)", "xlen(abc)", "split(/[/)"} {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Get(name); !errors.Is(err, xserror.ErrConfig) {
				t.Errorf("Get(%q) error = %v, want config error", name, err)
			}
		})
	}
}

func TestRegistryCache(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Get("xlen(3)")
	b, _ := r.Get("xlen(3)")
	if a != b {
		t.Errorf("Get() returned a new instance for the same name")
	}

	r.Register("xlen", func(string) (Tokenizer, error) {
		return Func(func(value string, _ *document.Document) []string { return []string{"custom"} }), nil
	})
	c, _ := r.Get("xlen(3)")
	if got := c.GetTokens("abc", nil); !reflect.DeepEqual(got, []string{"custom"}) {
		t.Errorf("GetTokens() after Register = %v, want [custom]", got)
	}
}

func TestCheckScheme(t *testing.T) {
	s := scheme.New()
	_ = s.AddField("pid", map[string]string{"type": "id"})
	_ = s.AddField("tags", map[string]string{"tokenizer": "split(,)"})

	r := NewRegistry()
	if err := r.Check(s); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	_ = s.AddField("bad", map[string]string{"tokenizer": "nosuch"})
	if err := r.Check(s); !errors.Is(err, xserror.ErrConfig) {
		t.Errorf("Check() error = %v, want config error", err)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantArg  string
	}{
		{"full", "full", ""},
		{"split(,)", "split", ","},
		{" Xlen(4) ", "xlen", "4"},
		{"split()", "split", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, arg := ParseSpec(tt.name)
			if name != tt.wantName || arg != tt.wantArg {
				t.Errorf("ParseSpec() = %v, %v, want %v, %v", name, arg, tt.wantName, tt.wantArg)
			}
		})
	}
}
