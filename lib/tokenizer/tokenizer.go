package tokenizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/xserror"
)

// Tokenizer splits the value of a field into index terms on the client side.
// doc is the document being indexed, nil while a query is built.
type Tokenizer interface {
	GetTokens(value string, doc *document.Document) []string
}

// Func adapts a plain function to the Tokenizer interface
type Func func(value string, doc *document.Document) []string

func (f Func) GetTokens(value string, doc *document.Document) []string { return f(value, doc) }

// Factory creates a tokenizer from the argument of a tokenizer name like "split(,)", the
// argument is empty if the name has none.
type Factory func(arg string) (Tokenizer, error)

// --------------------------------------------------------------------------
// Built-in Tokenizers
// --------------------------------------------------------------------------

// None produces no terms, the field is stored but not searchable
type None struct{}

func (None) GetTokens(string, *document.Document) []string { return []string{} }

// Full indexes the whole value as a single term
type Full struct{}

func (Full) GetTokens(value string, _ *document.Document) []string { return []string{value} }

// Split splits the value by a separator, or by a regular expression if the
// separator is written as /regex/.
type Split struct {
	sep string
	re  *regexp.Regexp
}

// NewSplit creates a split tokenizer, the default separator is a blank
func NewSplit(arg string) (*Split, error) {
	if arg == "" {
		arg = " "
	}
	s := &Split{sep: arg}
	if len(arg) > 2 && arg[0] == '/' && arg[len(arg)-1] == '/' {
		re, err := regexp.Compile(arg[1 : len(arg)-1])
		if err != nil {
			return nil, &xserror.ConfigError{Msg: "Invalid argument for split tokenizer: " + arg, Err: err}
		}
		s.re = re
	}
	return s, nil
}

func (s *Split) GetTokens(value string, _ *document.Document) []string {
	if s.re != nil {
		return s.re.Split(value, -1)
	}
	return strings.Split(value, s.sep)
}

// Xlen cuts the value into chunks of a fixed number of bytes
type Xlen struct{ n int }

// NewXlen creates a xlen tokenizer, the default length is 2
func NewXlen(arg string) (*Xlen, error) {
	n, err := lengthArg("xlen", arg)
	if err != nil {
		return nil, err
	}
	return &Xlen{n: n}, nil
}

func (x *Xlen) GetTokens(value string, _ *document.Document) []string {
	terms := make([]string, 0, len(value)/x.n+1)
	for i := 0; i < len(value); i += x.n {
		terms = append(terms, value[i:min(i+x.n, len(value))])
	}
	return terms
}

// Xstep produces growing prefixes of the value in steps of a fixed number of
// bytes, the last term is always the full value.
type Xstep struct{ n int }

// NewXstep creates a xstep tokenizer, the default step is 2
func NewXstep(arg string) (*Xstep, error) {
	n, err := lengthArg("xstep", arg)
	if err != nil {
		return nil, err
	}
	return &Xstep{n: n}, nil
}

func (x *Xstep) GetTokens(value string, _ *document.Document) []string {
	var terms []string
	for i := x.n; ; i += x.n {
		terms = append(terms, value[:min(i, len(value))])
		if i >= len(value) {
			break
		}
	}
	return terms
}

func lengthArg(name, arg string) (int, error) {
	if arg == "" {
		return 2, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > 255 {
		return 0, xserror.NewConfigError("Invalid argument for %s tokenizer: %s", name, arg)
	}
	return n, nil
}
