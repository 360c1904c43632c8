package client

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/hightman/xunsearch/rpc/common"
)

// Dictionary formats of SetDict and AddDict
const (
	DictXdb = 1
	DictMem = 2
	DictTxt = 4
)

// DefaultScwsMulti is the compound level of the scws tokenizer
const DefaultScwsMulti = 3

// scwsResponseSize is the fixed head of a segmenter frame: a 32 bit offset
// (or count) and four attribute bytes
const scwsResponseSize = 8

// ScwsWord is one word found by the segmenter. Off is the byte offset in
// the UTF-8 text for Result and the number of occurrences for Tops.
type ScwsWord struct {
	Off  int
	Attr string
	Word string
}

// Scws uses the segmenter of a search server. Settings are kept and sent
// in front of every request, so they survive reconnects.
type Scws struct {
	server   *Server
	charset  string
	settings map[int]*common.Command
	addDicts []*common.Command
}

// NewScws creates a segmenter client on an opened search server connection
func NewScws(server *Server, charset string) *Scws {
	return &Scws{
		server:   server,
		charset:  document.NormalizeCharset(charset),
		settings: make(map[int]*common.Command),
	}
}

// Server returns the connection used by the segmenter
func (sc *Scws) Server() *Server {
	return sc.server
}

// SetCharset sets the charset of texts and returned words
func (sc *Scws) SetCharset(charset string) {
	sc.charset = document.NormalizeCharset(charset)
}

// SetIgnore drops punctuation from results
func (sc *Scws) SetIgnore(on bool) {
	sc.set(common.ScwsSetIgnore, boolInt(on), nil)
}

// SetMulti sets the compound level, 0-15
func (sc *Scws) SetMulti(level int) {
	sc.set(common.ScwsSetMulti, level&0x0f, nil)
}

// SetDuality joins single CJK characters to pairs
func (sc *Scws) SetDuality(on bool) {
	sc.set(common.ScwsSetDuality, boolInt(on), nil)
}

// SetDict replaces the dictionary by the server side file path
func (sc *Scws) SetDict(path string, mode int) {
	sc.set(common.ScwsSetDict, mode, []byte(path))
	sc.addDicts = nil
}

// AddDict loads an additional server side dictionary file
func (sc *Scws) AddDict(path string, mode int) {
	sc.addDicts = append(sc.addDicts, common.NewCommand(common.CmdSearchScwsSet, common.ScwsAddDict, mode, []byte(path), nil))
}

func (sc *Scws) set(op, value int, buf []byte) {
	sc.settings[op] = common.NewCommand(common.CmdSearchScwsSet, op, value, buf, nil)
}

// apply queues the settings in front of the next request
func (sc *Scws) apply() error {
	ops := make([]int, 0, len(sc.settings))
	for op := range sc.settings {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	for _, op := range ops {
		if _, err := sc.server.execOK(sc.settings[op], common.ArgNone); err != nil {
			return err
		}
	}
	for _, cmd := range sc.addDicts {
		if _, err := sc.server.execOK(cmd, common.ArgNone); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the version of the segmenter
func (sc *Scws) Version() (string, error) {
	res, err := sc.server.execOK(common.NewCommand(common.CmdSearchScwsGet, common.ScwsGetVersion, 0, nil, nil), common.OkInfo)
	if err != nil {
		return "", err
	}
	return string(res.Buf), nil
}

// Result segments text into words in the order they appear
func (sc *Scws) Result(text string) ([]ScwsWord, error) {
	return sc.stream(common.ScwsGetResult, 0, text, "", common.OkScwsResult)
}

// Tops returns the limit most frequent words of text. xattr restricts the
// words by attribute, e.g. "n,v" or "~v" to exclude verbs.
func (sc *Scws) Tops(text string, limit int, xattr string) ([]ScwsWord, error) {
	if limit <= 0 {
		limit = 10
	}
	return sc.stream(common.ScwsGetTops, min(255, limit), text, xattr, common.OkScwsTops)
}

// HasWord reports whether text contains a word matching xattr
func (sc *Scws) HasWord(text, xattr string) (bool, error) {
	buf, err := toUTF8(text, sc.charset)
	if err != nil {
		return false, err
	}
	if err := sc.apply(); err != nil {
		return false, err
	}
	cmd := common.NewCommand(common.CmdSearchScwsGet, common.ScwsHasWord, 0, []byte(buf), []byte(xattr))
	res, err := sc.server.execOK(cmd, common.OkInfo)
	if err != nil {
		return false, err
	}
	return string(res.Buf) == "OK", nil
}

// stream sends a request that is answered by one frame per word followed
// by an empty frame
func (sc *Scws) stream(op, arg2 int, text, xattr string, resArg int) ([]ScwsWord, error) {
	buf, err := toUTF8(text, sc.charset)
	if err != nil {
		return nil, err
	}
	if err := sc.apply(); err != nil {
		return nil, err
	}

	var buf1 []byte
	if xattr != "" {
		buf1 = []byte(xattr)
	}
	res, err := sc.server.execOK(common.NewCommand(common.CmdSearchScwsGet, op, arg2, []byte(buf), buf1), resArg)
	if err != nil {
		return nil, err
	}

	words := []ScwsWord{}
	for len(res.Buf) > 0 {
		word, err := decodeScwsWord(res.Buf)
		if err != nil {
			return nil, err
		}
		word.Word = fromUTF8(word.Word, sc.charset)
		words = append(words, word)

		if res, err = sc.server.GetRespond(); err != nil {
			return nil, err
		}
		if err := checkRespond(res, resArg, common.CmdOk, " in scws"); err != nil {
			return nil, err
		}
	}
	return words, nil
}

func decodeScwsWord(buf []byte) (ScwsWord, error) {
	if len(buf) < scwsResponseSize {
		return ScwsWord{}, xserror.NewEncodingError("Invalid scws response of %d bytes", len(buf))
	}
	return ScwsWord{
		Off:  int(int32(binary.LittleEndian.Uint32(buf))),
		Attr: strings.TrimRight(string(buf[4:scwsResponseSize]), "\x00"),
		Word: string(buf[scwsResponseSize:]),
	}, nil
}

// --------------------------------------------------------------------------
// Tokenizer
// --------------------------------------------------------------------------

// scwsTokenizer is the tokenizer "scws(multi)". It connects to the first
// search server of the project when it is used the first time.
type scwsTokenizer struct {
	xs    *XS
	multi int
	scws  *Scws
}

func newScwsTokenizer(xs *XS, arg string) (*scwsTokenizer, error) {
	multi := DefaultScwsMulti
	if arg != "" {
		multi = atoi(arg)
		if multi < 0 || multi > 15 {
			return nil, xserror.NewConfigError("Invalid compound level `%s' of scws tokenizer", arg)
		}
	}
	return &scwsTokenizer{xs: xs, multi: multi}, nil
}

// GetTokens segments value. Errors are logged and yield no tokens.
func (t *scwsTokenizer) GetTokens(value string, doc *document.Document) []string {
	if t.scws == nil {
		sc, err := t.xs.Scws()
		if err != nil {
			Logger.Warningf("Scws tokenizer can not connect: %v", err)
			return nil
		}
		t.scws = sc
	}
	// document values are UTF-8 here, query values use the search charset
	charset := document.UTF8
	if doc == nil && t.xs.search != nil {
		charset = t.xs.search.Charset()
	}
	t.scws.SetCharset(charset)
	t.scws.SetMulti(t.multi)

	words, err := t.scws.Result(value)
	if err != nil {
		Logger.Warningf("Scws tokenizer failed: %v", err)
		return nil
	}
	tokens := make([]string, len(words))
	for i, w := range words {
		tokens[i] = w.Word
	}
	return tokens
}
