package document

import (
	"strings"

	"github.com/hightman/xunsearch/lib/xserror"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// UTF8 is the charset used on the wire
const UTF8 = "UTF-8"

// NormalizeCharset upper cases a charset name and maps UTF8 to UTF-8
func NormalizeCharset(charset string) string {
	charset = strings.ToUpper(strings.TrimSpace(charset))
	if charset == "UTF8" {
		return UTF8
	}
	return charset
}

// NeedsConvert reports whether value contains bytes that may differ between
// charsets. Pure ASCII is never converted.
func NeedsConvert(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x81 && value[i] <= 0xfe {
			return true
		}
	}
	return false
}

// Convert transcodes value from one charset to another. Characters that do
// not exist in the target charset are replaced.
func Convert(value, to, from string) (string, error) {
	to, from = NormalizeCharset(to), NormalizeCharset(from)
	if to == from || value == "" {
		return value, nil
	}

	s := value
	if from != UTF8 {
		enc, err := lookup(from)
		if err != nil {
			return value, err
		}
		if s, err = enc.NewDecoder().String(s); err != nil {
			return value, &xserror.EncodingError{Msg: "Failed to convert from " + from, Err: err}
		}
	}
	if to != UTF8 {
		enc, err := lookup(to)
		if err != nil {
			return value, err
		}
		if s, err = encoding.ReplaceUnsupported(enc.NewEncoder()).String(s); err != nil {
			return value, &xserror.EncodingError{Msg: "Failed to convert to " + to, Err: err}
		}
	}
	return s, nil
}

func lookup(charset string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, &xserror.EncodingError{Msg: "Unsupported charset `" + charset + "'", Err: err}
	}
	return enc, nil
}
