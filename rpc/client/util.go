package client

import (
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
)

// toUTF8 converts a value of the given charset to UTF-8
func toUTF8(value, charset string) (string, error) {
	if charset == "" || charset == document.UTF8 || !document.NeedsConvert(value) {
		return value, nil
	}
	return document.Convert(value, document.UTF8, charset)
}

// fromUTF8 converts a UTF-8 value to the given charset. Values that can not
// be converted are returned unchanged.
func fromUTF8(value, charset string) string {
	if charset == "" || charset == document.UTF8 || !document.NeedsConvert(value) {
		return value
	}
	converted, err := document.Convert(value, charset, document.UTF8)
	if err != nil {
		return value
	}
	return converted
}

// packII encodes two unsigned 32 bit integers in little endian order
func packII(a, b int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf, uint32(a))
	binary.LittleEndian.PutUint32(buf[4:], uint32(b))
	return buf
}

// unpackI decodes an unsigned 32 bit little endian integer, 0 if buf is too
// short
func unpackI(buf []byte) int {
	if len(buf) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(buf))
}

// packScale encodes a weight scale as big endian percent, empty for scale 1
func packScale(scale float64) []byte {
	if scale <= 0 || scale == 1 {
		return nil
	}
	v := uint16(int(scale * 100))
	return []byte{byte(v >> 8), byte(v)}
}

// atoi parses the leading integer of s like the server does, 0 if there is
// none
func atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// hasMultiByte reports whether s contains a byte of a multi byte character
func hasMultiByte(s string) bool {
	return document.NeedsConvert(s)
}

// replaceSubmatchFunc replaces every match of re in s by the result of fn,
// which gets the full match followed by the sub matches
func replaceSubmatchFunc(re *regexp.Regexp, s string, fn func(m []string) string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		sb.WriteString(s[last:loc[0]])
		sb.WriteString(fn(m))
		last = loc[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}
