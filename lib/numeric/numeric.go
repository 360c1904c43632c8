// Package numeric decodes the sortable encoding the search server uses for
// numeric field values inside query descriptions.
//
// Only decoding is implemented, the client never has to produce the format.
package numeric

import (
	"math"
	"strconv"
)

// Decode converts a sortable encoded number back to a float rounded to two
// decimals. The special encodings are "\x80" for 0, nine 0xff bytes for
// +Inf and the empty string for -Inf.
func Decode(value []byte) float64 {
	switch {
	case len(value) == 0:
		return math.Inf(-1)
	case len(value) == 1 && value[0] == 0x80:
		return 0
	case isPositiveInf(value):
		return math.Inf(1)
	}

	at := func(i int) int64 {
		if i < len(value) {
			return int64(value[i])
		}
		return 0
	}

	i := 0
	c := at(0)
	c ^= (c & 0xc0) >> 1
	negative := c&0x80 == 0
	exponentNegative := c&0x40 != 0
	longExponent := c&0x20 == 0
	exponent := c & 0x1f

	if !longExponent {
		exponent >>= 2
		if negative != exponentNegative {
			exponent ^= 0x07
		}
	} else {
		i++
		c = at(i)
		exponent <<= 6
		exponent |= c >> 2
		if negative != exponentNegative {
			exponent ^= 0x07ff
		}
	}

	word1 := (c & 0x03) << 24
	word1 |= at(i+1) << 16
	word1 |= at(i+2) << 8
	word1 |= at(i + 3)
	i += 3

	var word2 int64
	if i < len(value) {
		word2 = at(i+1) << 24
		word2 |= at(i+2) << 16
		word2 |= at(i+3) << 8
		word2 |= at(i + 4)
	}

	if !negative {
		word1 |= 1 << 26
	} else {
		word1 = -word1
		if word2 != 0 {
			word1++
		}
		word2 = -word2 & 0xffffffff
		word1 &= 0x03ffffff
	}

	mantissa := 0.0
	if word2 != 0 {
		mantissa = float64(word2) / 4294967296.0
	}
	mantissa += float64(word1)
	if negative {
		mantissa /= 1 << 26
	} else {
		mantissa /= 1 << 27
	}

	if exponentNegative {
		exponent = -exponent
	}
	exponent += 8
	if negative {
		mantissa = -mantissa
	}

	return math.Round(mantissa*math.Pow(2, float64(exponent))*100) / 100
}

// Format renders a decoded number the way it appears in query descriptions
func Format(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isPositiveInf(value []byte) bool {
	if len(value) != 9 {
		return false
	}
	for _, b := range value {
		if b != 0xff {
			return false
		}
	}
	return true
}
