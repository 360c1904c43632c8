package highlight

import (
	"regexp"
	"sort"
	"strings"
)

// Emphasis markers wrapped around every highlighted term
const (
	OpenTag  = "<em>"
	CloseTag = "</em>"
)

// dualityLen is the length of a segmenter duality token: two characters of
// three bytes each
const dualityLen = 6

var hasLetter = regexp.MustCompile(`[a-zA-Z]`)

// Reconstruct expands chains of overlapping duality tokens. The segmenter
// splits a run of characters ABCDE into AB, BC, CD, DE, so the run is
// rebuilt and every part that may appear in a document is returned:
// CDE, DE, CD, ABC, BC, AB. All other terms are returned unchanged.
func Reconstruct(tokens []string) []string {
	var terms []string
	for i := 0; i < len(tokens); i++ {
		if !isDuality(tokens[i]) {
			terms = append(terms, tokens[i])
			continue
		}

		j := i + 1
		for ; j < len(tokens); j++ {
			if len(tokens[j]) != dualityLen || tokens[j][:3] != tokens[j-1][3:] {
				break
			}
		}
		k := j - i
		if k == 1 {
			terms = append(terms, tokens[i])
			continue
		}

		i = j - 1
		for k > 0 {
			k--
			j--
			if k&1 == 1 {
				terms = append(terms, tokens[j-1][:3]+tokens[j])
			}
			terms = append(terms, tokens[j])
		}
	}
	return terms
}

func isDuality(token string) bool {
	return len(token) == dualityLen && token[0] >= 0xc0
}

// Highlighter wraps the terms of a query in emphasis markers
type Highlighter struct {
	patterns []*regexp.Regexp
	pairs    []string // old, new, old, new ...
	replacer *strings.Replacer
}

// New creates a highlighter for the given (already reconstructed) terms.
// Terms with ASCII letters match case insensitive.
func New(terms []string) *Highlighter {
	h := &Highlighter{}
	seen := make(map[string]bool)
	var literals []string
	for _, term := range terms {
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		if hasLetter.MatchString(term) {
			h.patterns = append(h.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)))
			continue
		}
		literals = append(literals, term)
		h.pairs = append(h.pairs, term, OpenTag+term+CloseTag)
	}

	// the single pass replacer prefers the longest term at each position
	sorted := append([]string(nil), literals...)
	sort.SliceStable(sorted, func(a, b int) bool { return len(sorted[a]) > len(sorted[b]) })
	args := make([]string, 0, 2*len(sorted))
	for _, term := range sorted {
		args = append(args, term, OpenTag+term+CloseTag)
	}
	h.replacer = strings.NewReplacer(args...)
	return h
}

// Apply highlights value. Literal terms are replaced one after another, or in
// a single pass over the value if strtr is set, which avoids nested markers
// for overlapping terms.
func (h *Highlighter) Apply(value string, strtr bool) string {
	if value == "" {
		return value
	}
	for _, re := range h.patterns {
		value = re.ReplaceAllString(value, OpenTag+"${0}"+CloseTag)
	}
	if len(h.pairs) == 0 {
		return value
	}
	if strtr {
		return h.replacer.Replace(value)
	}
	for i := 0; i < len(h.pairs); i += 2 {
		value = strings.ReplaceAll(value, h.pairs[i], h.pairs[i+1])
	}
	return value
}
