package highlight

import (
	"reflect"
	"testing"
)

func TestReconstruct(t *testing.T) {
	// every character is three bytes in UTF-8
	const a, b, c, d, e = "甲", "乙", "丙", "丁", "戊"

	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{
			name:   "five characters",
			tokens: []string{a + b, b + c, c + d, d + e},
			want:   []string{c + d + e, d + e, c + d, a + b + c, b + c, a + b},
		},
		{
			name:   "four characters",
			tokens: []string{a + b, b + c, c + d},
			want:   []string{c + d, a + b + c, b + c, a + b},
		},
		{
			name:   "three characters",
			tokens: []string{a + b, b + c},
			want:   []string{a + b + c, b + c, a + b},
		},
		{
			name:   "no chain",
			tokens: []string{a + b, d + e},
			want:   []string{a + b, d + e},
		},
		{
			name:   "mixed with ascii",
			tokens: []string{"go", a + b, b + c, "rpc"},
			want:   []string{"go", a + b + c, b + c, a + b, "rpc"},
		},
		{
			name:   "ascii of duality length",
			tokens: []string{"abcdef", "defghi"},
			want:   []string{"abcdef", "defghi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reconstruct(tt.tokens); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reconstruct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	h := New([]string{"Go", "中文", "中文字"})

	tests := []struct {
		name  string
		value string
		strtr bool
		want  string
	}{
		{"case insensitive", "go and GO", false, "<em>go</em> and <em>GO</em>"},
		{"regex meta", "c++ go", false, "c++ <em>go</em>"},
		{"strtr prefers longest", "中文字", true, "<em>中文字</em>"},
		{"sequential replace", "中文", false, "<em>中文</em>"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Apply(tt.value, tt.strtr); got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyQuotesTerms(t *testing.T) {
	h := New([]string{"c++"})
	if got, want := h.Apply("C++ and cxx", false), "<em>C++</em> and cxx"; got != want {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}
