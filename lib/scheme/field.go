package scheme

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hightman/xunsearch/lib/xserror"
)

// MaxWdf is the largest weight a single term can carry
const MaxWdf = 0x3f

// DefaultTokenizer means the server side segmenter is used for the field
const DefaultTokenizer = "default"

// FieldType is the data type of a field
type FieldType uint8

const (
	TypeString  FieldType = 0
	TypeNumeric FieldType = 1
	TypeDate    FieldType = 2
	TypeID      FieldType = 10
	TypeTitle   FieldType = 11
	TypeBody    FieldType = 12
)

var typeNames = map[FieldType]string{
	TypeString:  "string",
	TypeNumeric: "numeric",
	TypeDate:    "date",
	TypeID:      "id",
	TypeTitle:   "title",
	TypeBody:    "body",
}

func (t FieldType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// ParseFieldType returns the type for a name used in project files
func ParseFieldType(name string) (FieldType, bool) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return 0, false
}

// Flag holds the index options of a field
type Flag uint8

const (
	FlagIndexSelf    Flag = 0x01
	FlagIndexMixed   Flag = 0x02
	FlagIndexBoth    Flag = 0x03
	FlagWithPosition Flag = 0x10
	FlagNonBool      Flag = 0x80
)

// --------------------------------------------------------------------------
// Field Meta
// --------------------------------------------------------------------------

// FieldMeta describes one field of a project. Fields are created while the
// scheme is loaded and must not be changed afterwards.
type FieldMeta struct {
	Name   string
	Cutlen int
	Weight int
	Type   FieldType
	Vno    uint8

	tokenizer string
	flag      Flag
}

// NewFieldMeta creates a field from the key / value pairs of its section in
// the project file.
func NewFieldMeta(name string, config map[string]string) *FieldMeta {
	f := &FieldMeta{
		Name:      name,
		Weight:    1,
		Type:      TypeString,
		tokenizer: DefaultTokenizer,
	}
	if config != nil {
		f.fromConfig(config)
	}
	return f
}

func (f *FieldMeta) fromConfig(config map[string]string) {
	if v, ok := config["type"]; ok {
		if t, ok := ParseFieldType(v); ok {
			f.Type = t
			switch t {
			case TypeID:
				f.flag = FlagIndexSelf
				f.tokenizer = "full"
			case TypeTitle:
				f.flag = FlagIndexBoth | FlagWithPosition
				f.Weight = 5
			case TypeBody:
				f.Vno = MixedVno
				f.flag = FlagIndexSelf | FlagWithPosition
				f.Cutlen = 300
			}
		}
	}

	if v, ok := config["index"]; ok && f.Type != TypeBody {
		var index Flag
		switch strings.ToLower(v) {
		case "self":
			index = FlagIndexSelf
		case "mixed":
			index = FlagIndexMixed
		case "both":
			index = FlagIndexBoth
		default:
			index = f.flag & FlagIndexBoth
		}
		f.flag = f.flag&^FlagIndexBoth | index
		if f.Type == TypeID {
			f.flag |= FlagIndexSelf
		}
	}

	if v, ok := config["cutlen"]; ok {
		f.Cutlen = atoi(v)
	}
	if v, ok := config["weight"]; ok && f.Type != TypeBody {
		f.Weight = atoi(v) & MaxWdf
	}
	if v, ok := config["phrase"]; ok {
		if strings.EqualFold(v, "yes") {
			f.flag |= FlagWithPosition
		} else if strings.EqualFold(v, "no") {
			f.flag &^= FlagWithPosition
		}
	}
	if v, ok := config["non_bool"]; ok {
		if strings.EqualFold(v, "yes") {
			f.flag |= FlagNonBool
		} else if strings.EqualFold(v, "no") {
			f.flag &^= FlagNonBool
		}
	}
	if v, ok := config["tokenizer"]; ok && f.Type != TypeID && v != DefaultTokenizer {
		f.tokenizer = v
	}
}

// Tokenizer returns the tokenizer spec of the field, e.g. "split(,)"
func (f *FieldMeta) Tokenizer() string { return f.tokenizer }

// Flag returns the index flags of the field
func (f *FieldMeta) Flag() Flag { return f.flag }

// WithPos reports whether term positions are stored, which enables phrase search
func (f *FieldMeta) WithPos() bool { return f.flag&FlagWithPosition != 0 }

// IsBoolIndex reports whether the terms of the field take no part in ranking
func (f *FieldMeta) IsBoolIndex() bool {
	if f.flag&FlagNonBool != 0 {
		return false
	}
	return !f.HasIndex() || f.tokenizer != DefaultTokenizer
}

// IsNumeric reports whether the field is of type numeric
func (f *FieldMeta) IsNumeric() bool { return f.Type == TypeNumeric }

// IsSpecial reports whether the field is the id, title or body field
func (f *FieldMeta) IsSpecial() bool {
	return f.Type == TypeID || f.Type == TypeTitle || f.Type == TypeBody
}

// HasIndex reports whether the field is indexed at all
func (f *FieldMeta) HasIndex() bool { return f.flag&FlagIndexBoth != 0 }

// HasIndexMixed reports whether the field is indexed into the mixed area
func (f *FieldMeta) HasIndexMixed() bool { return f.flag&FlagIndexMixed != 0 }

// HasIndexSelf reports whether the field is indexed under its own prefix
func (f *FieldMeta) HasIndexSelf() bool { return f.flag&FlagIndexSelf != 0 }

// HasCustomTokenizer reports whether the field is tokenized on the client
func (f *FieldMeta) HasCustomTokenizer() bool { return f.tokenizer != DefaultTokenizer }

// Val normalises a value before it is indexed. Date values are converted to
// YYYYmmdd, either from a unix timestamp or from a parsable date.
func (f *FieldMeta) Val(value string) (string, error) {
	if f.Type != TypeDate {
		return value, nil
	}
	if len(value) == 8 && isNumeric(value) {
		return value, nil
	}

	if isNumeric(value) {
		ts, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", xserror.NewEncodingError("Invalid timestamp `%s' for field `%s'", value, f.Name)
		}
		return time.Unix(int64(ts), 0).Format("20060102"), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.Local); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", xserror.NewEncodingError("Invalid date `%s' for field `%s'", value, f.Name)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006.01.02",
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ToConfig renders the field as a section of a project file. Options that
// equal the defaults of the field type are left out.
func (f *FieldMeta) ToConfig() string {
	var sb strings.Builder
	sb.WriteString("[" + f.Name + "]\n")

	if f.Type != TypeString {
		sb.WriteString("type = " + f.Type.String() + "\n")
	}

	if index := f.flag & FlagIndexBoth; f.Type != TypeBody && index != 0 {
		switch index {
		case FlagIndexBoth:
			if f.Type != TypeTitle {
				sb.WriteString("index = both\n")
			}
		case FlagIndexMixed:
			sb.WriteString("index = mixed\n")
		default:
			if f.Type != TypeID {
				sb.WriteString("index = self\n")
			}
		}
	}

	if f.Type != TypeID && f.tokenizer != DefaultTokenizer {
		sb.WriteString("tokenizer = " + f.tokenizer + "\n")
	}

	if f.Cutlen > 0 && !(f.Cutlen == 300 && f.Type == TypeBody) {
		sb.WriteString("cutlen = " + strconv.Itoa(f.Cutlen) + "\n")
	}

	if f.Weight != 1 && !(f.Weight == 5 && f.Type == TypeTitle) {
		sb.WriteString("weight = " + strconv.Itoa(f.Weight) + "\n")
	}

	positional := f.Type == TypeBody || f.Type == TypeTitle
	if f.WithPos() && !positional {
		sb.WriteString("phrase = yes\n")
	} else if !f.WithPos() && positional {
		sb.WriteString("phrase = no\n")
	}

	if f.flag&FlagNonBool != 0 {
		sb.WriteString("non_bool = yes\n")
	}
	return sb.String()
}

func (f *FieldMeta) String() string {
	return f.Name
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// atoi parses the leading integer of s, invalid input yields 0
func atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && strings.TrimSpace(s) != ""
}
