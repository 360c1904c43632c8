package scheme

import (
	"strings"
	"sync"

	"github.com/hightman/xunsearch/lib/xserror"
)

// MixedVno is the value slot of the body field, it also addresses the mixed
// area when used as a term slot
const MixedVno = 255

// FieldScheme is the ordered set of fields of a project. The id field is
// always the first one. Values are addressed on the wire by the slot
// number (vno) of their field.
type FieldScheme struct {
	fields  []*FieldMeta
	byName  map[string]*FieldMeta
	typeMap map[FieldType]string
	vnoMap  map[uint8]string
}

// New creates an empty field scheme
func New() *FieldScheme {
	return &FieldScheme{
		byName:  make(map[string]*FieldMeta),
		typeMap: make(map[FieldType]string),
		vnoMap:  make(map[uint8]string),
	}
}

// AddField adds a field built from the given config. See AddFieldMeta.
func (s *FieldScheme) AddField(name string, config map[string]string) error {
	return s.AddFieldMeta(NewFieldMeta(name, config))
}

// AddFieldMeta adds a field and assigns its slot number. Names must be unique
// and there can be only one id, title and body field.
func (s *FieldScheme) AddFieldMeta(field *FieldMeta) error {
	if _, ok := s.byName[field.Name]; ok {
		return xserror.NewConfigError("Duplicated field name: `%s'", field.Name)
	}

	if field.IsSpecial() {
		if prev, ok := s.typeMap[field.Type]; ok {
			return xserror.NewConfigError("Duplicated %s field: `%s' and `%s'", strings.ToUpper(field.Type.String()), field.Name, prev)
		}
		s.typeMap[field.Type] = field.Name
	}

	if field.Type == TypeBody {
		field.Vno = MixedVno
	} else {
		if len(s.vnoMap) >= MixedVno {
			return xserror.NewConfigError("Too many fields, can not add `%s'", field.Name)
		}
		field.Vno = uint8(len(s.vnoMap))
	}
	s.vnoMap[field.Vno] = field.Name
	s.byName[field.Name] = field

	if field.Type == TypeID {
		s.fields = append([]*FieldMeta{field}, s.fields...)
	} else {
		s.fields = append(s.fields, field)
	}
	return nil
}

// CheckValid returns a ConfigError if the scheme has no id field
func (s *FieldScheme) CheckValid() error {
	if _, ok := s.typeMap[TypeID]; !ok {
		return xserror.NewConfigError("Missing field of type ID")
	}
	return nil
}

// FieldID returns the id field or nil
func (s *FieldScheme) FieldID() *FieldMeta {
	return s.byType(TypeID)
}

// FieldTitle returns the title field. Without an explicit title the first
// string field that takes part in ranking is used.
func (s *FieldScheme) FieldTitle() *FieldMeta {
	if f := s.byType(TypeTitle); f != nil {
		return f
	}
	for _, f := range s.fields {
		if f.Type == TypeString && !f.IsBoolIndex() {
			return f
		}
	}
	return nil
}

// FieldBody returns the body field or nil
func (s *FieldScheme) FieldBody() *FieldMeta {
	return s.byType(TypeBody)
}

// Field returns the field with the given name
func (s *FieldScheme) Field(name string) (*FieldMeta, error) {
	if f, ok := s.byName[name]; ok {
		return f, nil
	}
	return nil, xserror.NewConfigError("Not exists field with name: `%s'", name)
}

// FieldByVno returns the field stored in the given value slot
func (s *FieldScheme) FieldByVno(vno int) (*FieldMeta, error) {
	if vno >= 0 && vno <= 255 {
		if name, ok := s.vnoMap[uint8(vno)]; ok {
			return s.byName[name], nil
		}
	}
	return nil, xserror.NewConfigError("Not exists field with vno: `%d'", vno)
}

// AllFields returns the fields in scheme order
func (s *FieldScheme) AllFields() []*FieldMeta {
	return append([]*FieldMeta(nil), s.fields...)
}

// VnoMap returns a copy of the slot to field name mapping
func (s *FieldScheme) VnoMap() map[uint8]string {
	m := make(map[uint8]string, len(s.vnoMap))
	for k, v := range s.vnoMap {
		m[k] = v
	}
	return m
}

// String renders the scheme in project file syntax
func (s *FieldScheme) String() string {
	var sb strings.Builder
	for _, f := range s.fields {
		sb.WriteString(f.ToConfig())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *FieldScheme) byType(t FieldType) *FieldMeta {
	if name, ok := s.typeMap[t]; ok {
		return s.byName[name]
	}
	return nil
}

// --------------------------------------------------------------------------
// Search Log Scheme
// --------------------------------------------------------------------------

var (
	loggerOnce   sync.Once
	loggerScheme *FieldScheme
)

// Logger returns the scheme of the search log database (log_db) that backs
// hot and related queries.
func Logger() *FieldScheme {
	loggerOnce.Do(func() {
		s := New()
		_ = s.AddField("id", map[string]string{"type": "id"})
		_ = s.AddField("pinyin", nil)
		_ = s.AddField("partial", nil)
		_ = s.AddField("total", map[string]string{"type": "numeric", "index": "self"})
		_ = s.AddField("lastnum", map[string]string{"type": "numeric", "index": "self"})
		_ = s.AddField("currnum", map[string]string{"type": "numeric", "index": "self"})
		_ = s.AddField("currtag", map[string]string{"type": "string"})
		_ = s.AddField("body", map[string]string{"type": "body"})
		loggerScheme = s
	})
	return loggerScheme
}
