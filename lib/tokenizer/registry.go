package tokenizer

import (
	"strings"

	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/xserror"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry maps tokenizer names to factories and caches one instance per
// spec string. It is safe for concurrent use.
type Registry struct {
	factories *xsync.MapOf[string, Factory]
	instances *xsync.MapOf[string, Tokenizer]
}

// NewRegistry creates a registry that knows the built-in tokenizers
func NewRegistry() *Registry {
	r := &Registry{
		factories: xsync.NewMapOf[string, Factory](),
		instances: xsync.NewMapOf[string, Tokenizer](),
	}
	r.Register("none", func(string) (Tokenizer, error) { return None{}, nil })
	r.Register("full", func(string) (Tokenizer, error) { return Full{}, nil })
	r.Register("split", func(arg string) (Tokenizer, error) { return NewSplit(arg) })
	r.Register("xlen", func(arg string) (Tokenizer, error) { return NewXlen(arg) })
	r.Register("xstep", func(arg string) (Tokenizer, error) { return NewXstep(arg) })
	return r
}

// Register adds or replaces a factory. Cached instances of the name are
// dropped.
func (r *Registry) Register(name string, factory Factory) {
	name = strings.ToLower(name)
	r.factories.Store(name, factory)
	r.instances.Range(func(spec string, _ Tokenizer) bool {
		if n, _ := ParseSpec(spec); n == name {
			r.instances.Delete(spec)
		}
		return true
	})
}

// Get returns the tokenizer for a spec string like "xlen" or "split(,)"
func (r *Registry) Get(spec string) (Tokenizer, error) {
	if t, ok := r.instances.Load(spec); ok {
		return t, nil
	}

	name, arg := ParseSpec(spec)
	factory, ok := r.factories.Load(name)
	if !ok {
		return nil, xserror.NewConfigError("Undefined custom tokenizer `%s'", name)
	}
	t, err := factory(arg)
	if err != nil {
		return nil, err
	}
	t, _ = r.instances.LoadOrStore(spec, t)
	return t, nil
}

// ForField returns the custom tokenizer of a field
func (r *Registry) ForField(field *scheme.FieldMeta) (Tokenizer, error) {
	t, err := r.Get(field.Tokenizer())
	if err != nil {
		return nil, &xserror.ConfigError{
			Msg: "Invalid custom tokenizer for field `" + field.Name + "'",
			Err: err,
		}
	}
	return t, nil
}

// Check verifies that every custom tokenizer of the scheme can be created
func (r *Registry) Check(s *scheme.FieldScheme) error {
	for _, field := range s.AllFields() {
		if !field.HasCustomTokenizer() {
			continue
		}
		if _, err := r.ForField(field); err != nil {
			return err
		}
	}
	return nil
}

// ParseSpec splits "name(arg)" into its lower case name and argument
func ParseSpec(spec string) (name, arg string) {
	spec = strings.TrimSpace(spec)
	if i := strings.IndexByte(spec, '('); i > 0 && strings.HasSuffix(spec, ")") {
		return strings.ToLower(strings.TrimSpace(spec[:i])), spec[i+1 : len(spec)-1]
	}
	return strings.ToLower(spec), ""
}
