package client

import (
	"errors"
	"math/rand"

	"github.com/hightman/xunsearch/lib/cache"
	"github.com/hightman/xunsearch/lib/project"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/tokenizer"
	"github.com/hightman/xunsearch/lib/xserror"
)

// WithCountCache shares the result counts of queries through a redis cache
func WithCountCache(c *cache.CountCache) Option {
	return func(o *options) { o.counts = c }
}

// XS is the context of one project. It owns the field scheme, the custom
// tokenizers and lazily opened connections to the index and search servers.
//
// An XS is not safe for concurrent use, create one per goroutine.
type XS struct {
	project    *project.Project
	scheme     *scheme.FieldScheme
	bindScheme *scheme.FieldScheme
	tokenizers *tokenizer.Registry
	opts       options

	index  *Index
	search *Search
	scws   *Scws
}

// New creates the context of a loaded project. The custom tokenizers of its
// scheme are checked, no connection is opened.
func New(p *project.Project, opts ...Option) (*XS, error) {
	xs := &XS{
		project:    p,
		scheme:     p.Scheme,
		tokenizers: tokenizer.NewRegistry(),
		opts:       buildOptions(opts),
	}
	xs.tokenizers.Register("scws", func(arg string) (tokenizer.Tokenizer, error) {
		return newScwsTokenizer(xs, arg)
	})
	if err := xs.tokenizers.Check(p.Scheme); err != nil {
		return nil, err
	}
	return xs, nil
}

// Load reads a project file (or project name, or ini data) and creates its
// context
func Load(file string, opts ...Option) (*XS, error) {
	p, err := project.Load(file)
	if err != nil {
		return nil, err
	}
	return New(p, opts...)
}

// newServer creates an unopened connection bound to the project
func (xs *XS) newServer(conn string) *Server {
	o := xs.opts
	o.project = xs.project.Name
	return &Server{conn: conn, opts: o}
}

// Project returns the project configuration
func (xs *XS) Project() *project.Project {
	return xs.project
}

// Name returns the project name
func (xs *XS) Name() string {
	return xs.project.Name
}

// DefaultCharset returns the charset of documents that do not set one
func (xs *XS) DefaultCharset() string {
	return xs.project.DefaultCharset
}

// Tokenizers returns the tokenizer registry of the context. Tokenizers
// registered here are available to fields of the scheme.
func (xs *XS) Tokenizers() *tokenizer.Registry {
	return xs.tokenizers
}

// Scheme returns the field scheme in use
func (xs *XS) Scheme() *scheme.FieldScheme {
	return xs.scheme
}

// Field returns a field of the scheme in use
func (xs *XS) Field(name string) (*scheme.FieldMeta, error) {
	return xs.scheme.Field(name)
}

// SetScheme replaces the scheme in use until RestoreScheme is called
func (xs *XS) SetScheme(fs *scheme.FieldScheme) error {
	if err := fs.CheckValid(); err != nil {
		return err
	}
	if err := xs.tokenizers.Check(fs); err != nil {
		return err
	}
	if xs.bindScheme == nil {
		xs.bindScheme = xs.scheme
	}
	xs.scheme = fs
	if xs.search != nil {
		xs.search.MarkResetScheme()
	}
	return nil
}

// RestoreScheme goes back to the scheme of the project
func (xs *XS) RestoreScheme() {
	if xs.bindScheme == nil {
		return
	}
	xs.scheme = xs.bindScheme
	xs.bindScheme = nil
	if xs.search != nil {
		xs.search.MarkResetScheme()
	}
}

// Index returns the index connection, opened on first use. The first index
// server is the primary, the others are replicas.
func (xs *XS) Index() (*Index, error) {
	if xs.index != nil {
		return xs.index, nil
	}
	servers := xs.project.IndexServers
	if len(servers) == 0 {
		return nil, xserror.NewConfigError("No index server of project `%s'", xs.Name())
	}

	idx := newIndex(xs, servers[0])
	if err := idx.Open(servers[0]); err != nil {
		return nil, err
	}
	if err := idx.SetTimeout(0); err != nil {
		_ = idx.Close()
		return nil, err
	}
	for _, conn := range servers[1:] {
		srv, err := idx.AddServer(conn)
		if err == nil {
			err = srv.SetTimeout(0)
		}
		if err != nil {
			_ = idx.Close()
			return nil, err
		}
	}
	xs.index = idx
	return idx, nil
}

// Search returns the search connection, opened on first use. The search
// servers are tried in random order until one accepts the connection.
func (xs *XS) Search() (*Search, error) {
	if xs.search != nil {
		return xs.search, nil
	}
	servers := xs.project.SearchServers
	if len(servers) == 0 {
		return nil, xserror.NewConfigError("No search server of project `%s'", xs.Name())
	}

	var errs []error
	for _, i := range rand.Perm(len(servers)) {
		s := newSearch(xs, servers[i])
		if err := s.Open(servers[i]); err != nil {
			Logger.Warningf("Search server %s not available: %v", servers[i], err)
			errs = append(errs, err)
			continue
		}
		s.SetCharset(xs.DefaultCharset())
		if xs.bindScheme != nil {
			s.MarkResetScheme()
		}
		xs.search = s
		return s, nil
	}
	return nil, errors.Join(errs...)
}

// Scws returns a segmenter client on the first search server, opened on
// first use
func (xs *XS) Scws() (*Scws, error) {
	if xs.scws != nil {
		return xs.scws, nil
	}
	servers := xs.project.SearchServers
	if len(servers) == 0 {
		return nil, xserror.NewConfigError("No search server of project `%s'", xs.Name())
	}
	srv := xs.newServer(servers[0])
	if err := srv.Open(servers[0]); err != nil {
		return nil, err
	}
	xs.scws = NewScws(srv, xs.DefaultCharset())
	return xs.scws, nil
}

// Close closes all connections of the context
func (xs *XS) Close() error {
	var errs []error
	if xs.index != nil {
		errs = append(errs, xs.index.Close())
		xs.index = nil
	}
	if xs.search != nil {
		errs = append(errs, xs.search.Close())
		xs.search = nil
	}
	if xs.scws != nil {
		errs = append(errs, xs.scws.server.Close())
		xs.scws = nil
	}
	return errors.Join(errs...)
}
