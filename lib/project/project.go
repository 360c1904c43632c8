package project

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hightman/xunsearch/lib/document"
	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/xserror"
)

const (
	// DefaultAppRoot is searched for <name>.ini when XS_APP_ROOT is not set
	DefaultAppRoot = "/usr/local/xunsearch/sdk/php/app"

	DefaultIndexServer  = "8383"
	DefaultSearchServer = "8384"

	// Config keys outside of field sections
	KeyName           = "project.name"
	KeyDefaultCharset = "project.default_charset"
	KeyServerIndex    = "server.index"
	KeyServerSearch   = "server.search"
)

// Project is a parsed project configuration: name, charset, server
// endpoints and the field scheme.
type Project struct {
	Name           string
	DefaultCharset string
	IndexServers   []string // the first one is the primary, the rest are replicas
	SearchServers  []string // candidates, any of them can answer
	Scheme         *scheme.FieldScheme
	File           string // empty if parsed from a string

	config map[string]string
}

// Load reads a project from a file. If file is not a path of an existing
// file it is tried as $XS_APP_ROOT/<file>.ini and finally parsed as ini data.
func Load(file string) (*Project, error) {
	path, ok := Resolve(file)
	if !ok {
		sum := md5.Sum([]byte(file))
		return Parse([]byte(file), hex.EncodeToString(sum[:])[8:16])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xserror.ConfigError{Msg: "Failed to read project file `" + path + "'", Err: err}
	}

	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	var p *Project
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		p, err = ParseYAML(data, name)
	default:
		p, err = Parse(data, name)
	}
	if err != nil {
		return nil, err
	}
	p.File = path
	return p, nil
}

// Resolve finds the project file for a path or project name
func Resolve(file string) (string, bool) {
	if len(file) >= 255 || strings.ContainsAny(file, "\n=") {
		return "", false
	}
	if isFile(file) {
		return file, true
	}

	appRoot := os.Getenv("XS_APP_ROOT")
	if appRoot == "" {
		appRoot = DefaultAppRoot
	}
	for _, ext := range []string{".ini", ".yaml", ".yml"} {
		if candidate := filepath.Join(appRoot, file+ext); isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Parse creates a project from ini data. name is used if the data does not
// set project.name.
func Parse(data []byte, name string) (*Project, error) {
	top, sections := parseIni(string(data))

	fs := scheme.New()
	for _, sec := range sections {
		if err := fs.AddField(sec.name, sec.values); err != nil {
			return nil, err
		}
	}
	return build(top, fs, name)
}

func build(config map[string]string, fs *scheme.FieldScheme, name string) (*Project, error) {
	if err := fs.CheckValid(); err != nil {
		return nil, err
	}

	p := &Project{Scheme: fs, config: config}
	if p.Name = config[KeyName]; p.Name == "" {
		p.Name = name
	}
	if p.DefaultCharset = document.NormalizeCharset(config[KeyDefaultCharset]); p.DefaultCharset == "" {
		p.DefaultCharset = document.UTF8
	}
	p.IndexServers = splitServers(config[KeyServerIndex], DefaultIndexServer)
	p.SearchServers = splitServers(config[KeyServerSearch], DefaultSearchServer)

	if p.Name == "" {
		return nil, xserror.NewConfigError("Missing project name")
	}
	return p, nil
}

// Get returns a raw top level config value, e.g. "project.name"
func (p *Project) Get(key string) (string, bool) {
	v, ok := p.config[key]
	return v, ok
}

// String renders the project in ini syntax
func (p *Project) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = %s\n", KeyName, p.Name)
	fmt.Fprintf(&sb, "%s = %s\n", KeyDefaultCharset, p.DefaultCharset)
	fmt.Fprintf(&sb, "%s = %s\n", KeyServerIndex, strings.Join(p.IndexServers, ";"))
	fmt.Fprintf(&sb, "%s = %s\n\n", KeyServerSearch, strings.Join(p.SearchServers, ";"))
	sb.WriteString(p.Scheme.String())
	return sb.String()
}

func splitServers(value, def string) []string {
	var servers []string
	for _, s := range strings.Split(value, ";") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		servers = []string{def}
	}
	return servers
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
