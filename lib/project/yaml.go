package project

import (
	"fmt"

	"github.com/hightman/xunsearch/lib/scheme"
	"github.com/hightman/xunsearch/lib/xserror"
	"gopkg.in/yaml.v3"
)

// yamlProject is the yaml form of a project file:
//
//	project:
//	  name: demo
//	  default_charset: utf-8
//	server:
//	  index: 8383
//	  search: 8384
//	fields:
//	  - name: pid
//	    type: id
//	  - name: subject
//	    type: title
type yamlProject struct {
	Project struct {
		Name           string `yaml:"name"`
		DefaultCharset string `yaml:"default_charset"`
	} `yaml:"project"`
	Server struct {
		Index  any `yaml:"index"`
		Search any `yaml:"search"`
	} `yaml:"server"`
	Fields []map[string]any `yaml:"fields"`
}

// ParseYAML creates a project from yaml data
func ParseYAML(data []byte, name string) (*Project, error) {
	var y yamlProject
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, &xserror.ConfigError{Msg: "Failed to parse project yaml", Err: err}
	}

	config := map[string]string{
		KeyName:           y.Project.Name,
		KeyDefaultCharset: y.Project.DefaultCharset,
		KeyServerIndex:    scalar(y.Server.Index),
		KeyServerSearch:   scalar(y.Server.Search),
	}

	fs := scheme.New()
	for i, f := range y.Fields {
		values := make(map[string]string, len(f))
		for k, v := range f {
			values[k] = scalar(v)
		}
		fieldName := values["name"]
		if fieldName == "" {
			return nil, xserror.NewConfigError("Missing name of field #%d", i+1)
		}
		delete(values, "name")
		if err := fs.AddField(fieldName, values); err != nil {
			return nil, err
		}
	}
	return build(config, fs, name)
}

// scalar renders a yaml scalar the way it would be written in an ini file
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case []any:
		// a list of servers
		s := ""
		for i, item := range v {
			if i > 0 {
				s += ";"
			}
			s += scalar(item)
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}
