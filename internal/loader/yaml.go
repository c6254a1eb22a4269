package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/texfmt/internal/namespace"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"gopkg.in/yaml.v3"
)

var knownFields = map[string]bool{
	"name":          true,
	"prefix":        true,
	"color":         true,
	"strict":        true,
	"namespace":     true,
	"formatters":    true,
	"local":         true,
	"options":       true,
	"configuration": true,
}

// ParseYAML reads a declarative client. YAML clients can only use template
// backings. Mapping order is kept, so formatters are registered in file
// order.
func ParseYAML(filename string, content []byte) (*registry.Decl, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{File: filename, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	decl := &registry.Decl{
		Name:   strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Source: filename,
	}
	if len(doc.Content) == 0 {
		return decl, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{File: filename, Line: root.Line, Message: "client declaration must be a mapping"}
	}

	p := &yamlParser{file: filename}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if !knownFields[key.Value] {
			return nil, &UnknownFieldError{File: filename, Line: key.Line, Field: key.Value}
		}
		if err := p.field(decl, key.Value, value); err != nil {
			return nil, err
		}
	}
	return decl, nil
}

type yamlParser struct {
	file string
}

func (p *yamlParser) errorf(n *yaml.Node, format string, args ...any) error {
	return &ParseError{File: p.file, Line: n.Line, Message: fmt.Sprintf(format, args...)}
}

func (p *yamlParser) field(decl *registry.Decl, name string, n *yaml.Node) error {
	var err error
	switch name {
	case "name":
		decl.Name, err = p.scalar(n, name)
	case "prefix":
		decl.Prefix, err = p.scalar(n, name)
	case "color":
		decl.Color, err = p.scalar(n, name)
	case "strict":
		var b bool
		if err := n.Decode(&b); err != nil {
			return p.errorf(n, "strict must be a bool")
		}
		decl.Strict = &b
	case "namespace":
		var raw any
		if err := n.Decode(&raw); err != nil {
			return p.errorf(n, "namespace: %v", err)
		}
		if decl.Namespace, err = namespace.DeclFromValue(raw); err != nil {
			return p.errorf(n, "%v", err)
		}
	case "formatters":
		decl.Formatters, err = p.tree(n, name)
	case "local":
		decl.Local, err = p.tree(n, name)
	case "options":
		m, err := p.mapping(n, name)
		if err != nil {
			return err
		}
		if decl.Options, err = options.DecodeSchema(m); err != nil {
			return p.errorf(n, "options: %v", err)
		}
	case "configuration":
		decl.Configuration, err = p.configuration(n)
	}
	return err
}

func (p *yamlParser) scalar(n *yaml.Node, name string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.errorf(n, "%s must be a string", name)
	}
	return n.Value, nil
}

func (p *yamlParser) mapping(n *yaml.Node, at string) (map[string]any, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "%s must be a mapping", at)
	}
	var m map[string]any
	if err := n.Decode(&m); err != nil {
		return nil, p.errorf(n, "%s: %v", at, err)
	}
	return m, nil
}

func (p *yamlParser) tree(n *yaml.Node, at string) (*registry.RawTree, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "%s must be a mapping", at)
	}
	t := &registry.RawTree{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		path := at + "." + key.Value
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag != "!!str" {
				return nil, p.errorf(value, "%s: formatter must be a template string", path)
			}
			t.Add(key.Value, value.Value)
		case yaml.MappingNode:
			if f := valueOf(value, "f"); f != nil && f.Kind != yaml.MappingNode {
				props, err := p.mapping(value, path)
				if err != nil {
					return nil, err
				}
				f, ok := props["f"].(string)
				if !ok {
					return nil, p.errorf(value, "%s.f must be a template string", path)
				}
				delete(props, "f")
				t.Add(key.Value, registry.LeafSpec{F: f, Props: props})
				continue
			}
			sub, err := p.tree(value, path)
			if err != nil {
				return nil, err
			}
			t.Add(key.Value, sub)
		default:
			return nil, p.errorf(value, "%s: formatter must be a template string or a mapping", path)
		}
	}
	return t, nil
}

func (p *yamlParser) configuration(n *yaml.Node) ([]registry.ConfigEntry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "configuration must be a mapping")
	}
	var entries []registry.ConfigEntry
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		props, err := p.mapping(value, "configuration."+key.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, registry.ConfigEntry{Key: key.Value, Props: props})
	}
	return entries, nil
}

// valueOf returns the value node of key in mapping n, or nil.
func valueOf(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
