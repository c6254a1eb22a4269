package starlark

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/namespace"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Predeclared returns the globals available to client files.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"struct":  starlark.NewBuiltin("struct", starlarkstruct.Make),
		"nocolor": starlark.String(config.ColorNone),
	}
}

// LoadClient executes a client file and converts its globals into a
// declaration. The globals read are name, prefix, color, strict, namespace,
// formatters, local, options and configuration; anything else is private
// to the file. Formatter values may be template strings, functions, dicts
// with an "f" key (a formatter with properties) or nested dicts.
func LoadClient(filename string, src []byte, pool *ThreadPool) (*registry.Decl, error) {
	thread := pool.Get("load:" + filepath.Base(filename))
	defer pool.Put(thread)

	globals, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, Predeclared())
	if err != nil {
		return nil, &LoadError{File: filename, Message: "Starlark execution error: " + err.Error(), Cause: err}
	}

	c := &clientReader{file: filename, pool: pool, globals: globals}
	decl := &registry.Decl{Source: filename}

	decl.Name = c.str("name", strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	decl.Prefix = c.str("prefix", "")
	decl.Color = c.str("color", "")
	if v, ok := globals["strict"]; ok {
		b, isBool := v.(starlark.Bool)
		if !isBool {
			c.fail("strict must be a bool, got %s", v.Type())
		} else {
			strict := bool(b)
			decl.Strict = &strict
		}
	}
	if v, ok := globals["namespace"]; ok {
		raw, err := ToGo(v)
		if err != nil {
			c.fail("namespace: %v", err)
		} else if decl.Namespace, err = namespace.DeclFromValue(raw); err != nil {
			c.fail("namespace: %v", err)
		}
	}
	decl.Formatters = c.tree("formatters")
	decl.Local = c.tree("local")
	if v, ok := globals["options"]; ok {
		decl.Options = c.schema(v)
	}
	if v, ok := globals["configuration"]; ok {
		decl.Configuration = c.configuration(v)
	}

	if c.err != nil {
		return nil, c.err
	}
	return decl, nil
}

type clientReader struct {
	file    string
	pool    *ThreadPool
	globals starlark.StringDict
	err     error
}

func (c *clientReader) fail(format string, args ...any) {
	if c.err == nil {
		c.err = &LoadError{File: c.file, Message: fmt.Sprintf(format, args...)}
	}
}

func (c *clientReader) str(name, def string) string {
	v, ok := c.globals[name]
	if !ok {
		return def
	}
	s, ok := starlark.AsString(v)
	if !ok {
		c.fail("%s must be a string, got %s", name, v.Type())
		return def
	}
	return s
}

func (c *clientReader) tree(name string) *registry.RawTree {
	v, ok := c.globals[name]
	if !ok {
		return nil
	}
	d, ok := v.(*starlark.Dict)
	if !ok {
		c.fail("%s must be a dict, got %s", name, v.Type())
		return nil
	}
	return c.rawTree(d, name)
}

func (c *clientReader) rawTree(d *starlark.Dict, at string) *registry.RawTree {
	t := &registry.RawTree{}
	for _, item := range d.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			c.fail("%s: keys must be strings, got %s", at, item[0].Type())
			return t
		}
		path := at + "." + key
		switch v := item[1].(type) {
		case *starlark.Dict:
			if f, found, _ := v.Get(starlark.String("f")); found && !isDict(f) {
				props := c.props(v, path)
				delete(props, "f")
				t.Add(key, registry.LeafSpec{F: c.backing(f, path), Props: props})
			} else {
				t.Add(key, c.rawTree(v, path))
			}
		default:
			t.Add(key, c.backing(v, path))
		}
	}
	return t
}

func isDict(v starlark.Value) bool {
	_, ok := v.(*starlark.Dict)
	return ok
}

func (c *clientReader) backing(v starlark.Value, at string) any {
	switch b := v.(type) {
	case starlark.String:
		return string(b)
	case *starlark.Function:
		return NewFunction(b, c.pool)
	default:
		c.fail("%s: formatter must be a template string or a function, got %s", at, v.Type())
		return nil
	}
}

// props converts a property dict, keeping functions as formatter backings.
func (c *clientReader) props(d *starlark.Dict, at string) map[string]any {
	out := make(map[string]any, d.Len())
	for _, item := range d.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			c.fail("%s: property names must be strings", at)
			return out
		}
		if fn, ok := item[1].(*starlark.Function); ok {
			out[key] = NewFunction(fn, c.pool)
			continue
		}
		v, err := ToGo(item[1])
		if err != nil {
			c.fail("%s.%s: %v", at, key, err)
			return out
		}
		out[key] = v
	}
	return out
}

func (c *clientReader) schema(v starlark.Value) options.Schema {
	raw, err := ToGo(v)
	if err != nil {
		c.fail("options: %v", err)
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		c.fail("options must be a dict, got %s", v.Type())
		return nil
	}
	s, err := options.DecodeSchema(m)
	if err != nil {
		c.fail("options: %v", err)
		return nil
	}
	return s
}

func (c *clientReader) configuration(v starlark.Value) []registry.ConfigEntry {
	d, ok := v.(*starlark.Dict)
	if !ok {
		c.fail("configuration must be a dict, got %s", v.Type())
		return nil
	}
	var entries []registry.ConfigEntry
	for _, item := range d.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			c.fail("configuration: keys must be strings, got %s", item[0].Type())
			return nil
		}
		props, ok := item[1].(*starlark.Dict)
		if !ok {
			c.fail("configuration %q: value must be a dict, got %s", key, item[1].Type())
			return nil
		}
		entries = append(entries, registry.ConfigEntry{Key: key, Props: c.props(props, "configuration."+key)})
	}
	return entries
}

// LoadError represents an error loading a client file.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }
