package registry

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/namespace"
)

// Register runs the registration pass for one client: build the public and
// local trees, apply configuration, bind client options, infer arguments
// once, then generate and write command definitions. Any error aborts the
// pass and leaves the registry unchanged.
func (r *Registry) Register(decl *Decl) (*Client, error) {
	if err := r.checkName(decl); err != nil {
		return nil, err
	}
	if err := decl.Options.Check(); err != nil {
		return nil, r.fail(decl, err)
	}

	strict := r.opts.Strict
	if decl.Strict != nil {
		strict = *decl.Strict
	}
	c := &Client{
		Name:   decl.Name,
		Prefix: decl.Prefix,
		Color:  decl.Color,
		Source: decl.Source,
		Schema: decl.Options,
		Public: namespace.NewTree(decl.Namespace, strict),
		Local:  namespace.NewTree(nil, false),
	}
	logger := r.logger.With("client", c.Name)
	logger.Debug("registering client", "source", c.Source, "strict", strict)

	if err := r.build(c, c.Public, decl.Formatters, ""); err != nil {
		return nil, r.fail(decl, err)
	}
	if err := r.build(c, c.Local, decl.Local, ""); err != nil {
		return nil, r.fail(decl, errors.Wrap(err, "local"))
	}
	for _, entry := range decl.Configuration {
		if err := r.configure(c, entry); err != nil {
			return nil, r.fail(decl, err)
		}
	}

	each := func(fn func(*formatter.Formatter) error) error {
		for _, tree := range []*namespace.Tree{c.Public, c.Local} {
			err := tree.Walk(func(_ string, f *formatter.Formatter) error { return fn(f) })
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := each(func(f *formatter.Formatter) error { return f.BindClientOptions(c.Schema) }); err != nil {
		return nil, r.fail(decl, err)
	}
	if err := each(func(f *formatter.Formatter) error {
		_, _, err := f.Infer()
		return err
	}); err != nil {
		return nil, r.fail(decl, err)
	}

	err := c.Public.Walk(func(_ string, f *formatter.Formatter) error {
		m, err := f.Macro(r.opts)
		if err != nil || m == "" {
			return err
		}
		if r.opts.Selfdoc {
			f.Docstring(r.opts, nil)
		}
		c.Macros = append(c.Macros, m)
		return nil
	})
	if err != nil {
		return nil, r.fail(decl, err)
	}
	for _, m := range c.Macros {
		if err := r.host.Write(m); err != nil {
			return nil, r.fail(decl, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[c.Name]; dup {
		return nil, r.fail(decl, errors.New("client registered twice"))
	}
	r.order = append(r.order, c)
	r.byName[c.Name] = c
	logger.Info("client registered",
		"formatters", c.Public.Len(), "local", c.Local.Len(), "macros", len(c.Macros))
	return c, nil
}

func (r *Registry) checkName(decl *Decl) error {
	if decl == nil {
		return &RegistryError{Message: "nil declaration"}
	}
	if decl.Name == "" {
		return &RegistryError{Source: decl.Source, Message: "client name cannot be empty"}
	}
	if strings.ContainsAny(decl.Name, ":. \t") {
		return &RegistryError{Client: decl.Name, Source: decl.Source,
			Message: "client name cannot contain ':', '.' or spaces"}
	}
	if _, ok := r.Client(decl.Name); ok {
		return &RegistryError{Client: decl.Name, Source: decl.Source, Message: "client already registered"}
	}
	return nil
}

func (r *Registry) fail(decl *Decl, err error) error {
	return diag.Config(errors.Wrapf(err, "client %q", decl.Name))
}

func (r *Registry) origin(c *Client) formatter.Origin {
	return formatter.Origin{Client: c.Name, Prefix: c.Prefix, Color: c.Color, Logger: r.logger}
}

// build wraps every leaf of raw into a formatter and inserts it into tree.
func (r *Registry) build(c *Client, tree *namespace.Tree, raw *RawTree, prefix string) error {
	if raw == nil {
		return nil
	}
	for _, e := range raw.Entries {
		key := e.Key
		if prefix != "" {
			key = prefix + "." + e.Key
		}
		if sub, ok := e.Value.(*RawTree); ok {
			if err := r.build(c, tree, sub, key); err != nil {
				return err
			}
			continue
		}

		backing, props := e.Value, map[string]any(nil)
		if spec, ok := e.Value.(LeafSpec); ok {
			backing, props = spec.F, spec.Props
		}
		f, err := formatter.New(key, backing, r.origin(c))
		if err != nil {
			return err
		}
		if len(props) > 0 {
			if err := f.UpdateMap(props); err != nil {
				return err
			}
		}
		if err := tree.Insert(key, f); err != nil {
			return err
		}
	}
	return nil
}

// configure applies one configuration entry. A key that is not in the
// client's own trees is resolved across registered clients and a copy is
// added to the client's public tree, which publishes it under the
// client's prefix.
func (r *Registry) configure(c *Client, entry ConfigEntry) error {
	owner, key := SplitRef(entry.Key)

	var f *formatter.Formatter
	if owner == "" || owner == c.Name {
		if found, ok := c.Public.Lookup(key); ok {
			f = found
		} else if found, ok := c.Local.Lookup(key); ok {
			f = found
		}
	}
	if f == nil {
		ref := entry.Key
		if owner == c.Name {
			ref = key
		}
		src, err := r.Lookup(ref)
		if err != nil {
			return diag.Config(errors.Wrapf(err, "configuration %q", entry.Key))
		}
		if src.Macroized() && (hasProp(entry.Props, "name") || hasProp(entry.Props, "color")) {
			return diag.Config(errors.WithHint(
				errors.Wrapf(formatter.ErrAlreadyMacroized, "configuration %q: cannot rename or recolor %s", entry.Key, src.Ref()),
				"its command already exists; publish it without name or color"))
		}
		f = src.Clone(r.origin(c))
		if err := c.Public.Insert(key, f); err != nil {
			return errors.Wrapf(err, "publishing %s", src.Ref())
		}
		r.logger.Debug("published formatter", "client", c.Name, "from", src.Ref(), "key", key)
	}
	if err := f.UpdateMap(entry.Props); err != nil {
		return errors.Wrapf(err, "configuration %q", entry.Key)
	}
	return nil
}

func hasProp(props map[string]any, key string) bool {
	_, ok := props[key]
	return ok
}

// String implements fmt.Stringer for debugging.
func (c *Client) String() string {
	return fmt.Sprintf("%s(prefix=%q, %d formatters)", c.Name, c.Prefix, c.Public.Len())
}
