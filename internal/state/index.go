package state

import (
	"fmt"

	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/registry"
)

// Snapshot converts a registered client into catalog records.
func Snapshot(c *registry.Client, position int, opts *config.Options) (*ClientRecord, []*FormatterRecord, error) {
	rec := &ClientRecord{
		Name:     c.Name,
		Prefix:   c.Prefix,
		Color:    c.Color,
		Source:   c.Source,
		Position: position,
	}

	var out []*FormatterRecord
	add := func(local bool) func(string, *formatter.Formatter) error {
		return func(key string, f *formatter.Formatter) error {
			fr, err := formatterRecord(c.Name, key, local, f, opts)
			if err != nil {
				return err
			}
			out = append(out, fr)
			return nil
		}
	}
	if err := c.Public.Walk(add(false)); err != nil {
		return nil, nil, err
	}
	if c.Local != nil {
		if err := c.Local.Walk(add(true)); err != nil {
			return nil, nil, err
		}
	}
	return rec, out, nil
}

func formatterRecord(client, key string, local bool, f *formatter.Formatter, opts *config.Options) (*FormatterRecord, error) {
	args, optIndex, err := f.Infer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Ref(), err)
	}
	rec := &FormatterRecord{
		Client:   client,
		Key:      key,
		Local:    local,
		Home:     f.Home(),
		Name:     f.Name(),
		Kind:     f.Kind(),
		Args:     args,
		OptIndex: optIndex,
		Options:  f.Schema().Keys(),
		Color:    f.ColorToken(),
		Comment:  f.Comment(),
	}
	if local || f.IsHidden() {
		return rec, nil
	}
	if rec.Macro, err = f.Macro(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Ref(), err)
	}
	if opts.Selfdoc {
		rec.Docstring = f.Docstring(opts, nil)
	}
	return rec, nil
}

// IndexRegistry replaces the catalog entries of every client in r.
func IndexRegistry(store Catalog, r *registry.Registry) (int, error) {
	count := 0
	for i, c := range r.Clients() {
		rec, formatters, err := Snapshot(c, i, r.Options())
		if err != nil {
			return count, err
		}
		if err := store.SaveClient(rec, formatters); err != nil {
			return count, fmt.Errorf("client %s: %w", c.Name, err)
		}
		count += len(formatters)
	}
	return count, nil
}
