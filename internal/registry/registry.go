// Package registry owns the registered clients and resolves formatter
// references across them. Clients registered later shadow earlier ones for
// bare keys.
package registry

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/host"
	"github.com/leapstack-labs/texfmt/internal/namespace"
	"github.com/leapstack-labs/texfmt/internal/options"
)

// Client is one registered formatter tree.
type Client struct {
	Name   string
	Prefix string
	Color  string
	Source string
	Schema options.Schema

	Public *namespace.Tree
	Local  *namespace.Tree

	// Macros holds the command definitions in emission order.
	Macros []string
}

// Formatters returns the public formatters in declaration order.
func (c *Client) Formatters() []*formatter.Formatter {
	var out []*formatter.Formatter
	_ = c.Public.Walk(func(_ string, f *formatter.Formatter) error {
		out = append(out, f)
		return nil
	})
	return out
}

// Registry holds clients in registration order.
type Registry struct {
	mu     sync.RWMutex
	opts   *config.Options
	host   host.Writer
	logger *slog.Logger

	order  []*Client
	byName map[string]*Client
}

// New creates an empty registry. A nil host discards written text; a nil
// logger discards logs.
func New(opts *config.Options, h host.Writer, logger *slog.Logger) *Registry {
	if opts == nil {
		opts = config.Default()
	}
	if h == nil {
		h = host.NewLaTeX(io.Discard)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		opts:   opts,
		host:   h,
		logger: logger,
		byName: make(map[string]*Client),
	}
}

// Options returns the engine options. Callers must not modify them.
func (r *Registry) Options() *config.Options { return r.opts }

// Host returns the write primitive.
func (r *Registry) Host() host.Writer { return r.host }

// Client returns a registered client by name.
func (r *Registry) Client(name string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Clients returns the clients in registration order.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Client(nil), r.order...)
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// SplitRef splits "client:key" into its parts. A bare key has no client.
func SplitRef(ref string) (client, key string) {
	if c, k, ok := strings.Cut(ref, ":"); ok {
		return c, k
	}
	return "", ref
}

// Lookup resolves ref to a public formatter. A bare key is searched in
// every client, most recently registered first; "client:key" searches one
// client.
func (r *Registry) Lookup(ref string) (*formatter.Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(ref)
}

func (r *Registry) lookupLocked(ref string) (*formatter.Formatter, error) {
	clientName, key := SplitRef(ref)
	if clientName != "" {
		c, ok := r.byName[clientName]
		if !ok {
			return nil, errors.WithHintf(
				errors.Wrapf(ErrNotFound, "%q: no client %q", ref, clientName),
				"registered clients: %s", strings.Join(r.namesLocked(), ", "))
		}
		if f, ok := c.Public.Lookup(key); ok {
			return f, nil
		}
		return nil, errors.Wrapf(ErrNotFound, "%q", ref)
	}
	for i := len(r.order) - 1; i >= 0; i-- {
		if f, ok := r.order[i].Public.Lookup(key); ok {
			return f, nil
		}
	}
	return nil, errors.WithHintf(
		errors.Wrapf(ErrNotFound, "%q", ref),
		"searched clients: %s", strings.Join(r.namesLocked(), ", "))
}

// LookupLocal resolves key in the local tree of client.
func (r *Registry) LookupLocal(client, key string) (*formatter.Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[client]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "local %q: no client %q", key, client)
	}
	if f, ok := c.Local.Lookup(key); ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "local %q in client %q", key, client)
}

func (r *Registry) namesLocked() []string {
	names := make([]string, len(r.order))
	for i, c := range r.order {
		names[i] = c.Name
	}
	return names
}

// Format applies the formatter named by ref to args.
func (r *Registry) Format(ref string, args ...any) (string, error) {
	f, err := r.Lookup(ref)
	if err != nil {
		return "", err
	}
	return f.Apply(r.contextFor(f.Home()), args...)
}

// Write formats and hands the result to the host.
func (r *Registry) Write(ref string, args ...any) error {
	out, err := r.Format(ref, args...)
	if err != nil {
		return err
	}
	return r.host.Write(out)
}

// Dispatch is the entry point of generated document commands. values come
// in command slot order, options first. The result is colored when coloring
// is enabled and the resolved color is not "nocolor".
func (r *Registry) Dispatch(ref, color string, values ...string) (string, error) {
	f, err := r.Lookup(ref)
	if err != nil {
		return "", err
	}
	args, err := f.DispatchValues(values)
	if err != nil {
		return "", err
	}
	out, err := f.Apply(r.contextFor(f.Home()), args...)
	if err != nil {
		return "", err
	}
	if !r.opts.Color {
		return out, nil
	}
	c := f.ResolveColor(color, r.opts)
	if c == config.ColorNone {
		return out, nil
	}
	return r.host.Colorize(c, out), nil
}
