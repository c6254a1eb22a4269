package registry

import (
	"log/slog"

	"github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/formatter"
)

// callContext is the formatter.Context handed to function backings.
type callContext struct {
	r      *Registry
	client string
}

func (r *Registry) contextFor(client string) formatter.Context {
	return callContext{r: r, client: client}
}

// Context returns the engine context for code running on behalf of client.
func (r *Registry) Context(client string) formatter.Context {
	return r.contextFor(client)
}

func (c callContext) Format(ref string, args ...any) (string, error) {
	return c.r.Format(ref, args...)
}

func (c callContext) Local(key string, args ...any) (string, error) {
	f, err := c.r.LookupLocal(c.client, key)
	if err != nil {
		return "", err
	}
	return f.Apply(c, args...)
}

func (c callContext) Options() *config.Options { return c.r.opts }
func (c callContext) Client() string           { return c.client }

func (c callContext) Logger() *slog.Logger {
	return c.r.logger.With("client", c.client)
}
