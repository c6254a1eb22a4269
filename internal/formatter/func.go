package formatter

import (
	"log/slog"

	"github.com/leapstack-labs/texfmt/internal/config"
)

// Context is the engine handle passed as the first argument of every
// function formatter.
type Context interface {
	// Format applies the formatter named by ref ("key" or "client:key").
	Format(ref string, args ...any) (string, error)
	// Local applies a formatter from the calling client's local tree.
	Local(key string, args ...any) (string, error)
	Options() *config.Options
	Client() string
	Logger() *slog.Logger
}

// Func is a function backing. Params lists every declared positional
// parameter, the leading context parameter included.
type Func interface {
	Name() string
	Params() []string
	Call(ctx Context, args []any) (string, error)
}

// Documented is implemented by functions carrying a docstring.
type Documented interface {
	Doc() string
}

// GoFunc is a Func implemented in Go. Since Go does not keep parameter
// names at runtime, they are supplied when the function is built.
type GoFunc struct {
	name   string
	params []string
	doc    string
	fn     func(ctx Context, args []any) (string, error)
}

// NewGoFunc wraps fn. params are the logical argument names, without the
// context parameter.
func NewGoFunc(name string, fn func(ctx Context, args []any) (string, error), params ...string) *GoFunc {
	return &GoFunc{
		name:   name,
		params: append([]string{"ctx"}, params...),
		fn:     fn,
	}
}

// WithDoc sets the docstring and returns f.
func (f *GoFunc) WithDoc(doc string) *GoFunc {
	f.doc = doc
	return f
}

func (f *GoFunc) Name() string     { return f.name }
func (f *GoFunc) Params() []string { return f.params }
func (f *GoFunc) Doc() string      { return f.doc }

func (f *GoFunc) Call(ctx Context, args []any) (string, error) {
	return f.fn(ctx, args)
}
