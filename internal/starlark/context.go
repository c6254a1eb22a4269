package starlark

import (
	"fmt"

	"github.com/leapstack-labs/texfmt/internal/formatter"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ContextValue exposes the engine context to Starlark formatters as their
// first argument:
//
//	ctx.format(ref, *args)   apply any formatter
//	ctx.local(key, *args)    apply a formatter of the client's local tree
//	ctx.client               name of the calling client
//	ctx.options              engine options (struct)
//	ctx.warn(msg, **attrs)   log a warning
type ContextValue struct {
	ctx formatter.Context
}

var _ starlark.HasAttrs = (*ContextValue)(nil)

// NewContextValue wraps ctx.
func NewContextValue(ctx formatter.Context) *ContextValue {
	return &ContextValue{ctx: ctx}
}

func (c *ContextValue) String() string        { return fmt.Sprintf("<context %s>", c.ctx.Client()) }
func (c *ContextValue) Type() string          { return "context" }
func (c *ContextValue) Freeze()               {}
func (c *ContextValue) Truth() starlark.Bool  { return starlark.True }
func (c *ContextValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: context") }

var contextAttrs = []string{"client", "format", "local", "options", "warn"}

func (c *ContextValue) AttrNames() []string { return contextAttrs }

func (c *ContextValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "client":
		return starlark.String(c.ctx.Client()), nil
	case "format":
		return starlark.NewBuiltin("format", c.apply(c.ctx.Format)), nil
	case "local":
		return starlark.NewBuiltin("local", c.apply(c.ctx.Local)), nil
	case "options":
		return c.options(), nil
	case "warn":
		return starlark.NewBuiltin("warn", c.warn), nil
	}
	return nil, nil
}

type applyFunc func(ref string, args ...any) (string, error)

func (c *ContextValue) apply(fn applyFunc) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: missing formatter reference", b.Name())
		}
		ref, ok := starlark.AsString(args[0])
		if !ok {
			return nil, fmt.Errorf("%s: reference must be a string, got %s", b.Name(), args[0].Type())
		}
		values := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := ToGo(a)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name(), err)
			}
			values = append(values, v)
		}
		out, err := fn(ref, values...)
		if err != nil {
			return nil, err
		}
		return starlark.String(out), nil
	}
}

func (c *ContextValue) warn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var msg string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, nil, 1, &msg); err != nil {
		return nil, err
	}
	attrs := make([]any, 0, 2*len(kwargs))
	for _, kv := range kwargs {
		v, err := ToGo(kv[1])
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, string(kv[0].(starlark.String)), v)
	}
	c.ctx.Logger().Warn(msg, attrs...)
	return starlark.None, nil
}

func (c *ContextValue) options() starlark.Value {
	o := c.ctx.Options()
	fields := starlark.StringDict{
		"default_color":    starlark.String(o.DefaultColor),
		"list_sep":         starlark.String(o.ListSep),
		"list_last_sep":    starlark.String(o.ListLastSep),
		"range_sep":        starlark.String(o.RangeSep),
		"range_follow":     starlark.String(o.RangeFollow),
		"range_ffollow":    starlark.String(o.RangeFfollow),
		"color":            starlark.Bool(o.Color),
		"selfdoc":          starlark.Bool(o.Selfdoc),
		"strict":           starlark.Bool(o.Strict),
		"dispatch_command": starlark.String(o.DispatchCommand),
	}
	return starlarkstruct.FromStringDict(starlark.String("options"), fields)
}
