// Package builtin provides the formatters shipped with texfmt, registered
// as the hidden client "texfmt". Clients publish them through their
// configuration.
package builtin

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/formatter"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"github.com/leapstack-labs/texfmt/internal/template"
)

// ClientName is the name of the built-in client.
const ClientName = "texfmt"

// Join joins items with sep, using lastSep before the final item.
//
//	Join([]string{"a", "b", "c"}, ", ", " and ") == "a, b and c"
func Join(items []string, sep, lastSep string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	n := len(items) - 1
	return strings.Join(items[:n], sep) + lastSep + items[n]
}

// Range formats a page or number range written as "start-end". An end of
// "f" or "ff" (or nothing) appends follow or ffollow directly; any other end
// is joined with sep. Text without a dash is returned as is.
//
//	Range("3-4", "--", "f.", "ff.")  == "3--4"
//	Range("5-ff", "--", "f.", "ff.") == "5ff."
func Range(text, sep, follow, ffollow string) string {
	start, end, ok := strings.Cut(text, "-")
	if !ok {
		return text
	}
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(strings.TrimLeft(end, "-"))
	switch end {
	case "f":
		return start + follow
	case "ff", "":
		return start + ffollow
	default:
		return start + sep + end
	}
}

// Items converts a formatter argument to list items. Strings are split on
// commas; lists are converted element-wise.
func Items(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		parts := strings.Split(x, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			out[i] = formatter.Stringify(e)
		}
		return out, nil
	default:
		return nil, errors.Newf("items must be a string or a list, got %T", v)
	}
}

// joinOptions and rangeOptions hold the per-call options of list.join and
// range. A nil field falls back to the engine default.
type joinOptions struct {
	Sep     *string `mapstructure:"sep"`
	LastSep *string `mapstructure:"last_sep"`
}

type rangeOptions struct {
	Sep     *string `mapstructure:"sep"`
	Follow  *string `mapstructure:"follow"`
	Ffollow *string `mapstructure:"ffollow"`
}

func decodeOptions(name string, arg any, out any) error {
	values, _ := arg.(options.Values)
	if err := options.Decode(values, out); err != nil {
		return errors.Wrapf(err, "%s options", name)
	}
	return nil
}

func or(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func joinFunc() *formatter.GoFunc {
	return formatter.NewGoFunc("join", func(ctx formatter.Context, args []any) (string, error) {
		items, err := Items(args[0])
		if err != nil {
			return "", err
		}
		var opts joinOptions
		if err := decodeOptions("list.join", args[1], &opts); err != nil {
			return "", err
		}
		o := ctx.Options()
		sep := or(opts.Sep, o.ListSep)
		lastSep := or(opts.LastSep, o.ListLastSep)
		if opts.Sep != nil && opts.LastSep == nil {
			ctx.Logger().Warn("list.join: sep given without last_sep, using sep for both", "sep", sep)
			lastSep = sep
		}
		return Join(items, sep, lastSep), nil
	}, "items", template.OptionsField).WithDoc("Joins a comma-separated list, with a distinct last separator.")
}

func rangeFunc() *formatter.GoFunc {
	return formatter.NewGoFunc("range", func(ctx formatter.Context, args []any) (string, error) {
		var opts rangeOptions
		if err := decodeOptions("range", args[1], &opts); err != nil {
			return "", err
		}
		o := ctx.Options()
		return Range(
			formatter.Stringify(args[0]),
			or(opts.Sep, o.RangeSep),
			or(opts.Follow, o.RangeFollow),
			or(opts.Ffollow, o.RangeFfollow),
		), nil
	}, "text", template.OptionsField).WithDoc("Formats a number range such as 3-4 or 5-ff.")
}

// Decl returns the declaration of the built-in client. Every entry is
// hidden by the "_" prefix.
func Decl() *registry.Decl {
	return &registry.Decl{
		Name:   ClientName,
		Prefix: "_",
		Source: "builtin",
		Formatters: registry.Tree(
			"list", registry.Tree(
				"join", registry.LeafSpec{F: joinFunc(), Props: map[string]any{
					template.OptionsField: map[string]any{
						"sep":      map[string]any{"type": "string", "doc": "separator between items"},
						"last_sep": map[string]any{"type": "string", "doc": "separator before the last item"},
					},
				}},
			),
			"range", registry.LeafSpec{F: rangeFunc(), Props: map[string]any{
				template.OptionsField: map[string]any{
					"sep":     map[string]any{"type": "string"},
					"follow":  map[string]any{"type": "string"},
					"ffollow": map[string]any{"type": "string"},
				},
			}},
		),
	}
}

// Register registers the built-in client with r.
func Register(r *registry.Registry) (*registry.Client, error) {
	return r.Register(Decl())
}
