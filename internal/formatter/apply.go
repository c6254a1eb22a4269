package formatter

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/options"
)

// Apply invokes the backing with values in logical argument order. The
// options slot may hold an option string, a map or nothing. When exactly
// one value is missing, it is the options value and is treated as empty.
func (f *Formatter) Apply(ctx Context, values ...any) (string, error) {
	args, optIndex, err := f.Infer()
	if err != nil {
		return "", err
	}
	if optIndex > 0 && len(values) == len(args)-1 {
		values = slices.Insert(slices.Clone(values), optIndex-1, any(nil))
	}
	if len(values) > len(args) || (f.fn != nil && len(values) < len(args)) {
		return "", errors.Wrapf(ErrArity, "%s takes %d (%s), got %d",
			f.Ref(), len(args), strings.Join(args, ", "), len(values))
	}

	if f.fn != nil {
		call := make([]any, len(values))
		copy(call, values)
		if optIndex > 0 {
			opts, err := f.normalizeOptions(values[optIndex-1])
			if err != nil {
				return "", err
			}
			call[optIndex-1] = opts
		}
		out, err := f.fn.Call(ctx, call)
		if err != nil {
			return "", errors.Wrapf(err, "%s", f.Ref())
		}
		return out, nil
	}
	return f.applyTemplate(args, optIndex, values)
}

func (f *Formatter) applyTemplate(args []string, optIndex int, values []any) (string, error) {
	strs := make([]string, len(values))
	for i, v := range values {
		if optIndex > 0 && i == optIndex-1 {
			s, err := f.templateOptions(v)
			if err != nil {
				return "", err
			}
			strs[i] = s
			continue
		}
		strs[i] = Stringify(v)
	}

	if len(args) == 0 {
		return f.tpl.Source(), nil
	}
	if f.explicitArgs == nil && optIndex == 0 && len(strs) == 1 {
		out, err := f.tpl.Fill(strs[0])
		if err != nil {
			f.logger.Warn("degraded fill", "error", err.Error())
		}
		return out, nil
	}
	out, err := f.tpl.Bind(args, strs)
	if err != nil {
		f.logger.Warn("fields left unreplaced", "error", err.Error(), "template", f.tpl.Source())
	}
	return out, nil
}

// templateOptions validates the options value when a schema is declared
// and returns the text substituted for the options field.
func (f *Formatter) templateOptions(v any) (string, error) {
	if f.Schema() == nil {
		switch o := v.(type) {
		case nil:
			return "", nil
		case string:
			return o, nil
		}
	}
	vals, err := f.normalizeOptions(v)
	if err != nil {
		return "", err
	}
	return vals.String(), nil
}

func (f *Formatter) normalizeOptions(v any) (options.Values, error) {
	var raw []options.Pair
	switch o := v.(type) {
	case nil:
	case string:
		p, err := options.Parse(o)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", f.Ref())
		}
		raw = p
	case options.Values:
		raw = pairs(o)
	case map[string]any:
		raw = pairs(o)
	default:
		return nil, errors.Newf("%s: options must be a string or a map, got %T", f.Ref(), v)
	}
	vals, err := options.Validate(raw, f.Schema())
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.Ref())
	}
	return vals, nil
}

func pairs(m map[string]any) []options.Pair {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]options.Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, options.Pair{Key: k, Value: fmt.Sprint(m[k])})
	}
	return out
}

// DispatchValues reorders values received from a document command, where
// the options slot comes first, into logical argument order.
func (f *Formatter) DispatchValues(values []string) ([]any, error) {
	_, optIndex, err := f.Infer()
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(values))
	if optIndex == 0 || len(values) == 0 {
		for _, v := range values {
			out = append(out, v)
		}
		return out, nil
	}
	rest := values[1:]
	for i := 0; i < len(values); i++ {
		if i == optIndex-1 {
			out = append(out, values[0])
			continue
		}
		if len(rest) == 0 {
			break
		}
		out = append(out, rest[0])
		rest = rest[1:]
	}
	return out, nil
}

// Stringify converts a value for template substitution. String slices are
// joined with ", ".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
