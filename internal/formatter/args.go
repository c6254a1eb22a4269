package formatter

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/template"
)

// Infer returns the logical argument names and the 1-based position of the
// options argument (0 if none). The result, error included, is computed on
// the first call and returned unchanged afterwards.
func (f *Formatter) Infer() ([]string, int, error) {
	if !f.inferred {
		f.inferred = true
		switch {
		case f.fn != nil:
			f.args, f.optIndex, f.inferErr = f.inferFunc()
		case f.tpl != nil:
			f.args, f.optIndex, f.inferErr = f.inferTemplate()
		default:
			f.inferErr = diag.Config(errors.Wrap(ErrNoBacking, f.Ref()))
		}
	}
	return f.args, f.optIndex, f.inferErr
}

// Args returns the inferred argument names, running inference if needed.
func (f *Formatter) Args() ([]string, error) {
	args, _, err := f.Infer()
	return args, err
}

// OptIndex returns the inferred options position, running inference if
// needed.
func (f *Formatter) OptIndex() (int, error) {
	_, idx, err := f.Infer()
	return idx, err
}

// Inferred reports whether inference has run.
func (f *Formatter) Inferred() bool { return f.inferred }

func (f *Formatter) inferFunc() ([]string, int, error) {
	if f.explicitArgs != nil {
		return nil, 0, diag.Config(errors.Wrapf(ErrArgsOnFunction, "%s (function %s)", f.Ref(), f.fn.Name()))
	}
	params := f.fn.Params()
	if len(params) == 0 {
		return nil, 0, diag.Config(errors.WithHint(
			errors.Wrapf(ErrNoContextParam, "%s (function %s)", f.Ref(), f.fn.Name()),
			"the first parameter receives the engine context"))
	}
	args := slices.Clone(params[1:])
	return args, slices.Index(args, template.OptionsField) + 1, nil
}

func (f *Formatter) inferTemplate() ([]string, int, error) {
	fields := f.tpl.Fields()
	hasOpts := f.tpl.HasField(template.OptionsField)
	for _, e := range f.tpl.Lint() {
		f.logger.Warn("malformed field left as text", "error", e.Error(), "template", f.tpl.Source())
	}

	var mandatory []string
	if f.explicitArgs == nil {
		mandatory = withoutOptions(fields)
		if len(mandatory) > 1 {
			return nil, 0, diag.Config(errors.WithHintf(
				errors.Wrapf(ErrAmbiguousTemplate, "%s: template %q has fields %s",
					f.Ref(), f.tpl.Source(), strings.Join(mandatory, ", ")),
				"declare args to fix their order, e.g. args = [%q, ...]", mandatory[0]))
		}
	} else {
		mandatory = withoutOptions(f.explicitArgs)
		for _, a := range f.explicitArgs {
			if !f.tpl.HasField(a) {
				return nil, 0, diag.Config(errors.WithHintf(
					errors.Wrapf(ErrUnknownArg, "%s: argument %q, template %q", f.Ref(), a, f.tpl.Source()),
					"available fields: %s", strings.Join(fields, ", ")))
			}
		}
		for _, field := range withoutOptions(fields) {
			if !slices.Contains(mandatory, field) {
				f.logger.Warn("template field has no declared argument and stays unreplaced",
					"field", field, "template", f.tpl.Source(), "args", f.explicitArgs)
			}
		}
	}

	if hasOpts {
		return append([]string{template.OptionsField}, mandatory...), 1, nil
	}
	return mandatory, 0, nil
}

func withoutOptions(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != template.OptionsField {
			out = append(out, n)
		}
	}
	return out
}
