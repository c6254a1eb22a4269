package formatter

import (
	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/texfmt/internal/diag"
	"github.com/leapstack-labs/texfmt/internal/options"
	"github.com/leapstack-labs/texfmt/internal/template"
)

// Patch is a set of property overrides. Nil fields are left unchanged.
type Patch struct {
	Name          *string        `mapstructure:"name"`
	Color         *string        `mapstructure:"color"`
	Comment       *string        `mapstructure:"comment"`
	Args          []string       `mapstructure:"args"`
	Options       options.Schema `mapstructure:"options"`
	ClientOptions []string       `mapstructure:"client_options"`
	F             any            `mapstructure:"f"`
}

// Update merges p into the entity. Renaming or recoloring after the macro
// was generated fails with ErrAlreadyMacroized; replacing the backing or
// the argument list after inference fails with ErrInferenceDone.
func (f *Formatter) Update(p Patch) error {
	if (p.Name != nil || p.Color != nil) && f.macroDone {
		return diag.Config(errors.WithHint(
			errors.Wrapf(ErrAlreadyMacroized, "%s: cannot rename or recolor", f.Ref()),
			"set name and color in the formatter declaration or configuration, before commands are generated"))
	}
	if (p.Args != nil || p.F != nil) && f.inferred {
		return diag.Config(errors.Wrapf(ErrInferenceDone, "%s: cannot change args or backing", f.Ref()))
	}

	if p.F != nil {
		switch b := p.F.(type) {
		case string:
			f.tpl, f.fn = template.Parse(b), nil
		case Func:
			f.tpl, f.fn = nil, b
		default:
			return diag.Config(errors.Wrapf(ErrNoBacking, "%s: got %T", f.Ref(), p.F))
		}
	}
	if p.Name != nil {
		f.name = *p.Name
	}
	if p.Color != nil {
		f.color = *p.Color
	}
	if p.Comment != nil {
		f.comment = *p.Comment
	}
	if p.Args != nil {
		f.explicitArgs = append([]string{}, p.Args...)
	}
	if p.Options != nil {
		if err := p.Options.Check(); err != nil {
			return errors.Wrapf(err, "%s", f.Ref())
		}
		f.schema = p.Options
	}
	if p.ClientOptions != nil {
		f.clientOptions = append([]string{}, p.ClientOptions...)
	}
	return nil
}

// UpdateMap decodes a property bag (as read from a declaration file) into a
// Patch and applies it. Unknown properties are an error.
func (f *Formatter) UpdateMap(props map[string]any) error {
	p, err := DecodePatch(props)
	if err != nil {
		return errors.Wrapf(err, "%s", f.Ref())
	}
	return f.Update(p)
}

// DecodePatch converts a property bag into a Patch.
func DecodePatch(props map[string]any) (Patch, error) {
	var p Patch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return p, errors.Wrap(err, "property decoder")
	}
	if err := dec.Decode(props); err != nil {
		return p, diag.Config(errors.WithHint(
			errors.Wrap(err, "invalid formatter properties"),
			"known properties: f, name, color, comment, args, options, client_options"))
	}
	return p, nil
}
