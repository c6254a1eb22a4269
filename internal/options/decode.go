package options

import (
	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/texfmt/internal/diag"
)

// Decode copies validated values into the struct pointed to by out, using
// `mapstructure` tags. String values are converted weakly, so "3" fills an
// int field. Keys without a matching field are an error.
func Decode(values Values, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "options decoder")
	}
	if err := dec.Decode(map[string]any(values)); err != nil {
		return errors.Wrap(err, "decoding options")
	}
	return nil
}

// DecodeSchema converts a decoded declaration such as
//
//	{"sep": {"type": "string", "default": ", "}}
//
// into a Schema and checks it.
func DecodeSchema(raw map[string]any) (Schema, error) {
	if raw == nil {
		return nil, nil
	}
	var s Schema
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &s,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "schema decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, diag.Config(errors.Wrap(err, "invalid option schema"))
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}
