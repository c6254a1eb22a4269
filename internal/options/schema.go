package options

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
)

// Type is the value type of a declared option.
type Type string

// Supported option types.
const (
	String Type = "string"
	Bool   Type = "bool"
	Int    Type = "int"
	Choice Type = "choice"
)

// Spec declares one accepted option.
type Spec struct {
	Type    Type     `mapstructure:"type" yaml:"type" json:"type"`
	Choices []string `mapstructure:"choices" yaml:"choices,omitempty" json:"choices,omitempty"`
	Default any      `mapstructure:"default" yaml:"default,omitempty" json:"default,omitempty"`
	Doc     string   `mapstructure:"doc" yaml:"doc,omitempty" json:"doc,omitempty"`
}

// Schema maps option keys to their declarations. A nil schema accepts any
// key and performs no coercion beyond bare keys becoming true.
type Schema map[string]Spec

// Values is a validated option set.
type Values map[string]any

// Keys returns the declared keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Check validates the declarations themselves.
func (s Schema) Check() error {
	for _, k := range s.Keys() {
		spec := s[k]
		switch spec.Type {
		case String, Bool, Int:
		case Choice:
			if len(spec.Choices) == 0 {
				return diag.Configf("option %q: choice type needs at least one choice", k)
			}
		case "":
			return diag.Configf("option %q: missing type", k)
		default:
			return diag.Config(errors.WithHint(
				errors.Newf("option %q: unknown type %q", k, spec.Type),
				"valid types: string, bool, int, choice"))
		}
		if spec.Default != nil {
			if _, err := spec.coerce(k, fmt.Sprint(spec.Default)); err != nil {
				return errors.Wrap(err, "default")
			}
		}
	}
	return nil
}

// Merge returns a schema holding the entries of all given schemas. Later
// schemas win on duplicate keys. Merging only nil schemas yields nil.
func Merge(schemas ...Schema) Schema {
	var out Schema
	for _, s := range schemas {
		if s == nil {
			continue
		}
		if out == nil {
			out = make(Schema, len(s))
		}
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Subset returns the entries of s named in keys. It fails with
// ErrNoOptionProvider when s is nil and with an UnknownOptionError for a
// key s does not declare.
func (s Schema) Subset(keys []string) (Schema, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if s == nil {
		return nil, diag.Config(errors.Wrapf(ErrNoOptionProvider, "requested %v", keys))
	}
	out := make(Schema, len(keys))
	for _, k := range keys {
		spec, ok := s[k]
		if !ok {
			return nil, unknown(k, s)
		}
		out[k] = spec
	}
	return out, nil
}

// Validate normalizes raw pairs against schema: declared defaults are
// filled, booleans are coerced from "true", "false" and "", and unknown keys
// fail. Later duplicates override earlier ones.
func Validate(raw []Pair, schema Schema) (Values, error) {
	out := make(Values, len(raw)+len(schema))
	for k, spec := range schema {
		if spec.Default != nil {
			v, err := spec.coerce(k, fmt.Sprint(spec.Default))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
	}
	for _, p := range raw {
		if schema == nil {
			if p.Bare {
				out[p.Key] = true
			} else {
				out[p.Key] = p.Value
			}
			continue
		}
		spec, ok := schema[p.Key]
		if !ok {
			return nil, unknown(p.Key, schema)
		}
		value := p.Value
		if p.Bare {
			if spec.Type != Bool {
				return nil, diag.Config(&InvalidValueError{Key: p.Key, Want: string(spec.Type), Msg: "value required"})
			}
			value = "true"
		}
		v, err := spec.coerce(p.Key, value)
		if err != nil {
			return nil, err
		}
		out[p.Key] = v
	}
	return out, nil
}

// ParseAndValidate is Parse followed by Validate.
func ParseAndValidate(s string, schema Schema) (Values, error) {
	raw, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return Validate(raw, schema)
}

func (spec Spec) coerce(key, value string) (any, error) {
	switch spec.Type {
	case Bool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, diag.Config(&InvalidValueError{Key: key, Value: value, Want: "bool"})
	case Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, diag.Config(&InvalidValueError{Key: key, Value: value, Want: "int"})
		}
		return n, nil
	case Choice:
		if !slices.Contains(spec.Choices, value) {
			return nil, diag.Config(errors.WithHintf(
				&InvalidValueError{Key: key, Value: value, Want: "choice"},
				"valid choices: %s", strings.Join(spec.Choices, ", ")))
		}
		return value, nil
	default:
		return value, nil
	}
}

func unknown(key string, schema Schema) error {
	return diag.Config(errors.WithHintf(
		&UnknownOptionError{Key: key},
		"known options: %s", strings.Join(schema.Keys(), ", ")))
}

// String renders values as a canonical option string with sorted keys.
func (v Values) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := fmt.Sprint(v[k])
		if strings.ContainsAny(s, ",=") || strings.TrimSpace(s) != s {
			s = "{" + s + "}"
		}
		parts = append(parts, k+"="+s)
	}
	return strings.Join(parts, ", ")
}
