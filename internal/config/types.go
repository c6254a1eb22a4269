// Package config provides the package-level options read by the formatter
// engine. It is decoupled from CLI concerns: the CLI layers files, env and
// flags on top of Default() and hands the result to the registry, which
// treats it as read-only.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/leapstack-labs/texfmt/internal/diag"
)

// Color tokens with special meaning.
const (
	ColorDefault = "default" // use Options.DefaultColor
	ColorNone    = "nocolor" // never colorize
)

// Options holds the engine-wide settings consumed by formatters.
type Options struct {
	// DefaultColor replaces the "default" color token.
	DefaultColor string `koanf:"default_color" json:"default_color" yaml:"default_color"`

	// Separators for list.join
	ListSep     string `koanf:"list_sep" json:"list_sep" yaml:"list_sep"`
	ListLastSep string `koanf:"list_last_sep" json:"list_last_sep" yaml:"list_last_sep"`

	// Separators for range
	RangeSep     string `koanf:"range_sep" json:"range_sep" yaml:"range_sep"`
	RangeFollow  string `koanf:"range_follow" json:"range_follow" yaml:"range_follow"`
	RangeFfollow string `koanf:"range_ffollow" json:"range_ffollow" yaml:"range_ffollow"`

	Color   bool `koanf:"color" json:"color" yaml:"color"`       // enable coloring
	Selfdoc bool `koanf:"selfdoc" json:"selfdoc" yaml:"selfdoc"` // enable docstrings
	Strict  bool `koanf:"strict" json:"strict" yaml:"strict"`    // default namespace mode

	// DispatchCommand is the document command generated macros call.
	DispatchCommand string `koanf:"dispatch_command" json:"dispatch_command" yaml:"dispatch_command"`
}

// Validate checks that the options are usable.
func (o *Options) Validate() error {
	if o == nil {
		return diag.Configf("options are nil")
	}
	if strings.TrimSpace(o.DefaultColor) == "" || o.DefaultColor == ColorDefault {
		return diag.Config(errors.WithHint(
			errors.Newf("default_color %q must name a color", o.DefaultColor),
			`use a color name such as "blue", or "nocolor"`))
	}
	cmd := o.DispatchCommand
	if cmd == "" || strings.ContainsAny(cmd, `\{}[] `) {
		return diag.Config(errors.WithHint(
			errors.Newf("dispatch_command %q is not a command name", cmd),
			`give the name without a backslash, e.g. "texfmtDispatch"`))
	}
	return nil
}

// Clone returns a copy that can be modified independently.
func (o *Options) Clone() *Options {
	c := *o
	return &c
}
