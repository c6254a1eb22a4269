package config

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return errors.WithHintf(errors.Newf("invalid output format %q", c.OutputFormat),
			"use one of: %s", strings.Join(OutputFormats, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Options == nil {
		return errors.New("options are not loaded")
	}
	return c.Options.Validate()
}

// ParseLevel parses a log level name. Empty means the default level.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		s = DefaultLogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.WithHint(errors.Newf("invalid log level %q", s), "use one of: debug, info, warn, error")
	}
	return level, nil
}
