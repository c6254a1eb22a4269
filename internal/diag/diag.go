// Package diag holds the error classes shared by the registration pipeline.
//
// Fatal configuration errors abort the registration pass that produced them.
// They are built on github.com/cockroachdb/errors so that callers can attach
// hints listing the available fields, keys or options.
package diag

import "github.com/cockroachdb/errors"

// ErrConfig marks fatal configuration errors.
var ErrConfig = errors.New("configuration error")

// Configf returns a new fatal configuration error.
func Configf(format string, args ...any) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrConfig)
}

// Config marks err as a fatal configuration error.
func Config(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrConfig)
}

// IsConfig reports whether err is a fatal configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// Hints returns the user-facing hints attached to err.
func Hints(err error) []string {
	return errors.GetAllHints(err)
}
