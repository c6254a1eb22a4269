package options

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNoOptionProvider is returned when client options are requested from a
// client that declares no option schema.
var ErrNoOptionProvider = errors.New("client declares no options")

// UnknownOptionError reports a key the schema does not declare.
type UnknownOptionError struct {
	Key string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q", e.Key)
}

// InvalidValueError reports a value that does not fit its declared type.
type InvalidValueError struct {
	Key   string
	Value string
	Want  string
	Msg   string
}

func (e *InvalidValueError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("option %q: %s", e.Key, e.Msg)
	}
	return fmt.Sprintf("option %q: invalid %s value %q", e.Key, e.Want, e.Value)
}
