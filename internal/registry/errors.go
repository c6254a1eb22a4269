package registry

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned when a formatter reference does not resolve.
var ErrNotFound = errors.New("formatter not found")

// RegistryError represents an error registering a client.
type RegistryError struct {
	Client  string
	Source  string
	Message string
}

func (e *RegistryError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("client %q (%s): %s", e.Client, e.Source, e.Message)
	}
	return fmt.Sprintf("client %q: %s", e.Client, e.Message)
}
