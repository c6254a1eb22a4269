package template

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Warnings returned by substitution. The accompanying string result is
// always usable; callers log these and carry on.
var (
	ErrNoFields      = errors.New("template has no fields")
	ErrAmbiguousFill = errors.New("template has several fields, only the first is filled")
	ErrBindMismatch  = errors.New("argument names and values differ in length")
)

// Error is a positioned template diagnostic.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Position returns where the diagnostic applies.
func (e *Error) Position() Position { return e.Pos }
