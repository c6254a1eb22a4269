package formatter

import "github.com/cockroachdb/errors"

// Fatal configuration errors. Each is marked with diag.ErrConfig where it
// is raised.
var (
	ErrNoBacking         = errors.New("formatter needs a template string or a function")
	ErrAmbiguousTemplate = errors.New("template has several fields but no declared argument order")
	ErrUnknownArg        = errors.New("declared argument has no matching template field")
	ErrArgsOnFunction    = errors.New("args can only be declared for template formatters")
	ErrNoContextParam    = errors.New("function takes no context parameter")
	ErrAlreadyMacroized  = errors.New("formatter already macro-ized")
	ErrInferenceDone     = errors.New("arguments already inferred")
)

// ErrArity is returned when a formatter is applied to the wrong number of
// values.
var ErrArity = errors.New("wrong number of arguments")
