package starlark

import (
	"fmt"

	"github.com/leapstack-labs/texfmt/internal/formatter"
	"go.starlark.net/starlark"
)

// Function adapts a Starlark function into a formatter backing. Its
// positional parameter names are read from the function itself.
type Function struct {
	fn   *starlark.Function
	pool *ThreadPool
}

var _ formatter.Func = (*Function)(nil)
var _ formatter.Documented = (*Function)(nil)

// NewFunction wraps fn. Calls take threads from pool.
func NewFunction(fn *starlark.Function, pool *ThreadPool) *Function {
	return &Function{fn: fn, pool: pool}
}

func (f *Function) Name() string { return f.fn.Name() }
func (f *Function) Doc() string  { return f.fn.Doc() }

// Params returns the names of the positional parameters, excluding
// keyword-only parameters, *args and **kwargs.
func (f *Function) Params() []string {
	n := f.fn.NumParams() - f.fn.NumKwonlyParams()
	if f.fn.HasVarargs() {
		n--
	}
	if f.fn.HasKwargs() {
		n--
	}
	params := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, _ := f.fn.Param(i)
		params = append(params, name)
	}
	return params
}

// Position returns "file:line" of the definition.
func (f *Function) Position() string {
	pos := f.fn.Position()
	return fmt.Sprintf("%s:%d", pos.Filename(), pos.Line)
}

// Call converts args to Starlark values and calls the function with the
// context value first. It must return a string or None.
func (f *Function) Call(ctx formatter.Context, args []any) (string, error) {
	tuple := make(starlark.Tuple, 0, len(args)+1)
	tuple = append(tuple, NewContextValue(ctx))
	for i, a := range args {
		v, err := GoToStarlark(a)
		if err != nil {
			return "", &EvalError{Func: f.fn.Name(), Position: f.Position(),
				Message: fmt.Sprintf("argument %d: %v", i+1, err)}
		}
		tuple = append(tuple, v)
	}

	thread := f.pool.Get("call:" + f.fn.Name())
	defer f.pool.Put(thread)

	result, err := starlark.Call(thread, f.fn, tuple, nil)
	if err != nil {
		return "", &EvalError{Func: f.fn.Name(), Position: f.Position(), Message: err.Error(), Cause: err}
	}
	switch r := result.(type) {
	case starlark.String:
		return string(r), nil
	case starlark.NoneType:
		return "", nil
	default:
		return "", &EvalError{Func: f.fn.Name(), Position: f.Position(),
			Message: "formatter must return a string, got " + result.Type()}
	}
}

// EvalError represents an error calling a Starlark formatter.
type EvalError struct {
	Func     string
	Position string
	Message  string
	Cause    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: in %s: %s", e.Position, e.Func, e.Message)
}

func (e *EvalError) Unwrap() error { return e.Cause }
