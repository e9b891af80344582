package eval

import (
	"errors"
	"fmt"
)

// ErrMaxDepth is the cause of a RuntimeError raised when nested calls exceed
// MaxCallDepth.
var ErrMaxDepth = errors.New("maximum call depth exceeded")

// CompileError reports a function that cannot be turned into a Callable:
// unknown names, arity mismatches and malformed operator prototypes.
type CompileError struct {
	Func string
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Func, e.Msg)
}

func compileErrorf(fn, format string, args ...any) error {
	return &CompileError{Func: fn, Msg: fmt.Sprintf(format, args...)}
}

// RuntimeError reports a failure while a Callable runs. Err holds the cause
// when there is one (context cancellation, ErrMaxDepth).
type RuntimeError struct {
	Func string
	Msg  string
	Err  error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("in %s: %s: %v", e.Func, e.Msg, e.Err)
	}
	return fmt.Sprintf("in %s: %s", e.Func, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
