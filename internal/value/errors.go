package value

import (
	"errors"
	"fmt"
)

// ErrorKind names a runtime exception category of the language. Folded
// operations that provably raise carry the same kind and message the runtime
// operator would produce, so optimized and unoptimized programs fail
// identically.
type ErrorKind string

const (
	// AnyError is the unbounded category: "this point may raise
	// something". Registered conservatively before every operator
	// application that has not been folded away.
	AnyError ErrorKind = "Exception"

	TypeError         ErrorKind = "TypeError"
	ValueError        ErrorKind = "ValueError"
	ZeroDivisionError ErrorKind = "ZeroDivisionError"
	OverflowError     ErrorKind = "OverflowError"
	MemoryError       ErrorKind = "MemoryError"
)

// RuntimeError is an exception of the compiled language, produced by a
// simulator. It is a provable runtime outcome, never a compiler failure.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewRuntimeError creates a RuntimeError with a formatted message.
func NewRuntimeError(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewTypeError creates a TypeError.
func NewTypeError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(TypeError, format, args...)
}

// NewValueError creates a ValueError.
func NewValueError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(ValueError, format, args...)
}

// NewZeroDivisionError creates a ZeroDivisionError.
func NewZeroDivisionError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(ZeroDivisionError, format, args...)
}

// AsRuntimeError reports whether err is (or wraps) a RuntimeError of the
// language.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
