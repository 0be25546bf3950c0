package irrecoverable

import (
	"errors"
	"fmt"
)

// exception marks an error that indicates a broken internal invariant. Exceptions are never
// expected during normal operation and must not be handled as benign errors by callers.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

// NewException wraps err as an exception.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf builds an exception from a format string, wrapping any %w argument.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns true if err, or any error it wraps, is an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
