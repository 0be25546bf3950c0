package config

import (
	"errors"
	"fmt"
)

// InvalidConfigError indicates that the loaded configuration has an invalid value for a key.
type InvalidConfigError struct {
	key string
	err error
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration value for %s: %s", e.key, e.err)
}

func (e InvalidConfigError) Unwrap() error {
	return e.err
}

// Key returns the configuration key holding the invalid value.
func (e InvalidConfigError) Key() string {
	return e.key
}

// NewInvalidConfigErr returns a new InvalidConfigError.
func NewInvalidConfigErr(key string, err error) InvalidConfigError {
	return InvalidConfigError{key: key, err: err}
}

// IsInvalidConfigError returns true if err is, or wraps, an InvalidConfigError.
func IsInvalidConfigError(err error) bool {
	var e InvalidConfigError
	return errors.As(err, &e)
}
