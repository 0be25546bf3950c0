package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned by storage modules when a key is absent. badger.ErrKeyNotFound never
	// leaves the storage/badger packages.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
)
