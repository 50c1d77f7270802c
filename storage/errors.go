package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when an element is not stored.
	ErrNotFound = errors.New("element not found")
)
