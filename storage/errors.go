package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no export record exists for an identifier.
	ErrNotFound = errors.New("export record not found")

	// ErrNoIdentifier is returned when a record without identifier is stored.
	ErrNoIdentifier = errors.New("export record has no identifier")
)
