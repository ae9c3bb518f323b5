package isa

import "errors"

// Domain model errors.
var (
	// ErrEmptyTerm is returned when an ontology annotation is given an empty term.
	ErrEmptyTerm = errors.New("ontology annotation term is required")

	// ErrDuplicateStudy is used by callers that turn a rejected AddStudy into an error.
	ErrDuplicateStudy = errors.New("duplicate study identifier or file name")
)
