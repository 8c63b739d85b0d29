package documents

import "errors"

var (
	// ErrNotFound is returned when a document id is unknown.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for unsupported or empty uploads.
	ErrInvalidInput = errors.New("invalid input")
)
