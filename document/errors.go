package document

import "errors"

// Decoding errors.
var (
	// ErrInvalidElement is returned when an element lacks an id or does not
	// carry exactly one type variant.
	ErrInvalidElement = errors.New("invalid element")

	// ErrInvalidDocument is returned when a document's top-level structure
	// cannot be decoded.
	ErrInvalidDocument = errors.New("invalid document")
)
