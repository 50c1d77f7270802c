package resolver

import "errors"

// ErrMalformedContext is returned by Build when a document's context data
// cannot produce a usable Context. It aborts processing of that document.
var ErrMalformedContext = errors.New("malformed context")
