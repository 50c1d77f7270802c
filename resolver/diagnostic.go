package resolver

import (
	"fmt"
	"strings"
)

// Code classifies a diagnostic.
type Code string

const (
	// CodeUnresolvedReference marks a bare local identifier that no element
	// of the document defines.
	CodeUnresolvedReference Code = "unresolved-reference"
)

// Diagnostic is a non-fatal finding produced while resolving identifiers.
type Diagnostic struct {
	Code       Code
	Identifier string
	// Element is the id of the element being transformed, when known.
	Element string
	// Field is the path of the identifier inside the element, e.g.
	// "relationship.to[1]".
	Field   string
	Message string
}

// Error formats the diagnostic for display.
func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", d.Code, d.Message, d.Identifier))
	if d.Element != "" {
		b.WriteString(fmt.Sprintf(" (element %s", d.Element))
		if d.Field != "" {
			b.WriteString(fmt.Sprintf(", field %s", d.Field))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Diagnostics is a list of diagnostics usable as an error.
type Diagnostics []Diagnostic

// Error returns a compact summary of the diagnostics.
func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no diagnostics"
	case 1:
		return ds[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", ds[0].Error(), len(ds)-1)
	}
}

// Err returns ds as an error, or nil when it is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Count returns the number of diagnostics with the given code.
func (ds Diagnostics) Count(code Code) int {
	n := 0
	for _, d := range ds {
		if d.Code == code {
			n++
		}
	}
	return n
}
