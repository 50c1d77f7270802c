package resolver

import "strings"

// Resolution classifies where an identifier is defined.
type Resolution int

const (
	// ResolutionUndefined is a bare local name no element defines.
	ResolutionUndefined Resolution = iota
	// ResolutionLocal is defined by an element of the document.
	ResolutionLocal
	// ResolutionImported is declared by an attached document.
	ResolutionImported
	// ResolutionExternal is an absolute or prefixed reference outside the
	// document and its declared imports.
	ResolutionExternal
)

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case ResolutionLocal:
		return "local"
	case ResolutionImported:
		return "imported"
	case ResolutionExternal:
		return "external"
	default:
		return "undefined"
	}
}

// SplitScheme splits id at the end of a leading URI scheme
// (ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ) ":"). ok is false when id has
// no scheme and is therefore a bare local name.
func SplitScheme(id string) (scheme, rest string, ok bool) {
	i := strings.IndexByte(id, ':')
	if i <= 0 {
		return "", id, false
	}
	for j := 0; j < i; j++ {
		ch := id[j]
		switch {
		case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z':
		case j > 0 && ('0' <= ch && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		default:
			return "", id, false
		}
	}
	return id[:i], id[i+1:], true
}

// Expand converts an identifier to an absolute IRI.
//
// A known prefix is replaced by its namespace IRI; an unknown scheme means
// the identifier is already an absolute reference and it is returned
// unchanged. A bare name is qualified with the context namespace; if no
// element defines it an unresolved-reference diagnostic is returned along
// with the qualified IRI.
func (c *Context) Expand(id string) (string, *Diagnostic) {
	if scheme, rest, ok := SplitScheme(id); ok {
		if iri, found := c.prefixes[scheme]; found {
			return iri + rest, nil
		}
		return id, nil
	}

	var diag *Diagnostic
	if _, ok := c.localIDs[id]; !ok {
		diag = &Diagnostic{
			Code:       CodeUnresolvedReference,
			Identifier: id,
			Message:    "undefined element",
		}
	}
	return c.namespace + id, diag
}

// Compact converts an IRI to its shortest form in this context: a bare
// name under the context namespace, else prefix:local under the most
// specific matching prefix, else the IRI unchanged.
func (c *Context) Compact(iri string) string {
	if c.namespace != "" && strings.HasPrefix(iri, c.namespace) {
		return iri[len(c.namespace):]
	}
	for _, p := range c.order {
		ns := c.prefixes[p]
		if ns != "" && strings.HasPrefix(iri, ns) {
			return p + ":" + iri[len(ns):]
		}
	}
	return iri
}

// Classify reports where an identifier, in any of its forms, is defined.
func (c *Context) Classify(id string) Resolution {
	if c.IsImported(id) {
		return ResolutionImported
	}
	iri, _ := c.Expand(id)
	short := c.Compact(iri)
	switch {
	case c.IsLocal(short):
		return ResolutionLocal
	case c.IsImported(short):
		return ResolutionImported
	}
	if _, _, ok := SplitScheme(short); ok {
		return ResolutionExternal
	}
	return ResolutionUndefined
}
