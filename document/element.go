// Package document defines the linked-data document model: elements with a
// keyed type variant, documents that group elements under shared default
// properties, and their JSON and YAML encodings.
//
// Identifier-valued fields are plain strings. Whether a string is a bare
// local name, a prefix:local compact form or an absolute IRI is decided by
// the resolver package against a document context.
package document

import (
	"fmt"
	"sort"

	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// Element is one identified record of a document.
type Element struct {
	ID   string
	Type Variant

	Name        string
	Summary     string
	Description string
	Comment     string

	// Properties holds every other top-level property, including the
	// document-inheritable ones (specVersion, created, ...).
	Properties map[string]any
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	if e.Type != nil {
		out.Type = e.Type.Clone()
	}
	out.Properties = cloneProperties(e.Properties)
	return out
}

// Property returns the value of a named property. The scalar properties
// are reported present only when non-empty. id and type are not properties.
func (e Element) Property(name string) (any, bool) {
	if p := e.scalar(name); p != nil {
		return *p, *p != ""
	}
	v, ok := e.Properties[name]
	return v, ok
}

// SetProperty sets a named property. Scalar properties require a string.
func (e *Element) SetProperty(name string, value any) error {
	if p := e.scalar(name); p != nil {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("property %s: expected string, got %T", name, value)
		}
		*p = s
		return nil
	}
	if name == spdx.PropID || name == spdx.PropType {
		return fmt.Errorf("property %s cannot be set", name)
	}
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[name] = value
	return nil
}

// DeleteProperty removes a named property.
func (e *Element) DeleteProperty(name string) {
	if p := e.scalar(name); p != nil {
		*p = ""
		return
	}
	delete(e.Properties, name)
	if len(e.Properties) == 0 {
		e.Properties = nil
	}
}

// PropertyNames returns the names of all present properties, sorted.
func (e Element) PropertyNames() []string {
	var names []string
	for _, n := range []string{spdx.PropName, spdx.PropSummary, spdx.PropDescription, spdx.PropComment} {
		if _, ok := e.Property(n); ok {
			names = append(names, n)
		}
	}
	for k := range e.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *Element) scalar(name string) *string {
	switch name {
	case spdx.PropName:
		return &e.Name
	case spdx.PropSummary:
		return &e.Summary
	case spdx.PropDescription:
		return &e.Description
	case spdx.PropComment:
		return &e.Comment
	}
	return nil
}

// ElementFromMap decodes an element from a generic decoded object.
func ElementFromMap(m map[string]any) (Element, error) {
	props := cloneProperties(m)
	if props == nil {
		props = map[string]any{}
	}

	var e Element
	id, err := takeString(props, spdx.PropID)
	if err != nil {
		return Element{}, err
	}
	if id == "" {
		return Element{}, fmt.Errorf("%w: missing id", ErrInvalidElement)
	}
	e.ID = id

	rawType, ok := props[spdx.PropType]
	if !ok {
		return Element{}, fmt.Errorf("%w: %s: missing type", ErrInvalidElement, id)
	}
	delete(props, spdx.PropType)
	typeMap, ok := rawType.(map[string]any)
	if !ok {
		return Element{}, fmt.Errorf("%w: %s: type is %T, not an object", ErrInvalidElement, id, rawType)
	}
	if e.Type, err = variantFromMap(typeMap); err != nil {
		return Element{}, fmt.Errorf("%s: %w", id, err)
	}

	for _, n := range []string{spdx.PropName, spdx.PropSummary, spdx.PropDescription, spdx.PropComment} {
		s, err := takeString(props, n)
		if err != nil {
			return Element{}, fmt.Errorf("%s: %w", id, err)
		}
		*e.scalar(n) = s
	}

	e.Properties = nonEmpty(props)
	return e, nil
}

// fields returns the element in encoding order: id, type, the scalar
// properties, then the remaining properties sorted by name.
func (e Element) fields() orderedMap {
	m := orderedMap{{spdx.PropID, e.ID}}
	if e.Type != nil {
		m = append(m, field{spdx.PropType, orderedMap{{e.Type.Key(), e.Type.fields()}}})
	}
	for _, n := range []string{spdx.PropName, spdx.PropSummary, spdx.PropDescription, spdx.PropComment} {
		if v, ok := e.Property(n); ok {
			m = append(m, field{n, v})
		}
	}
	return appendProperties(m, e.Properties)
}
