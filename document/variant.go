package document

import (
	"fmt"
	"sort"

	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// Variant is the single keyed payload held by an element's type field.
// Exactly one of Plain, Relationship, Annotation or Collection.
type Variant interface {
	// Key returns the variant key, e.g. "relationship" or "sbom".
	Key() string

	// Clone returns a deep copy of the variant.
	Clone() Variant

	fields() orderedMap
}

// Plain is a variant without identifier-bearing payload properties.
type Plain struct {
	Kind       string
	Properties map[string]any
}

// Key implements Variant.
func (p *Plain) Key() string { return p.Kind }

// Clone implements Variant.
func (p *Plain) Clone() Variant {
	return &Plain{Kind: p.Kind, Properties: cloneProperties(p.Properties)}
}

func (p *Plain) fields() orderedMap {
	return appendProperties(nil, p.Properties)
}

// Relationship links one element to an ordered list of others.
type Relationship struct {
	From       string
	To         []string
	Properties map[string]any
}

// Key implements Variant.
func (r *Relationship) Key() string { return spdx.TypeRelationship }

// Clone implements Variant.
func (r *Relationship) Clone() Variant {
	return &Relationship{From: r.From, To: cloneStrings(r.To), Properties: cloneProperties(r.Properties)}
}

func (r *Relationship) fields() orderedMap {
	var m orderedMap
	if r.From != "" {
		m = append(m, field{spdx.PropFrom, r.From})
	}
	if r.To != nil {
		m = append(m, field{spdx.PropTo, r.To})
	}
	return appendProperties(m, r.Properties)
}

// Annotation attaches information to a subject element.
type Annotation struct {
	Subject    string
	Properties map[string]any
}

// Key implements Variant.
func (a *Annotation) Key() string { return spdx.TypeAnnotation }

// Clone implements Variant.
func (a *Annotation) Clone() Variant {
	return &Annotation{Subject: a.Subject, Properties: cloneProperties(a.Properties)}
}

func (a *Annotation) fields() orderedMap {
	var m orderedMap
	if a.Subject != "" {
		m = append(m, field{spdx.PropSubject, a.Subject})
	}
	return appendProperties(m, a.Properties)
}

// Collection is a variant carrying identifier lists. A nil list is absent;
// an empty non-nil list is present and empty.
type Collection struct {
	Kind         string
	Elements     []string
	RootElements []string
	Originator   []string
	Members      []string
	Properties   map[string]any
}

// Key implements Variant.
func (c *Collection) Key() string { return c.Kind }

// Clone implements Variant.
func (c *Collection) Clone() Variant {
	return &Collection{
		Kind:         c.Kind,
		Elements:     cloneStrings(c.Elements),
		RootElements: cloneStrings(c.RootElements),
		Originator:   cloneStrings(c.Originator),
		Members:      cloneStrings(c.Members),
		Properties:   cloneProperties(c.Properties),
	}
}

// Lists returns pointers to the identifier lists keyed by property name,
// in spdx.ListProperties order.
func (c *Collection) Lists() []NamedList {
	return []NamedList{
		{spdx.PropElements, &c.Elements},
		{spdx.PropRootElements, &c.RootElements},
		{spdx.PropOriginator, &c.Originator},
		{spdx.PropMembers, &c.Members},
	}
}

// List returns the identifier list stored under a property name.
func (c *Collection) List(name string) []string {
	for _, l := range c.Lists() {
		if l.Name == name {
			return *l.IDs
		}
	}
	return nil
}

func (c *Collection) fields() orderedMap {
	var m orderedMap
	for _, l := range c.Lists() {
		if *l.IDs != nil {
			m = append(m, field{l.Name, *l.IDs})
		}
	}
	return appendProperties(m, c.Properties)
}

// NamedList is a collection identifier list with its property name.
type NamedList struct {
	Name string
	IDs  *[]string
}

// variantFromMap decodes the one-key type object of an element.
func variantFromMap(m map[string]any) (Variant, error) {
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: type must hold exactly one variant, got %v", ErrInvalidElement, keys)
	}

	var key string
	var raw any
	for k, v := range m {
		key, raw = k, v
	}

	payload := map[string]any{}
	if raw != nil {
		p, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: variant %q payload is %T, not an object", ErrInvalidElement, key, raw)
		}
		payload = cloneProperties(p)
	}

	switch key {
	case spdx.TypeRelationship:
		r := &Relationship{}
		var err error
		if r.From, err = takeString(payload, spdx.PropFrom); err != nil {
			return nil, err
		}
		if r.To, err = takeStrings(payload, spdx.PropTo); err != nil {
			return nil, err
		}
		r.Properties = nonEmpty(payload)
		return r, nil

	case spdx.TypeAnnotation:
		a := &Annotation{}
		var err error
		if a.Subject, err = takeString(payload, spdx.PropSubject); err != nil {
			return nil, err
		}
		a.Properties = nonEmpty(payload)
		return a, nil
	}

	if !hasAny(payload, spdx.ListProperties) {
		return &Plain{Kind: key, Properties: nonEmpty(payload)}, nil
	}

	c := &Collection{Kind: key}
	for _, l := range c.Lists() {
		ids, err := takeStrings(payload, l.Name)
		if err != nil {
			return nil, err
		}
		*l.IDs = ids
	}
	c.Properties = nonEmpty(payload)
	return c, nil
}

func hasAny(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func nonEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
