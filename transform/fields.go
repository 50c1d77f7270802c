package transform

import (
	"fmt"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// idFunc rewrites one identifier found at a field path.
type idFunc func(field, id string) string

// walkIdentifiers applies fn to every identifier-bearing field of e in
// place: id, created.by entries, and the identifier fields of the single
// type variant. Absent fields are skipped.
func walkIdentifiers(e *document.Element, fn idFunc) {
	e.ID = fn(spdx.PropID, e.ID)

	if v, ok := e.Properties[spdx.PropCreated]; ok {
		e.Properties[spdx.PropCreated] = mapCreatedBy(v, fn)
	}

	switch t := e.Type.(type) {
	case *document.Collection:
		for _, l := range t.Lists() {
			ids := *l.IDs
			for i, id := range ids {
				ids[i] = fn(fmt.Sprintf("%s.%s[%d]", t.Kind, l.Name, i), id)
			}
		}
	case *document.Annotation:
		if t.Subject != "" {
			t.Subject = fn(spdx.TypeAnnotation+"."+spdx.PropSubject, t.Subject)
		}
	case *document.Relationship:
		if t.From != "" {
			t.From = fn(spdx.TypeRelationship+"."+spdx.PropFrom, t.From)
		}
		for i, id := range t.To {
			t.To[i] = fn(fmt.Sprintf("%s.%s[%d]", spdx.TypeRelationship, spdx.PropTo, i), id)
		}
	case *document.Plain:
	}
}

// mapCreatedBy returns a copy of a created value with fn applied to each
// string entry of its "by" list. Values of any other shape are returned
// unchanged.
func mapCreatedBy(v any, fn idFunc) any {
	created, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := document.CloneValue(created).(map[string]any)
	field := spdx.PropCreated + "." + spdx.PropCreatedBy

	switch by := out[spdx.PropCreatedBy].(type) {
	case []any:
		for i, entry := range by {
			if s, ok := entry.(string); ok {
				by[i] = fn(fmt.Sprintf("%s[%d]", field, i), s)
			}
		}
	case []string:
		for i, s := range by {
			by[i] = fn(fmt.Sprintf("%s[%d]", field, i), s)
		}
	case string:
		out[spdx.PropCreatedBy] = fn(field, by)
	}
	return out
}

// Reference is one identifier occurrence inside an element.
type Reference struct {
	Element string
	Field   string
	ID      string
}

// References lists every identifier occurrence of e in walk order.
func References(e document.Element) []Reference {
	var refs []Reference
	c := e.Clone()
	walkIdentifiers(&c, func(field, id string) string {
		refs = append(refs, Reference{Element: e.ID, Field: field, ID: id})
		return id
	})
	return refs
}
