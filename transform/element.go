// Package transform converts elements and documents between their compact
// and expanded forms.
//
// Expanded elements carry absolute IRIs in every identifier field and every
// inheritable document property. Compact elements omit properties equal to
// the document defaults and use the shortest identifier spelling the
// context allows. For any element e of a well-formed compact document:
//
//	CompactElement(ctx, ExpandElement(ctx, e)) == e
//
// up to equivalent identifier spellings.
package transform

import (
	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// ExpandElement returns the expanded form of e. Context defaults are added
// for properties e does not set; e's own values always win. Unresolved
// bare identifiers are reported as diagnostics and still expanded.
func ExpandElement(ctx *resolver.Context, e document.Element) (document.Element, resolver.Diagnostics) {
	out := e.Clone()
	for _, name := range ctx.DefaultNames() {
		if _, ok := out.Property(name); ok {
			continue
		}
		def, _ := ctx.Default(name)
		// A default that does not fit the element field is not inherited.
		_ = out.SetProperty(name, def)
	}

	var diags resolver.Diagnostics
	walkIdentifiers(&out, func(field, id string) string {
		iri, diag := ctx.Expand(id)
		if diag != nil {
			diag.Element = e.ID
			diag.Field = field
			diags = append(diags, *diag)
		}
		return iri
	})
	return out, diags
}

// CompactElement returns the compact form of e: properties structurally
// equal to their context default are removed, then every identifier field
// is compacted.
func CompactElement(ctx *resolver.Context, e document.Element) document.Element {
	out := e.Clone()
	for _, name := range ctx.DefaultNames() {
		v, ok := out.Property(name)
		if !ok {
			continue
		}
		def, _ := ctx.Default(name)
		if document.Equal(v, def) || document.Equal(v, expandedDefault(ctx, name, def)) {
			out.DeleteProperty(name)
		}
	}

	walkIdentifiers(&out, func(_, id string) string {
		return ctx.Compact(id)
	})
	return out
}

// expandedDefault returns the default value as it appears on an expanded
// element, so an inherited created.by list matches after expansion.
func expandedDefault(ctx *resolver.Context, name string, def any) any {
	if name != spdx.PropCreated {
		return def
	}
	return mapCreatedBy(def, func(_, id string) string {
		iri, _ := ctx.Expand(id)
		return iri
	})
}
