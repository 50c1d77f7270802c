// Package resolver converts identifiers between their compact and expanded
// forms and derives the per-document Context those conversions need.
//
// An identifier is one of:
//   - a bare local name ("e1"), relative to the context namespace;
//   - a compact form ("spdx:e2") whose prefix is a key of the prefix table;
//   - an absolute IRI ("https://example.org/e3").
//
// The shape is decided by the presence of a URI scheme. Resolution never
// fails: problems are returned as Diagnostic values next to the result.
package resolver

import (
	"sort"

	"github.com/c360studio/spdxld/document"
)

// Context is the read-only resolution state of one document. It is safe
// for concurrent use once built.
type Context struct {
	namespace string
	prefixes  map[string]string
	// order lists prefixes by descending namespace length, then by name,
	// so Compact picks the most specific namespace.
	order []string

	defaults     map[string]any
	defaultNames []string

	localIDs    map[string]struct{}
	importedIDs map[string]struct{}
}

// ContextOption configures a Context built with NewContext.
type ContextOption func(*Context)

// WithDefaults sets the default properties. names fixes their order; keys
// of values not listed in names are appended sorted.
func WithDefaults(values map[string]any, names ...string) ContextOption {
	return func(c *Context) {
		c.defaults = make(map[string]any, len(values))
		seen := make(map[string]bool, len(values))
		c.defaultNames = nil
		for _, n := range names {
			if v, ok := values[n]; ok && !seen[n] {
				c.defaults[n] = document.CloneValue(v)
				c.defaultNames = append(c.defaultNames, n)
				seen[n] = true
			}
		}
		var rest []string
		for n := range values {
			if !seen[n] {
				rest = append(rest, n)
			}
		}
		sort.Strings(rest)
		for _, n := range rest {
			c.defaults[n] = document.CloneValue(values[n])
			c.defaultNames = append(c.defaultNames, n)
		}
	}
}

// WithLocalIDs adds identifiers defined inside the document.
func WithLocalIDs(ids ...string) ContextOption {
	return func(c *Context) {
		for _, id := range ids {
			c.localIDs[id] = struct{}{}
		}
	}
}

// WithImportedIDs adds identifiers supplied by attached documents.
func WithImportedIDs(ids ...string) ContextOption {
	return func(c *Context) {
		for _, id := range ids {
			c.importedIDs[id] = struct{}{}
		}
	}
}

// NewContext creates a Context from a namespace and a prefix → namespace
// IRI table. The table is copied.
func NewContext(namespace string, prefixes map[string]string, opts ...ContextOption) *Context {
	c := &Context{
		namespace:   namespace,
		prefixes:    make(map[string]string, len(prefixes)),
		defaults:    map[string]any{},
		localIDs:    map[string]struct{}{},
		importedIDs: map[string]struct{}{},
	}
	for p, iri := range prefixes {
		c.prefixes[p] = iri
		c.order = append(c.order, p)
	}
	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.prefixes[c.order[i]], c.prefixes[c.order[j]]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return c.order[i] < c.order[j]
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the base IRI of bare local names.
func (c *Context) Namespace() string { return c.namespace }

// Prefixes returns a copy of the prefix → namespace IRI table.
func (c *Context) Prefixes() map[string]string {
	out := make(map[string]string, len(c.prefixes))
	for k, v := range c.prefixes {
		out[k] = v
	}
	return out
}

// Prefix returns the namespace IRI mapped to prefix.
func (c *Context) Prefix(prefix string) (string, bool) {
	iri, ok := c.prefixes[prefix]
	return iri, ok
}

// Default returns a copy of the default value of a property.
func (c *Context) Default(name string) (any, bool) {
	v, ok := c.defaults[name]
	if !ok {
		return nil, false
	}
	return document.CloneValue(v), true
}

// DefaultNames returns the names of the default properties in allow-list
// order.
func (c *Context) DefaultNames() []string {
	out := make([]string, len(c.defaultNames))
	copy(out, c.defaultNames)
	return out
}

// Defaults returns a copy of the default properties.
func (c *Context) Defaults() map[string]any {
	out := make(map[string]any, len(c.defaults))
	for k, v := range c.defaults {
		out[k] = document.CloneValue(v)
	}
	return out
}

// IsLocal reports whether id is defined by an element of the document.
func (c *Context) IsLocal(id string) bool {
	_, ok := c.localIDs[id]
	return ok
}

// IsImported reports whether id is declared by an attached document.
func (c *Context) IsImported(id string) bool {
	_, ok := c.importedIDs[id]
	return ok
}

// LocalIDs returns the local identifiers, sorted.
func (c *Context) LocalIDs() []string { return sortedSet(c.localIDs) }

// ImportedIDs returns the imported identifiers, sorted.
func (c *Context) ImportedIDs() []string { return sortedSet(c.importedIDs) }

func sortedSet(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
