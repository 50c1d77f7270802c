package resolver

import (
	"fmt"
	"sort"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// Options configures Build.
type Options struct {
	// DefaultProperties is the allow-list of document properties that
	// elements inherit. nil selects spdx.DefaultProperties; an empty
	// non-nil slice disables inheritance.
	DefaultProperties []string
}

// DefaultOptions returns Options using the standard SPDX allow-list.
func DefaultOptions() Options {
	return Options{DefaultProperties: append([]string(nil), spdx.DefaultProperties...)}
}

func (o Options) defaultProperties() []string {
	if o.DefaultProperties == nil {
		return spdx.DefaultProperties
	}
	return o.DefaultProperties
}

// Build derives the Context of a document.
//
// Local identifiers are the element ids compacted against a provisional
// context holding only the namespace and prefixes. Imported identifiers are
// "namespace:name" for every name declared by a document reference. The
// document's IRI → prefix map is inverted into the prefix table.
func Build(doc *document.Document, opts Options) (*Context, error) {
	prefixes, err := invertNamespaceMap(doc.NamespaceMap)
	if err != nil {
		return nil, err
	}

	var imported []string
	for i, ref := range doc.References {
		if ref.Namespace == "" {
			return nil, fmt.Errorf("%w: %s[%d]: missing namespace", ErrMalformedContext, document.KeyDocumentRefs, i)
		}
		if ref.Elements == nil {
			return nil, fmt.Errorf("%w: %s[%d] (%s): missing element list", ErrMalformedContext, document.KeyDocumentRefs, i, ref.Namespace)
		}
		for _, name := range ref.Elements {
			imported = append(imported, ref.Namespace+":"+name)
		}
	}

	provisional := NewContext(doc.Namespace, prefixes)
	local := make([]string, 0, len(doc.Elements))
	for _, e := range doc.Elements {
		local = append(local, provisional.Compact(e.ID))
	}

	names := opts.defaultProperties()
	defaults := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := doc.Property(name); ok {
			defaults[name] = v
		}
	}

	return NewContext(doc.Namespace, prefixes,
		WithDefaults(defaults, names...),
		WithLocalIDs(local...),
		WithImportedIDs(imported...),
	), nil
}

func invertNamespaceMap(nm map[string]string) (map[string]string, error) {
	iris := make([]string, 0, len(nm))
	for iri := range nm {
		iris = append(iris, iri)
	}
	sort.Strings(iris)

	prefixes := make(map[string]string, len(nm))
	for _, iri := range iris {
		p := nm[iri]
		if p == "" {
			return nil, fmt.Errorf("%w: %s: empty prefix for %s", ErrMalformedContext, document.KeyNamespaceMap, iri)
		}
		if prev, dup := prefixes[p]; dup {
			return nil, fmt.Errorf("%w: %s: prefix %q maps to both %s and %s", ErrMalformedContext, document.KeyNamespaceMap, p, prev, iri)
		}
		prefixes[p] = iri
	}
	return prefixes, nil
}
