// Package export renders expanded elements as RDF (Turtle, N-Triples,
// JSON-LD) and as a Graphviz DOT graph.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// ErrUnsupportedFormat is returned by Export for formats it cannot render.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"

	// FormatDOT produces a Graphviz digraph (.dot).
	FormatDOT Format = "dot"

	// FormatJSON and FormatYAML are element list encodings handled by the
	// codec package. They are listed in FormatRegistry for file naming.
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// IRI marks a triple object as a resource reference rather than a literal.
type IRI string

// Triple represents a semantic triple for export.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
}

// RDFExporter exports expanded elements using the prefix table of the
// context they were expanded against.
type RDFExporter struct {
	ctx      *resolver.Context
	elements []document.Element
	prefixes map[string]string
}

// NewRDFExporter creates an exporter for elements expanded against ctx.
func NewRDFExporter(ctx *resolver.Context) *RDFExporter {
	prefixes := defaultPrefixes()
	for prefix, iri := range ctx.Prefixes() {
		prefixes[prefix] = iri
	}
	return &RDFExporter{
		ctx:      ctx,
		elements: make([]document.Element, 0),
		prefixes: prefixes,
	}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":       spdx.RDFNS,
		"rdfs":      spdx.RDFSNS,
		"xsd":       spdx.XSDNS,
		spdx.Prefix: spdx.Namespace,
	}
}

// AddElements adds expanded elements to be exported.
func (e *RDFExporter) AddElements(elements ...document.Element) {
	e.elements = append(e.elements, elements...)
}

// Triples returns the triples of every added element in input order.
func (e *RDFExporter) Triples() []Triple {
	var out []Triple
	for _, el := range e.elements {
		out = append(out, ElementTriples(el)...)
	}
	return out
}

// Export serializes all elements to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD(), nil
	case FormatDOT:
		return RenderDOT(e.ctx, e.elements), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter()
	for prefix, iri := range e.prefixes {
		w.SetPrefix(prefix, iri)
	}
	w.WritePrefixes()

	for _, el := range e.elements {
		triples := ElementTriples(el)
		w.WriteSubject(el.ID)
		for i, t := range triples {
			last := i == len(triples)-1
			if t.Predicate == spdx.RDFType {
				w.WriteType(string(t.Object.(IRI)), last)
				continue
			}
			w.WritePredicate(t.Predicate, t.Object, last)
		}
		w.WriteBlank()
	}
	return w.String()
}

func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()
	for _, t := range e.Triples() {
		if t.Predicate == spdx.RDFType {
			w.WriteTypeTriple(t.Subject, string(t.Object.(IRI)))
			continue
		}
		w.WriteTriple(t.Subject, t.Predicate, t.Object)
	}
	return w.String()
}

func (e *RDFExporter) toJSONLD() string {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)
	for _, el := range e.elements {
		var types []string
		props := make(map[string]any)
		for _, t := range ElementTriples(el) {
			if t.Predicate == spdx.RDFType {
				types = append(types, string(t.Object.(IRI)))
				continue
			}
			obj := formatObjectJSONLD(t.Object)
			switch prev := props[t.Predicate].(type) {
			case nil:
				props[t.Predicate] = obj
			case []any:
				props[t.Predicate] = append(prev, obj)
			default:
				props[t.Predicate] = []any{prev, obj}
			}
		}
		w.AddNode(el.ID, types, props)
	}
	return w.String()
}

// ElementTriples returns the triples describing one expanded element: its
// class, scalar properties, identifier references as IRIs and the
// remaining properties as literals. Nested maps are flattened into
// camel-cased predicates (created.when becomes createdWhen).
func ElementTriples(el document.Element) []Triple {
	b := tripleBuilder{subject: el.ID}

	key := ""
	if el.Type != nil {
		key = el.Type.Key()
	}
	b.add(spdx.RDFType, IRI(spdx.ClassIRI(key)))

	for _, s := range []struct{ name, value string }{
		{spdx.PropName, el.Name},
		{spdx.PropSummary, el.Summary},
		{spdx.PropDescription, el.Description},
		{spdx.PropComment, el.Comment},
	} {
		if s.value != "" {
			b.add(spdx.PredicateIRI(s.name), s.value)
		}
	}

	switch v := el.Type.(type) {
	case *document.Relationship:
		if v.From != "" {
			b.add(spdx.PredicateIRI(spdx.PropFrom), IRI(v.From))
		}
		b.iris(spdx.PropTo, v.To)
		b.properties(v.Properties)
	case *document.Annotation:
		if v.Subject != "" {
			b.add(spdx.PredicateIRI(spdx.PropSubject), IRI(v.Subject))
		}
		b.properties(v.Properties)
	case *document.Collection:
		for _, l := range v.Lists() {
			b.iris(l.Name, *l.IDs)
		}
		b.properties(v.Properties)
	case *document.Plain:
		b.properties(v.Properties)
	}

	b.properties(el.Properties)
	return b.triples
}

type tripleBuilder struct {
	subject string
	triples []Triple
}

func (b *tripleBuilder) add(predicate string, object any) {
	b.triples = append(b.triples, Triple{Subject: b.subject, Predicate: predicate, Object: object})
}

func (b *tripleBuilder) iris(name string, ids []string) {
	for _, id := range ids {
		b.add(spdx.PredicateIRI(name), IRI(id))
	}
}

func (b *tripleBuilder) properties(props map[string]any) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.value(name, props[name])
	}
}

func (b *tripleBuilder) value(name string, v any) {
	switch x := v.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := name + upperFirst(k)
			if name == spdx.PropCreated && k == spdx.PropCreatedBy {
				b.createdBy(child, x[k])
				continue
			}
			b.value(child, x[k])
		}
	case []any:
		for _, item := range x {
			b.value(name, item)
		}
	case []string:
		for _, item := range x {
			b.add(spdx.PredicateIRI(name), item)
		}
	default:
		b.add(spdx.PredicateIRI(name), x)
	}
}

func (b *tripleBuilder) createdBy(name string, v any) {
	if s, ok := v.(string); ok {
		b.add(spdx.PredicateIRI(name), IRI(s))
		return
	}
	ids, err := document.StringList(v)
	if err != nil {
		b.value(name, v)
		return
	}
	b.iris(name, ids)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatObject formats an object value for Turtle output.
func formatObject(obj any) string {
	return formatLiteral(obj, "xsd:")
}

// formatObjectNTriples formats an object value for N-Triples output.
func formatObjectNTriples(obj any) string {
	return formatLiteral(obj, "<"+spdx.XSDNS)
}

func formatLiteral(obj any, xsd string) string {
	typed := func(lexical, datatype string) string {
		dt := xsd + datatype
		if strings.HasPrefix(xsd, "<") {
			dt += ">"
		}
		return fmt.Sprintf("\"%s\"^^%s", lexical, dt)
	}
	switch v := obj.(type) {
	case IRI:
		return fmt.Sprintf("<%s>", v)
	case string:
		if isDateTime(v) {
			return typed(v, "dateTime")
		}
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return typed(fmt.Sprintf("%d", v), "integer")
	case float64:
		if lexical, ok := integral(v); ok {
			return typed(lexical, "integer")
		}
		return typed(decimal(v), "decimal")
	case float32:
		return typed(decimal(float64(v)), "decimal")
	case bool:
		return typed(fmt.Sprintf("%t", v), "boolean")
	default:
		return fmt.Sprintf("\"%s\"", escapeString(fmt.Sprintf("%v", v)))
	}
}

// formatObjectJSONLD converts an object value to its JSON-LD node form.
func formatObjectJSONLD(obj any) any {
	switch v := obj.(type) {
	case IRI:
		return map[string]any{"@id": string(v)}
	case string:
		if isDateTime(v) {
			return map[string]any{"@value": v, "@type": "xsd:dateTime"}
		}
		return v
	default:
		return v
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
