package export

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
	FormatDOT: {
		Name:        FormatDOT,
		MIMEType:    "text/vnd.graphviz",
		Extension:   ".dot",
		Description: "Graphviz digraph of collection membership",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "Element list as JSON",
	},
	FormatYAML: {
		Name:        FormatYAML,
		MIMEType:    "application/yaml",
		Extension:   ".yaml",
		Description: "Element list as YAML",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// IsEncoding reports whether format is a plain element encoding rather
// than a rendered export.
func IsEncoding(format Format) bool {
	return format == FormatJSON || format == FormatYAML
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with default prefixes.
func NewTurtleWriter() *TurtleWriter {
	return &TurtleWriter{
		prefixes: defaultPrefixes(),
	}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(iri string) {
	w.sb.WriteString(fmt.Sprintf("<%s>\n", iri))
}

// WriteType writes a type assertion.
func (w *TurtleWriter) WriteType(typeIRI string, last bool) {
	w.sb.WriteString(fmt.Sprintf("    a <%s>%s\n", typeIRI, terminator(last)))
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicateIRI string, object any, last bool) {
	w.sb.WriteString(fmt.Sprintf("    <%s> %s%s\n", predicateIRI, formatObject(object), terminator(last)))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func terminator(last bool) string {
	if last {
		return " ."
	}
	return " ;"
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(subject, predicate string, object any) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> %s .\n", subject, predicate, formatObjectNTriples(object)))
}

// WriteTypeTriple writes a type assertion triple.
func (w *NTriplesWriter) WriteTypeTriple(subject, typeIRI string) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> <%s> .\n", subject, spdx.RDFType, typeIRI))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// String returns the JSON-LD output.
func (w *JSONLDWriter) String() string {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data) + "\n"
}

func isDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// integral reports whether a decoded JSON number holds an integer.
func integral(f float64) (string, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return "", false
	}
	return strconv.FormatInt(int64(f), 10), true
}

func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
