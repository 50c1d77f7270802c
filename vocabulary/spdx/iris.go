package spdx

// Namespace is the base IRI for SPDX v3 model terms.
const Namespace = "https://spdx.org/rdf/v3/"

// DocumentNamespacePrefix is the base used when a document namespace has to
// be minted for a translated SPDX 2 document.
const DocumentNamespacePrefix = "https://spdx.org/spdxdocs/"

// Prefix is the conventional compact prefix for Namespace.
const Prefix = "spdx"

// Element property names.
const (
	PropID          = "id"
	PropType        = "type"
	PropName        = "name"
	PropSummary     = "summary"
	PropDescription = "description"
	PropComment     = "comment"

	PropSpecVersion = "specVersion"
	PropCreated     = "created"
	PropCreatedBy   = "by"
	PropCreatedWhen = "when"
	PropProfile     = "profile"
	PropDataLicense = "dataLicense"
)

// Variant keys with dedicated payloads.
const (
	TypeRelationship = "relationship"
	TypeAnnotation   = "annotation"
)

// Payload property names inside variants.
const (
	PropFrom    = "from"
	PropTo      = "to"
	PropSubject = "subject"

	PropElements     = "elements"
	PropRootElements = "rootElements"
	PropOriginator   = "originator"
	PropMembers      = "members"
)

// Common collection variant keys.
const (
	TypeSBOM         = "sbom"
	TypeBOM          = "bom"
	TypeBundle       = "bundle"
	TypeSpdxDocument = "spdxDocument"
)

// ListProperties are the identifier-list properties that make a variant a
// collection, in the order they are walked.
var ListProperties = []string{PropElements, PropRootElements, PropOriginator, PropMembers}

// GraphEdgeProperties are the collection lists rendered as graph edges.
var GraphEdgeProperties = []string{PropElements, PropMembers}

// DefaultProperties is the standard allow-list of inheritable document
// properties.
var DefaultProperties = []string{PropSpecVersion, PropCreated, PropProfile, PropDataLicense}

// Standard ontology IRIs used by the RDF exporters.
const (
	RDFNS   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS  = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS   = "http://www.w3.org/2001/XMLSchema#"
	RDFType = RDFNS + "type"
)

// PredicateIRI returns the model IRI of an element or payload property.
func PredicateIRI(property string) string {
	return Namespace + property
}

// ClassIRI returns the model IRI of a variant key. The key is upper-cased
// on its first letter: "sbom" becomes ".../Sbom".
func ClassIRI(variant string) string {
	if variant == "" {
		return Namespace + "Element"
	}
	b := []byte(variant)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return Namespace + string(b)
}
