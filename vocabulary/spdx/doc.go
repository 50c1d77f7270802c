// Package spdx provides the vocabulary shared by the spdxld packages: the
// SPDX v3 namespaces, the element property names that identifier walks and
// default inheritance rely on, and the RDF predicate IRIs used on export.
//
// # Default properties
//
// DefaultProperties is the standard allow-list of document-level properties
// that elements inherit when a document is expanded:
//
//	specVersion, created, profile, dataLicense
//
// Other document dialects pass their own list through resolver.Options.
//
// # Variant keys
//
// An element's "type" field holds exactly one keyed variant. The keys
// "relationship" and "annotation" select dedicated payloads; any other key
// is a plain element or, when its payload carries one of the list
// properties in ListProperties, a collection.
package spdx
