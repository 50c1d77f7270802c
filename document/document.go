package document

import "fmt"

// Top-level document keys with dedicated fields.
const (
	KeyNamespace    = "namespace"
	KeyNamespaceMap = "namespaceMap"
	KeyDocumentRefs = "documentRefs"
	KeyElements     = "elements"
)

// Document is a decoded container of elements and their shared context.
type Document struct {
	// Namespace is the base IRI of bare local identifiers.
	Namespace string

	// NamespaceMap maps namespace IRIs to compact prefixes.
	NamespaceMap map[string]string

	// Properties holds the document-level properties (specVersion,
	// created, profile, dataLicense and any others).
	Properties map[string]any

	// References declares the identifiers supplied by attached documents.
	References []Reference

	Elements []Element
}

// Reference names an external namespace and the element names it supplies.
// A nil Elements slice means the list is missing.
type Reference struct {
	Namespace string
	Elements  []string
}

// Header returns a copy of the document without its elements.
func (d *Document) Header() *Document {
	h := &Document{
		Namespace:  d.Namespace,
		Properties: cloneProperties(d.Properties),
	}
	if d.NamespaceMap != nil {
		h.NamespaceMap = CloneValue(d.NamespaceMap).(map[string]string)
	}
	for _, r := range d.References {
		h.References = append(h.References, Reference{Namespace: r.Namespace, Elements: cloneStrings(r.Elements)})
	}
	return h
}

// Property returns a document-level property.
func (d *Document) Property(name string) (any, bool) {
	v, ok := d.Properties[name]
	return v, ok
}

// DocumentFromMap decodes a document from a generic decoded object.
func DocumentFromMap(m map[string]any) (*Document, error) {
	props := cloneProperties(m)
	if props == nil {
		props = map[string]any{}
	}

	d := &Document{}
	ns, err := takeString(props, KeyNamespace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	d.Namespace = ns

	if raw, ok := props[KeyNamespaceMap]; ok {
		delete(props, KeyNamespaceMap)
		nm, err := stringMap(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, KeyNamespaceMap, err)
		}
		d.NamespaceMap = nm
	}

	if raw, ok := props[KeyDocumentRefs]; ok {
		delete(props, KeyDocumentRefs)
		refs, err := referencesFromValue(raw)
		if err != nil {
			return nil, err
		}
		d.References = refs
	}

	if raw, ok := props[KeyElements]; ok {
		delete(props, KeyElements)
		list, ok := raw.([]any)
		if !ok && raw != nil {
			return nil, fmt.Errorf("%w: %s is %T, not a list", ErrInvalidDocument, KeyElements, raw)
		}
		d.Elements = make([]Element, 0, len(list))
		for i, item := range list {
			em, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, not an object", ErrInvalidDocument, i, item)
			}
			e, err := ElementFromMap(em)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			d.Elements = append(d.Elements, e)
		}
	}

	d.Properties = nonEmpty(props)
	return d, nil
}

func referencesFromValue(raw any) ([]Reference, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, not a list", ErrInvalidDocument, KeyDocumentRefs, raw)
	}
	refs := make([]Reference, 0, len(list))
	for i, item := range list {
		rm, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, not an object", ErrInvalidDocument, KeyDocumentRefs, i, item)
		}
		var r Reference
		if s, ok := rm[KeyNamespace].(string); ok {
			r.Namespace = s
		}
		if v, ok := rm[KeyElements]; ok && v != nil {
			ids, err := StringList(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidDocument, KeyDocumentRefs, i, err)
			}
			if ids == nil {
				ids = []string{}
			}
			r.Elements = ids
		}
		refs = append(refs, r)
	}
	return refs, nil
}

func stringMap(raw any) (map[string]string, error) {
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return CloneValue(x).(map[string]string), nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, v := range x {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("entry %q is %T, not a string", k, v)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, not an object", raw)
	}
}

func (d *Document) fields() orderedMap {
	var m orderedMap
	if d.Namespace != "" {
		m = append(m, field{KeyNamespace, d.Namespace})
	}
	if d.NamespaceMap != nil {
		m = append(m, field{KeyNamespaceMap, sortedStrings(d.NamespaceMap)})
	}
	m = appendProperties(m, d.Properties)
	if d.References != nil {
		refs := make([]orderedMap, 0, len(d.References))
		for _, r := range d.References {
			rm := orderedMap{{KeyNamespace, r.Namespace}}
			if r.Elements != nil {
				rm = append(rm, field{KeyElements, r.Elements})
			}
			refs = append(refs, rm)
		}
		m = append(m, field{KeyDocumentRefs, refs})
	}
	if d.Elements != nil {
		m = append(m, field{KeyElements, d.Elements})
	}
	return m
}
