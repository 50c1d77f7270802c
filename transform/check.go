package transform

import (
	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
)

// ReferenceStatus is a classified identifier occurrence.
type ReferenceStatus struct {
	Reference
	Resolution resolver.Resolution
}

// Report summarizes the reference integrity of a set of elements.
type Report struct {
	References []ReferenceStatus
	Counts     map[resolver.Resolution]int
}

// Undefined returns the references that resolve to no known identifier.
func (r *Report) Undefined() []ReferenceStatus {
	var out []ReferenceStatus
	for _, ref := range r.References {
		if ref.Resolution == resolver.ResolutionUndefined {
			out = append(out, ref)
		}
	}
	return out
}

// CheckReferences classifies every identifier occurrence of elements,
// in either form, against ctx. Element ids themselves are included.
func CheckReferences(ctx *resolver.Context, elements []document.Element) *Report {
	r := &Report{Counts: make(map[resolver.Resolution]int)}
	for _, e := range elements {
		for _, ref := range References(e) {
			res := ctx.Classify(ref.ID)
			r.References = append(r.References, ReferenceStatus{Reference: ref, Resolution: res})
			r.Counts[res]++
		}
	}
	return r
}
