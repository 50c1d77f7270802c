// Package graph publishes expanded elements to the knowledge graph ingest
// subject as triple messages.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/export"
)

// GraphIngestSubject is the default subject for element ingestion.
const GraphIngestSubject = "graph.ingest.element"

// Source tags every published triple.
const Source = "spdxld.expand"

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ElementPublisher publishes element ingest messages on one subject.
type ElementPublisher struct {
	pub     Publisher
	subject string
	now     func() time.Time
}

// NewElementPublisher creates a publisher for subject, defaulting to
// GraphIngestSubject. A nil Publisher disables publishing.
func NewElementPublisher(pub Publisher, subject string) *ElementPublisher {
	if subject == "" {
		subject = GraphIngestSubject
	}
	return &ElementPublisher{pub: pub, subject: subject, now: time.Now}
}

// Message builds the ingest message of one expanded element.
func (p *ElementPublisher) Message(namespace string, e document.Element) *ElementIngestMessage {
	now := p.now().UTC()
	triples := export.ElementTriples(e)
	out := make([]IngestTriple, 0, len(triples))
	for _, t := range triples {
		obj := t.Object
		if iri, ok := obj.(export.IRI); ok {
			obj = string(iri)
		}
		out = append(out, IngestTriple{
			Subject:    t.Subject,
			Predicate:  t.Predicate,
			Object:     obj,
			Source:     Source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}
	return &ElementIngestMessage{
		ID:        e.ID,
		Namespace: namespace,
		Triples:   out,
		UpdatedAt: now,
	}
}

// PublishElements publishes one ingest message per element and returns the
// number published.
func (p *ElementPublisher) PublishElements(ctx context.Context, namespace string, elements []document.Element) (int, error) {
	if p == nil || p.pub == nil {
		return 0, nil // Skip publishing if no connection (graceful degradation)
	}

	published := 0
	for _, e := range elements {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		msg := p.Message(namespace, e)
		if err := msg.Validate(); err != nil {
			return published, fmt.Errorf("element %q: %w", e.ID, err)
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return published, fmt.Errorf("marshal element %s: %w", e.ID, err)
		}
		if err := p.pub.Publish(p.subject, data); err != nil {
			return published, fmt.Errorf("publish element %s: %w", e.ID, err)
		}
		published++
	}
	return published, nil
}
