package graph

import (
	"encoding/json"
	"errors"
	"time"
)

// IngestTriple is one statement about an ingested element.
type IngestTriple struct {
	Subject    string    `json:"subject"`
	Predicate  string    `json:"predicate"`
	Object     any       `json:"object"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
}

// ElementIngestMessage is the message format for graph ingestion of one
// expanded element.
type ElementIngestMessage struct {
	ID        string         `json:"id"`
	Namespace string         `json:"namespace,omitempty"`
	Triples   []IngestTriple `json:"triples"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks that the message can be ingested.
func (m *ElementIngestMessage) Validate() error {
	if m.ID == "" {
		return errors.New("element ID is required")
	}
	for _, t := range m.Triples {
		if t.Subject != m.ID {
			return errors.New("triple subject does not match element ID")
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m *ElementIngestMessage) MarshalJSON() ([]byte, error) {
	type Alias ElementIngestMessage
	if m.Triples == nil {
		m2 := *m
		m2.Triples = []IngestTriple{}
		return json.Marshal((*Alias)(&m2))
	}
	return json.Marshal((*Alias)(m))
}
