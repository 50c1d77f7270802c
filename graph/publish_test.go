package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/spdxld/document"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Publish(subject string, data []byte) error {
	if r.err != nil {
		return r.err
	}
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}

func testElements() []document.Element {
	return []document.Element{
		{ID: "https://ex.org/a", Name: "A", Type: &document.Plain{Kind: "package"}},
		{ID: "https://ex.org/rel", Type: &document.Relationship{From: "https://ex.org/a", To: []string{"https://ex.org/b"}}},
	}
}

func TestPublishElements(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewElementPublisher(rec, "")
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	n, err := p.PublishElements(context.Background(), "https://ex.org/", testElements())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{GraphIngestSubject, GraphIngestSubject}, rec.subjects)

	var msg ElementIngestMessage
	require.NoError(t, json.Unmarshal(rec.payloads[1], &msg))
	assert.Equal(t, "https://ex.org/rel", msg.ID)
	assert.Equal(t, "https://ex.org/", msg.Namespace)
	assert.True(t, fixed.Equal(msg.UpdatedAt))

	byPredicate := map[string]any{}
	for _, tr := range msg.Triples {
		assert.Equal(t, Source, tr.Source)
		byPredicate[tr.Predicate] = tr.Object
	}
	assert.Equal(t, "https://spdx.org/rdf/v3/Relationship", byPredicate["http://www.w3.org/1999/02/22-rdf-syntax-ns#type"])
	assert.Equal(t, "https://ex.org/b", byPredicate["https://spdx.org/rdf/v3/to"])
}

func TestPublishElementsCustomSubject(t *testing.T) {
	rec := &recordingPublisher{}
	_, err := NewElementPublisher(rec, "sbom.ingest").PublishElements(context.Background(), "", testElements()[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{"sbom.ingest"}, rec.subjects)
}

func TestPublishElementsDisabled(t *testing.T) {
	n, err := NewElementPublisher(nil, "").PublishElements(context.Background(), "", testElements())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishElementsErrors(t *testing.T) {
	boom := errors.New("connection closed")
	_, err := NewElementPublisher(&recordingPublisher{err: boom}, "").PublishElements(context.Background(), "", testElements())
	assert.ErrorIs(t, err, boom)

	n, err := NewElementPublisher(&recordingPublisher{}, "").PublishElements(context.Background(), "", []document.Element{{Name: "no id"}})
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestElementIngestMessageValidate(t *testing.T) {
	msg := &ElementIngestMessage{ID: "https://ex.org/a", Triples: []IngestTriple{{Subject: "https://ex.org/b"}}}
	assert.Error(t, msg.Validate())

	data, err := json.Marshal(&ElementIngestMessage{ID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"triples":[]`)
}
