// Package storage persists expanded elements in a NATS JetStream KV bucket,
// keyed by a name-based UUID of the element IRI.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/spdxld/document"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "SPDX_ELEMENTS"

// Record is the stored form of one expanded element.
type Record struct {
	IRI       string           `json:"iri"`
	Namespace string           `json:"namespace"`
	Element   document.Element `json:"element"`
	StoredAt  time.Time        `json:"stored_at"`
}

// Key returns the KV key of an element IRI: the UUIDv5 of the IRI in the
// URL namespace. IRIs contain characters that are not valid KV keys.
func Key(iri string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(iri)).String()
}

// Store provides element storage operations backed by NATS KV.
type Store struct {
	kv  jetstream.KeyValue
	now func() time.Time
}

// NewStore creates a new Store with the given JetStream context.
// It creates the bucket if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create elements bucket: %w", err)
	}
	return NewStoreFromKV(kv), nil
}

// NewStoreFromKV wraps an existing bucket.
func NewStoreFromKV(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv, now: time.Now}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("spdxld %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// PutElements stores expanded elements of the document with the given
// namespace, replacing earlier revisions. Elements must carry absolute
// IRIs as ids.
func (s *Store) PutElements(ctx context.Context, namespace string, elements []document.Element) (int, error) {
	stored := 0
	for _, e := range elements {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		rec := Record{
			IRI:       e.ID,
			Namespace: namespace,
			Element:   e,
			StoredAt:  s.now().UTC(),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return stored, fmt.Errorf("marshal element %s: %w", e.ID, err)
		}
		if _, err := s.kv.Put(ctx, Key(e.ID), data); err != nil {
			return stored, fmt.Errorf("store element %s: %w", e.ID, err)
		}
		stored++
	}
	return stored, nil
}

// GetElement retrieves an element by IRI.
func (s *Store) GetElement(ctx context.Context, iri string) (*Record, error) {
	entry, err := s.kv.Get(ctx, Key(iri))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get element: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal element: %w", err)
	}
	return &rec, nil
}

// ListElements returns all stored elements sorted by IRI.
func (s *Store) ListElements(ctx context.Context) ([]*Record, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list element keys: %w", err)
	}

	records := make([]*Record, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var rec Record
		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].IRI < records[j].IRI })
	return records, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "key not found")
}
