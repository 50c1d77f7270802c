// Package spdx2 translates SPDX 2.x JSON documents into the linked-data
// document form: one sbom element plus the document context.
package spdx2

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// ErrInvalidDocument is returned when a required SPDX 2 field is missing.
var ErrInvalidDocument = errors.New("invalid SPDX 2 document")

// Document is the subset of an SPDX 2.x document that is translated.
type Document struct {
	SPDXID            string       `json:"SPDXID"`
	SPDXVersion       string       `json:"spdxVersion"`
	Name              string       `json:"name"`
	Summary           string       `json:"summary"`
	Description       string       `json:"description"`
	Comment           string       `json:"comment"`
	DataLicense       string       `json:"dataLicense"`
	DocumentNamespace string       `json:"documentNamespace"`
	CreationInfo      CreationInfo `json:"creationInfo"`
}

// CreationInfo holds who created a document and when.
type CreationInfo struct {
	Creators []string `json:"creators"`
	Created  string   `json:"created"`
	Comment  string   `json:"comment,omitempty"`
}

// CoreProfile is the profile every translated document conforms to.
const CoreProfile = "Core"

// Translator converts SPDX 2 documents.
type Translator struct {
	// NewUUID mints the suffix of a missing document namespace.
	NewUUID func() string
}

// NewTranslator creates a Translator using random UUIDs.
func NewTranslator() *Translator {
	return &Translator{NewUUID: uuid.NewString}
}

// Decode parses SPDX 2 JSON.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &d, nil
}

// Translate parses and translates SPDX 2 JSON with a default Translator.
func Translate(data []byte) (*document.Document, error) {
	v2, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return NewTranslator().Translate(v2)
}

// Translate converts v2 into a document holding one sbom element. The
// element carries the SPDXID and the non-empty descriptive fields; the
// creation info, spec version and data license become inheritable
// document properties.
func (t *Translator) Translate(v2 *Document) (*document.Document, error) {
	switch {
	case v2.SPDXID == "":
		return nil, fmt.Errorf("%w: missing SPDXID", ErrInvalidDocument)
	case v2.SPDXVersion == "":
		return nil, fmt.Errorf("%w: missing spdxVersion", ErrInvalidDocument)
	case v2.CreationInfo.Created == "":
		return nil, fmt.Errorf("%w: missing creationInfo.created", ErrInvalidDocument)
	}

	when, err := NormalizeTimestamp(v2.CreationInfo.Created)
	if err != nil {
		return nil, fmt.Errorf("%w: creationInfo.created: %v", ErrInvalidDocument, err)
	}

	creators := make([]any, len(v2.CreationInfo.Creators))
	for i, c := range v2.CreationInfo.Creators {
		creators[i] = c
	}

	props := map[string]any{
		spdx.PropSpecVersion: v2.SPDXVersion,
		spdx.PropCreated: map[string]any{
			spdx.PropCreatedBy:   creators,
			spdx.PropCreatedWhen: when,
		},
		spdx.PropProfile: []any{CoreProfile},
	}
	if v2.DataLicense != "" {
		props[spdx.PropDataLicense] = v2.DataLicense
	}

	sbom := document.Element{
		ID:          v2.SPDXID,
		Type:        &document.Plain{Kind: spdx.TypeSBOM},
		Name:        v2.Name,
		Summary:     v2.Summary,
		Description: v2.Description,
		Comment:     v2.Comment,
	}

	return &document.Document{
		Namespace:  t.namespace(v2),
		Properties: props,
		Elements:   []document.Element{sbom},
	}, nil
}

// namespace returns the document namespace, minting one when missing. A
// fragment separator is appended so bare element ids expand to
// "<namespace>#<id>".
func (t *Translator) namespace(v2 *Document) string {
	ns := v2.DocumentNamespace
	if ns == "" {
		name := v2.Name
		if name == "" {
			name = "document"
		}
		ns = fmt.Sprintf("%s%s-%s", spdx.DocumentNamespacePrefix, name, t.NewUUID())
	}
	if !strings.HasSuffix(ns, "#") && !strings.HasSuffix(ns, "/") {
		ns += "#"
	}
	return ns
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeTimestamp parses an SPDX 2 timestamp (RFC 3339, case
// insensitive, space or T separated, UTC when no offset is given) and
// renders it in UTC at millisecond precision, dropping a zero fraction.
func NormalizeTimestamp(s string) (string, error) {
	s = strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "T")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC().Truncate(time.Millisecond).Format("2006-01-02T15:04:05.999Z07:00"), nil
		}
	}
	return "", fmt.Errorf("unrecognized timestamp %q", s)
}
