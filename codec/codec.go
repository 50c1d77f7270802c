// Package codec loads and writes documents and element lists in the file
// encodings registered by extension (JSON and YAML by default).
package codec

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts between bytes and Go values for one file encoding.
type Codec interface {
	// Name returns the encoding name, e.g. "json".
	Name() string

	// Extensions returns the file extensions handled, with dot.
	Extensions() []string

	// MimeType returns the primary MIME type.
	MimeType() string

	Unmarshal(data []byte, v any) error
	Marshal(v any) ([]byte, error)
}

// JSON encodes with two-space indentation and a trailing newline.
type JSON struct{}

// NewJSON creates the JSON codec.
func NewJSON() *JSON { return &JSON{} }

// Name implements Codec.
func (*JSON) Name() string { return "json" }

// Extensions implements Codec.
func (*JSON) Extensions() []string { return []string{".json"} }

// MimeType implements Codec.
func (*JSON) MimeType() string { return "application/json" }

// Unmarshal implements Codec.
func (*JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Marshal implements Codec.
func (*JSON) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAML encodes block-style YAML with two-space indentation.
type YAML struct{}

// NewYAML creates the YAML codec.
func NewYAML() *YAML { return &YAML{} }

// Name implements Codec.
func (*YAML) Name() string { return "yaml" }

// Extensions implements Codec.
func (*YAML) Extensions() []string { return []string{".yaml", ".yml"} }

// MimeType implements Codec.
func (*YAML) MimeType() string { return "application/yaml" }

// Unmarshal implements Codec.
func (*YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// Marshal implements Codec.
func (*YAML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
