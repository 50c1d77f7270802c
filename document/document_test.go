package document_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/spdxld/document"
)

const sampleJSON = `{
  "namespace": "https://ex.org/",
  "namespaceMap": {"https://spdx.org/": "spdx"},
  "specVersion": "3.0",
  "created": {"by": ["alice"], "when": "2022-02-14T12:00:00Z"},
  "dataLicense": "CC0-1.0",
  "documentRefs": [{"namespace": "ext", "elements": ["pkg1", "pkg2"]}],
  "elements": [
    {"id": "doc", "type": {"sbom": {"elements": ["e1", "spdx:e2"], "rootElements": ["e1"]}}, "name": "Example SBOM"},
    {"id": "e1", "type": {"relationship": {"from": "e1", "to": ["spdx:e2"], "relationshipType": "contains"}}},
    {"id": "n1", "type": {"annotation": {"subject": "e1", "statement": "reviewed"}}, "dataLicense": "MIT"},
    {"id": "alice", "type": {"person": {}}, "comment": "author"}
  ]
}`

const sampleYAML = `
namespace: https://ex.org/
namespaceMap:
  https://spdx.org/: spdx
specVersion: "3.0"
created:
  by: [alice]
  when: "2022-02-14T12:00:00Z"
dataLicense: CC0-1.0
documentRefs:
  - namespace: ext
    elements: [pkg1, pkg2]
elements:
  - id: doc
    type:
      sbom:
        elements: [e1, "spdx:e2"]
        rootElements: [e1]
    name: Example SBOM
  - id: e1
    type:
      relationship:
        from: e1
        to: ["spdx:e2"]
        relationshipType: contains
  - id: n1
    type:
      annotation:
        subject: e1
        statement: reviewed
    dataLicense: MIT
  - id: alice
    type:
      person: {}
    comment: author
`

func decodeSample(t *testing.T) *document.Document {
	t.Helper()
	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &doc))
	return &doc
}

func TestDecodeJSON(t *testing.T) {
	doc := decodeSample(t)

	assert.Equal(t, "https://ex.org/", doc.Namespace)
	assert.Equal(t, map[string]string{"https://spdx.org/": "spdx"}, doc.NamespaceMap)
	assert.Equal(t, "3.0", doc.Properties["specVersion"])
	require.Len(t, doc.References, 1)
	assert.Equal(t, "ext", doc.References[0].Namespace)
	assert.Equal(t, []string{"pkg1", "pkg2"}, doc.References[0].Elements)
	require.Len(t, doc.Elements, 4)

	t.Run("collection", func(t *testing.T) {
		c, ok := doc.Elements[0].Type.(*document.Collection)
		require.True(t, ok, "expected *Collection, got %T", doc.Elements[0].Type)
		assert.Equal(t, "sbom", c.Key())
		assert.Equal(t, []string{"e1", "spdx:e2"}, c.Elements)
		assert.Equal(t, []string{"e1"}, c.RootElements)
		assert.Nil(t, c.Members)
		assert.Equal(t, "Example SBOM", doc.Elements[0].Name)
	})

	t.Run("relationship", func(t *testing.T) {
		r, ok := doc.Elements[1].Type.(*document.Relationship)
		require.True(t, ok)
		assert.Equal(t, "e1", r.From)
		assert.Equal(t, []string{"spdx:e2"}, r.To)
		assert.Equal(t, "contains", r.Properties["relationshipType"])
	})

	t.Run("annotation", func(t *testing.T) {
		a, ok := doc.Elements[2].Type.(*document.Annotation)
		require.True(t, ok)
		assert.Equal(t, "e1", a.Subject)
		v, ok := doc.Elements[2].Property("dataLicense")
		assert.True(t, ok)
		assert.Equal(t, "MIT", v)
	})

	t.Run("plain", func(t *testing.T) {
		p, ok := doc.Elements[3].Type.(*document.Plain)
		require.True(t, ok)
		assert.Equal(t, "person", p.Key())
		assert.Equal(t, "author", doc.Elements[3].Comment)
	})
}

func TestDecodeYAMLMatchesJSON(t *testing.T) {
	fromJSON := decodeSample(t)

	var fromYAML document.Document
	require.NoError(t, yaml.Unmarshal([]byte(sampleYAML), &fromYAML))

	a, err := json.Marshal(fromJSON)
	require.NoError(t, err)
	b, err := json.Marshal(&fromYAML)
	require.NoError(t, err)
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Errorf("YAML and JSON decodings differ (-json +yaml):\n%s", diff)
	}
}

func TestEncodeElementOrder(t *testing.T) {
	doc := decodeSample(t)

	data, err := json.Marshal(doc.Elements[1])
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":"e1","type":{"relationship":{"from":"e1","to":["spdx:e2"],"relationshipType":"contains"}}}`,
		string(data))

	out, err := yaml.Marshal(doc.Elements[0])
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "id: doc\n"), "id should be encoded first:\n%s", s)
	assert.Less(t, strings.Index(s, "type:"), strings.Index(s, "name:"))
}

func TestEncodeDocumentRoundTrip(t *testing.T) {
	doc := decodeSample(t)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var again document.Document
	require.NoError(t, json.Unmarshal(data, &again))

	data2, err := json.Marshal(&again)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2))
	assert.JSONEq(t, sampleJSON, string(data))
}

func TestDecodeInvalidElements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing id", `{"type": {"person": {}}}`},
		{"missing type", `{"id": "x"}`},
		{"two variants", `{"id": "x", "type": {"person": {}, "tool": {}}}`},
		{"no variant", `{"id": "x", "type": {}}`},
		{"bad relationship to", `{"id": "x", "type": {"relationship": {"from": "a", "to": "b"}}}`},
		{"non-string name", `{"id": "x", "type": {"person": {}}, "name": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e document.Element
			err := json.Unmarshal([]byte(tt.input), &e)
			require.Error(t, err)
			assert.ErrorIs(t, err, document.ErrInvalidElement)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := decodeSample(t)
	orig := doc.Elements[0]
	clone := orig.Clone()

	clone.Type.(*document.Collection).Elements[0] = "changed"
	clone.Name = "changed"

	assert.Equal(t, "e1", orig.Type.(*document.Collection).Elements[0])
	assert.Equal(t, "Example SBOM", orig.Name)

	created := doc.Properties["created"].(map[string]any)
	copied := document.CloneValue(created).(map[string]any)
	copied["by"].([]any)[0] = "mallory"
	assert.Equal(t, "alice", created["by"].([]any)[0])
}

func TestPropertyAccessors(t *testing.T) {
	e := document.Element{ID: "x", Type: &document.Plain{Kind: "person"}}

	_, ok := e.Property("name")
	assert.False(t, ok, "empty scalar should be absent")

	require.NoError(t, e.SetProperty("name", "X"))
	require.NoError(t, e.SetProperty("dataLicense", "MIT"))
	assert.Error(t, e.SetProperty("name", 1))
	assert.Error(t, e.SetProperty("id", "y"))
	assert.Equal(t, []string{"dataLicense", "name"}, e.PropertyNames())

	e.DeleteProperty("dataLicense")
	e.DeleteProperty("name")
	assert.Nil(t, e.Properties)
	assert.Empty(t, e.PropertyNames())
}

func TestEqual(t *testing.T) {
	assert.True(t, document.Equal([]string{"a", "b"}, []any{"a", "b"}))
	assert.True(t, document.Equal(map[string]any{"by": []any{"x"}}, map[string]any{"by": []string{"x"}}))
	assert.True(t, document.Equal(1, 1.0))
	assert.False(t, document.Equal("CC0-1.0", "MIT"))
	assert.False(t, document.Equal([]string{"a"}, []string{"a", "b"}))
}

func TestHeader(t *testing.T) {
	doc := decodeSample(t)
	h := doc.Header()
	assert.Nil(t, h.Elements)
	assert.Equal(t, doc.Namespace, h.Namespace)
	h.NamespaceMap["https://other/"] = "o"
	assert.NotContains(t, doc.NamespaceMap, "https://other/")
}
