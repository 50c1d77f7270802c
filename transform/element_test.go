package transform

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
)

func scenarioContext(opts ...resolver.ContextOption) *resolver.Context {
	opts = append([]resolver.ContextOption{resolver.WithLocalIDs("e1")}, opts...)
	return resolver.NewContext("https://ex.org/", map[string]string{"spdx": "https://spdx.org/"}, opts...)
}

func mustElement(t *testing.T, s string) document.Element {
	t.Helper()
	var e document.Element
	require.NoError(t, json.Unmarshal([]byte(s), &e))
	return e
}

func jsonOf(t *testing.T, e document.Element) string {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return string(data)
}

func TestExpandElementRelationship(t *testing.T) {
	ctx := scenarioContext()
	e := mustElement(t, `{"id": "e1", "type": {"relationship": {"from": "e1", "to": ["spdx:e2"]}}}`)

	got, diags := ExpandElement(ctx, e)
	assert.Empty(t, diags)
	assert.JSONEq(t,
		`{"id": "https://ex.org/e1", "type": {"relationship": {"from": "https://ex.org/e1", "to": ["https://spdx.org/e2"]}}}`,
		jsonOf(t, got))

	// the input element is not modified
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, []string{"spdx:e2"}, e.Type.(*document.Relationship).To)
}

func TestExpandElementUndefinedReference(t *testing.T) {
	ctx := scenarioContext()
	e := mustElement(t, `{"id": "ghost", "type": {"annotation": {"subject": "e1"}}}`)

	got, diags := ExpandElement(ctx, e)
	assert.Equal(t, "https://ex.org/ghost", got.ID)
	assert.Equal(t, "https://ex.org/e1", got.Type.(*document.Annotation).Subject)

	require.Len(t, diags, 1)
	assert.Equal(t, resolver.CodeUnresolvedReference, diags[0].Code)
	assert.Equal(t, "ghost", diags[0].Identifier)
	assert.Equal(t, "ghost", diags[0].Element)
	assert.Equal(t, "id", diags[0].Field)
}

func TestExpandElementAllFields(t *testing.T) {
	ctx := scenarioContext(resolver.WithLocalIDs("alice", "a", "b", "c", "d"))
	e := mustElement(t, `{
		"id": "e1",
		"type": {"sbom": {"elements": ["a", "spdx:x"], "rootElements": ["b"], "originator": ["c"], "members": ["d", "nowhere"], "comment": "kept"}},
		"created": {"by": ["alice", "spdx:tool"], "when": "2022-01-01T00:00:00Z"}
	}`)

	got, diags := ExpandElement(ctx, e)
	c := got.Type.(*document.Collection)
	assert.Equal(t, []string{"https://ex.org/a", "https://spdx.org/x"}, c.Elements)
	assert.Equal(t, []string{"https://ex.org/b"}, c.RootElements)
	assert.Equal(t, []string{"https://ex.org/c"}, c.Originator)
	assert.Equal(t, []string{"https://ex.org/d", "https://ex.org/nowhere"}, c.Members)
	assert.Equal(t, "kept", c.Properties["comment"])

	created := got.Properties["created"].(map[string]any)
	assert.Equal(t, []any{"https://ex.org/alice", "https://spdx.org/tool"}, created["by"])
	assert.Equal(t, "2022-01-01T00:00:00Z", created["when"])

	require.Len(t, diags, 1)
	assert.Equal(t, "sbom.members[1]", diags[0].Field)
}

func TestExpandElementInheritsDefaults(t *testing.T) {
	ctx := scenarioContext(resolver.WithDefaults(map[string]any{
		"dataLicense": "CC0-1.0",
		"specVersion": "3.0",
	}, "specVersion", "dataLicense"))

	e := mustElement(t, `{"id": "e1", "type": {"person": {}}, "dataLicense": "MIT"}`)
	got, _ := ExpandElement(ctx, e)

	v, _ := got.Property("dataLicense")
	assert.Equal(t, "MIT", v, "element values win over defaults")
	v, _ = got.Property("specVersion")
	assert.Equal(t, "3.0", v)
}

func TestCompactElementStripsDefaults(t *testing.T) {
	ctx := scenarioContext(resolver.WithDefaults(map[string]any{"dataLicense": "CC0-1.0"}, "dataLicense"))

	same := mustElement(t, `{"id": "https://ex.org/e1", "type": {"person": {}}, "dataLicense": "CC0-1.0"}`)
	got := CompactElement(ctx, same)
	_, ok := got.Property("dataLicense")
	assert.False(t, ok)
	assert.Equal(t, "e1", got.ID)

	other := mustElement(t, `{"id": "https://ex.org/e1", "type": {"person": {}}, "dataLicense": "MIT"}`)
	got = CompactElement(ctx, other)
	v, ok := got.Property("dataLicense")
	assert.True(t, ok)
	assert.Equal(t, "MIT", v)
}

func TestCompactElementStripsInheritedCreated(t *testing.T) {
	created := map[string]any{"by": []any{"e1"}, "when": "2022-01-01T00:00:00Z"}
	ctx := scenarioContext(resolver.WithDefaults(map[string]any{"created": created}, "created"))

	e := mustElement(t, `{"id": "e1", "type": {"person": {}}}`)
	expanded, _ := ExpandElement(ctx, e)
	_, ok := expanded.Property("created")
	require.True(t, ok)

	compacted := CompactElement(ctx, expanded)
	_, ok = compacted.Property("created")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	ctx := resolver.NewContext("https://ex.org/",
		map[string]string{"spdx": "https://spdx.org/"},
		resolver.WithLocalIDs("e1", "e2", "doc", "alice"),
		resolver.WithDefaults(map[string]any{
			"specVersion": "3.0",
			"dataLicense": "CC0-1.0",
			"profile":     []any{"Core"},
			"created":     map[string]any{"by": []any{"alice"}, "when": "2022-01-01T00:00:00Z"},
		}, "specVersion", "created", "profile", "dataLicense"),
	)

	elements := []string{
		`{"id": "e1", "type": {"relationship": {"from": "e1", "to": ["spdx:e2", "e2"], "relationshipType": "contains"}}}`,
		`{"id": "doc", "type": {"sbom": {"elements": ["e1", "e2"], "rootElements": ["e1"]}}, "name": "SBOM"}`,
		`{"id": "e2", "type": {"annotation": {"subject": "e1"}}, "dataLicense": "MIT"}`,
		`{"id": "alice", "type": {"person": {}}, "created": {"by": ["spdx:bob"], "when": "2021-01-01T00:00:00Z"}}`,
		`{"id": "spdx:ext", "type": {"package": {"originator": ["alice", "https://else.org/x"]}}}`,
	}

	for _, s := range elements {
		e := mustElement(t, s)
		t.Run(e.ID, func(t *testing.T) {
			expanded, _ := ExpandElement(ctx, e)
			back := CompactElement(ctx, expanded)
			if diff := cmp.Diff(jsonOf(t, e), jsonOf(t, back)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultOmissionLaw(t *testing.T) {
	defaults := map[string]any{
		"specVersion": "3.0",
		"dataLicense": "CC0-1.0",
		"profile":     []any{"Core", "Software"},
	}
	ctx := scenarioContext(resolver.WithDefaults(defaults, "specVersion", "profile", "dataLicense"))

	e := mustElement(t, `{"id": "e1", "type": {"person": {}}, "specVersion": "3.0", "profile": ["Core", "Software"], "dataLicense": "CC0-1.0"}`)
	expanded, _ := ExpandElement(ctx, e)
	got := CompactElement(ctx, expanded)

	for name := range defaults {
		_, ok := got.Property(name)
		assert.False(t, ok, "%s should be omitted", name)
	}
}

func TestExpandIsIdempotent(t *testing.T) {
	ctx := scenarioContext(resolver.WithDefaults(map[string]any{
		"created": map[string]any{"by": []any{"e1"}},
	}, "created"))

	e := mustElement(t, `{"id": "e1", "type": {"relationship": {"from": "e1", "to": ["spdx:e2", "unknownscheme:x", "ghost"]}}}`)
	once, _ := ExpandElement(ctx, e)
	twice, diags := ExpandElement(ctx, once)

	assert.Empty(t, diags)
	if diff := cmp.Diff(jsonOf(t, once), jsonOf(t, twice)); diff != "" {
		t.Errorf("expand is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestReferences(t *testing.T) {
	e := mustElement(t, `{"id": "e1", "type": {"relationship": {"from": "e1", "to": ["a", "b"]}}, "created": {"by": ["alice"]}}`)
	refs := References(e)

	fields := make([]string, len(refs))
	for i, r := range refs {
		fields[i] = r.Field + "=" + r.ID
	}
	assert.Equal(t, []string{
		"id=e1",
		"created.by[0]=alice",
		"relationship.from=e1",
		"relationship.to[0]=a",
		"relationship.to[1]=b",
	}, fields)
}
