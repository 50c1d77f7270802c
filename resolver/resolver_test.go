package resolver

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/spdxld/document"
)

func scenarioContext() *Context {
	return NewContext("https://ex.org/",
		map[string]string{"spdx": "https://spdx.org/"},
		WithLocalIDs("e1"),
	)
}

func TestSplitScheme(t *testing.T) {
	tests := []struct {
		id     string
		scheme string
		rest   string
		ok     bool
	}{
		{"e1", "", "e1", false},
		{"spdx:e2", "spdx", "e2", true},
		{"https://ex.org/e1", "https", "//ex.org/e1", true},
		{"urn:uuid:1234", "urn", "uuid:1234", true},
		{"a+b.c-d:x", "a+b.c-d", "x", true},
		{":x", "", ":x", false},
		{"1abc:x", "", "1abc:x", false},
		{"a b:x", "", "a b:x", false},
		{"SPDXRef-DOCUMENT", "", "SPDXRef-DOCUMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			scheme, rest, ok := SplitScheme(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.scheme, scheme)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestExpand(t *testing.T) {
	ctx := scenarioContext()

	tests := []struct {
		name     string
		id       string
		want     string
		wantDiag bool
	}{
		{"local bare name", "e1", "https://ex.org/e1", false},
		{"known prefix", "spdx:e2", "https://spdx.org/e2", false},
		{"unknown scheme passes through", "unknownscheme:x", "unknownscheme:x", false},
		{"absolute IRI passes through", "https://other.org/x", "https://other.org/x", false},
		{"undefined bare name", "ghost", "https://ex.org/ghost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ctx.Expand(tt.id)
			assert.Equal(t, tt.want, got)
			if tt.wantDiag {
				require.NotNil(t, diag)
				assert.Equal(t, CodeUnresolvedReference, diag.Code)
				assert.Equal(t, tt.id, diag.Identifier)
			} else {
				assert.Nil(t, diag)
			}
		})
	}
}

func TestExpandIsIdempotent(t *testing.T) {
	ctx := scenarioContext()
	for _, id := range []string{"e1", "spdx:e2", "unknownscheme:x", "ghost"} {
		once, _ := ctx.Expand(id)
		twice, diag := ctx.Expand(once)
		assert.Equal(t, once, twice, id)
		assert.Nil(t, diag, id)
	}
}

func TestCompact(t *testing.T) {
	ctx := NewContext("https://ex.org/", map[string]string{
		"spdx":  "https://spdx.org/",
		"spdx3": "https://spdx.org/v3/",
	})

	tests := []struct {
		iri  string
		want string
	}{
		{"https://ex.org/e1", "e1"},
		{"https://spdx.org/e2", "spdx:e2"},
		{"https://spdx.org/v3/Core", "spdx3:Core"},
		{"https://other.org/x", "https://other.org/x"},
		{"unknownscheme:x", "unknownscheme:x"},
	}

	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.Compact(tt.iri))
		})
	}
}

func TestCompactExpandRoundTrip(t *testing.T) {
	ctx := scenarioContext()
	for _, id := range []string{"e1", "spdx:e2", "unknownscheme:x", "https://other.org/x"} {
		iri, _ := ctx.Expand(id)
		assert.Equal(t, id, ctx.Compact(iri))
	}
}

func TestClassify(t *testing.T) {
	ctx := NewContext("https://ex.org/",
		map[string]string{"spdx": "https://spdx.org/"},
		WithLocalIDs("e1"),
		WithImportedIDs("ext:pkg1", "spdx:e2"),
	)

	tests := []struct {
		id   string
		want Resolution
	}{
		{"e1", ResolutionLocal},
		{"https://ex.org/e1", ResolutionLocal},
		{"ext:pkg1", ResolutionImported},
		{"https://spdx.org/e2", ResolutionImported},
		{"spdx:e9", ResolutionExternal},
		{"https://other.org/x", ResolutionExternal},
		{"ghost", ResolutionUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := ctx.Classify(tt.id)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestBuild(t *testing.T) {
	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(`{
		"namespace": "https://ex.org/",
		"namespaceMap": {"https://spdx.org/": "spdx"},
		"specVersion": "3.0",
		"dataLicense": "CC0-1.0",
		"name": "not inherited",
		"documentRefs": [{"namespace": "ext", "elements": ["pkg1", "pkg2"]}],
		"elements": [
			{"id": "e1", "type": {"person": {}}},
			{"id": "https://ex.org/e2", "type": {"person": {}}},
			{"id": "spdx:e3", "type": {"person": {}}}
		]
	}`), &doc))

	ctx, err := Build(&doc, Options{})
	require.NoError(t, err)

	assert.Equal(t, "https://ex.org/", ctx.Namespace())
	assert.Equal(t, map[string]string{"spdx": "https://spdx.org/"}, ctx.Prefixes())
	assert.Equal(t, []string{"e1", "e2", "spdx:e3"}, ctx.LocalIDs())
	assert.Equal(t, []string{"ext:pkg1", "ext:pkg2"}, ctx.ImportedIDs())
	assert.Equal(t, []string{"specVersion", "dataLicense"}, ctx.DefaultNames())

	v, ok := ctx.Default("dataLicense")
	assert.True(t, ok)
	assert.Equal(t, "CC0-1.0", v)
	_, ok = ctx.Default("name")
	assert.False(t, ok, "name is not in the allow-list")
	_, ok = ctx.Default("created")
	assert.False(t, ok, "absent properties are not copied")
}

func TestBuildCustomAllowList(t *testing.T) {
	doc := &document.Document{
		Namespace:  "https://ex.org/",
		Properties: map[string]any{"dataLicense": "CC0-1.0", "profile": []any{"Core"}},
	}

	ctx, err := Build(doc, Options{DefaultProperties: []string{"profile"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"profile"}, ctx.DefaultNames())

	ctx, err = Build(doc, Options{DefaultProperties: []string{}})
	require.NoError(t, err)
	assert.Empty(t, ctx.DefaultNames())
}

func TestBuildMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
	}{
		{
			name: "reference without namespace",
			doc:  &document.Document{References: []document.Reference{{Elements: []string{"a"}}}},
		},
		{
			name: "reference without element list",
			doc:  &document.Document{References: []document.Reference{{Namespace: "ext"}}},
		},
		{
			name: "duplicate prefix",
			doc: &document.Document{NamespaceMap: map[string]string{
				"https://a.org/": "x",
				"https://b.org/": "x",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Build(tt.doc, Options{})
			assert.Nil(t, ctx)
			assert.True(t, errors.Is(err, ErrMalformedContext), "got %v", err)
		})
	}
}

func TestContextIsReadOnly(t *testing.T) {
	ctx := NewContext("https://ex.org/", map[string]string{"spdx": "https://spdx.org/"},
		WithDefaults(map[string]any{"profile": []any{"Core"}}, "profile"))

	ctx.Prefixes()["spdx"] = "https://evil.org/"
	v, _ := ctx.Default("profile")
	v.([]any)[0] = "Changed"
	ctx.Defaults()["profile"] = "x"

	iri, _ := ctx.Prefix("spdx")
	assert.Equal(t, "https://spdx.org/", iri)
	v, _ = ctx.Default("profile")
	assert.Equal(t, []any{"Core"}, v)
}

func TestDiagnostics(t *testing.T) {
	var ds Diagnostics
	assert.NoError(t, ds.Err())

	ds = append(ds,
		Diagnostic{Code: CodeUnresolvedReference, Identifier: "ghost", Element: "e1", Field: "relationship.to[0]", Message: "undefined element"},
		Diagnostic{Code: CodeUnresolvedReference, Identifier: "ghost2", Message: "undefined element"},
	)
	require.Error(t, ds.Err())
	assert.Equal(t, 2, ds.Count(CodeUnresolvedReference))
	assert.Contains(t, ds.Error(), "ghost")
	assert.Contains(t, ds.Error(), "relationship.to[0]")
	assert.Contains(t, ds.Error(), "and 1 more")
}
