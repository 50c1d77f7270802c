package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/spdxld/export"
	"github.com/c360studio/spdxld/resolver"
)

const exampleDoc = `{
  "namespace": "https://ex.org/",
  "namespaceMap": {"https://spdx.org/": "spdx"},
  "specVersion": "3.0",
  "created": {"by": ["alice"], "when": "2022-02-14T12:00:00Z"},
  "dataLicense": "CC0-1.0",
  "elements": [
    {"id": "doc", "type": {"sbom": {"elements": ["e1", "alice"]}}, "name": "Example"},
    {"id": "e1", "type": {"relationship": {"from": "e1", "to": ["spdx:e2"]}}},
    {"id": "alice", "type": {"person": {}}}
  ]
}`

const danglingDoc = `{
  "namespace": "https://ex.org/",
  "elements": [
    {"id": "doc", "type": {"bom": {"elements": ["ghost"]}}}
  ]
}`

// isolate runs the test in an empty working directory with an empty home,
// so no user or project config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "spdxld version "+Version+" (build: "+BuildTime+")\n", out)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		info  bool
		warn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"WARN", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(&bytes.Buffer{}, tt.level)
			ctx := t.Context()
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.info {
				t.Errorf("info enabled = %v, want %v", got, tt.info)
			}
			if got := logger.Enabled(ctx, slog.LevelWarn); got != tt.warn {
				t.Errorf("warn enabled = %v, want %v", got, tt.warn)
			}
		})
	}
}

func TestExpandCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.json"), exampleDoc)

	out, err := execute(t, "expand", path)
	require.NoError(t, err)

	var elements []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &elements))
	require.Len(t, elements, 3)
	assert.Equal(t, "https://ex.org/doc", elements[0]["id"])
	assert.Equal(t, "CC0-1.0", elements[0]["dataLicense"])
	assert.Equal(t, map[string]any{
		"relationship": map[string]any{"from": "https://ex.org/e1", "to": []any{"https://spdx.org/e2"}},
	}, elements[1]["type"])
}

func TestExpandCommandStrict(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.json"), danglingDoc)

	_, err := execute(t, "expand", path)
	require.NoError(t, err)

	out, err := execute(t, "expand", "--strict", "--format", "yaml", path)
	var diags resolver.Diagnostics
	require.True(t, errors.As(err, &diags), "got %v", err)
	require.Len(t, diags, 1)
	assert.Equal(t, "ghost", diags[0].Identifier)
	assert.Contains(t, out, "id: https://ex.org/doc")
}

func TestExpandCommandOutputFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.yaml"), "namespace: https://ex.org/\nelements:\n  - id: a\n    type: {person: {}}\n")
	target := filepath.Join(dir, "expanded.json")

	out, err := execute(t, "expand", "-o", target, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "https://ex.org/a", "type": {"person": {}}}]`, string(data))
}

func TestCompactCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.json"), exampleDoc)

	out, err := execute(t, "compact", path)
	require.NoError(t, err)

	var got, want map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NoError(t, json.Unmarshal([]byte(exampleDoc), &want))
	assert.Equal(t, want, got)
}

func TestGraphCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.json"), exampleDoc)

	out, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph G {\n"), out)
	assert.Contains(t, out, "n1 [label=\"doc\\nExample\"]\n")
	assert.Contains(t, out, "  n1 -> n2\n")
	assert.Contains(t, out, "  n1 -> n3\n")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestExportCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "doc.json"), exampleDoc)

	t.Run("turtle by default", func(t *testing.T) {
		out, err := execute(t, "export", path)
		require.NoError(t, err)
		assert.Contains(t, out, "<https://ex.org/doc>\n    a <https://spdx.org/rdf/v3/Sbom> ;")
	})

	t.Run("ntriples", func(t *testing.T) {
		out, err := execute(t, "export", "--format", "ntriples", path)
		require.NoError(t, err)
		assert.Contains(t, out, "<https://ex.org/e1> <https://spdx.org/rdf/v3/to> <https://spdx.org/e2> .\n")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "export", "--format", "html", path)
		assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
	})
}

func TestTranslateCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "v2.json"), `{
  "SPDXID": "SPDXRef-DOCUMENT",
  "spdxVersion": "SPDX-2.3",
  "name": "example",
  "dataLicense": "CC0-1.0",
  "documentNamespace": "https://ex.org/spdxdocs/example",
  "creationInfo": {"created": "2010-01-29T18:30:22Z", "creators": ["Tool: example"]}
}`)

	out, err := execute(t, "translate", path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://ex.org/spdxdocs/example#", doc["namespace"])
	assert.Equal(t, "SPDX-2.3", doc["specVersion"])
	assert.Equal(t, []any{
		map[string]any{"id": "SPDXRef-DOCUMENT", "type": map[string]any{"sbom": map[string]any{}}, "name": "example"},
	}, doc["elements"])
}

func TestStoreRequiresURL(t *testing.T) {
	isolate(t)

	_, err := execute(t, "store", "list")
	assert.ErrorIs(t, err, errStorageDisabled)
}

func TestExplicitConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "--config", filepath.Join(dir, "missing.yaml"), "graph", "doc.json")
	assert.Error(t, err)
}
