package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/infrastructure/persistence/filestore"
)

const conceptGraph = `{
  "nodes": [
    {"id": "a", "label": "Alpha"},
    {"id": "b", "label": "Beta", "details": "second"}
  ],
  "edges": [{"source": "a", "target": "b", "label": "leads to"}]
}`

const incomingGraph = `{
  "nodes": [
    {"id": "b", "label": "Beta v2"},
    {"id": "c", "label": "Gamma"}
  ],
  "edges": [{"source": "b", "target": "c"}]
}`

func init() {
	color.NoColor = true
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeDocument(t *testing.T, data string) *aggregates.CanvasDocument {
	t.Helper()
	var doc aggregates.CanvasDocument
	require.NoError(t, json.Unmarshal([]byte(data), &doc))
	return &doc
}

func nodeByID(doc *aggregates.CanvasDocument, id string) (int, bool) {
	for i, n := range doc.Nodes {
		if n.ID == id {
			return i, true
		}
	}
	return -1, false
}

func TestTransform_WritesLaidOutDocument(t *testing.T) {
	in := writeFile(t, "graph.json", conceptGraph)
	out := filepath.Join(t.TempDir(), "canvas.json")

	res := run(t, "", "transform", in, "--direction", "LR", "--out", out, "--title", "Greek")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Transformed 2 nodes, 1 edges (LR)")
	assert.Contains(t, res.stderr, "Wrote "+out)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := decodeDocument(t, string(data))

	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, aggregates.SchemaVersion, doc.Metadata.Version)
	assert.Equal(t, "Greek", doc.Metadata.Title)
	assert.Equal(t, "e-a-b-0", doc.Edges[0].ID)

	a, _ := nodeByID(doc, "a")
	b, _ := nodeByID(doc, "b")
	assert.Greater(t, doc.Nodes[b].Position.X, doc.Nodes[a].Position.X)
	assert.Equal(t, valueobjects.SideRight, doc.Nodes[a].OutgoingSide)
	assert.True(t, doc.Nodes[a].Data.IsGenerated)
}

func TestTransform_ReadsStdin(t *testing.T) {
	res := run(t, conceptGraph, "transform", "-")
	require.NoError(t, res.err)

	doc := decodeDocument(t, res.stdout)
	assert.Len(t, doc.Nodes, 2)
	assert.Equal(t, aggregates.DefaultTitle, doc.Metadata.Title)
}

func TestTransform_Errors(t *testing.T) {
	t.Run("dangling edge", func(t *testing.T) {
		in := writeFile(t, "graph.json", `{"nodes":[{"id":"a","label":"A"}],"edges":[{"source":"a","target":"ghost"}]}`)
		res := run(t, "", "transform", in)
		assert.Error(t, res.err)
		assert.Empty(t, res.stdout)
	})

	t.Run("not json", func(t *testing.T) {
		in := writeFile(t, "graph.json", "nodes: []")
		res := run(t, "", "transform", in)
		assert.ErrorContains(t, res.err, "invalid concept graph")
	})

	t.Run("unknown direction", func(t *testing.T) {
		in := writeFile(t, "graph.json", conceptGraph)
		res := run(t, "", "transform", in, "--direction", "diagonal")
		assert.ErrorContains(t, res.err, "--direction")
	})

	t.Run("missing argument", func(t *testing.T) {
		res := run(t, "", "transform")
		assert.Error(t, res.err)
	})
}

func TestLayout_RelaysOutExistingDocument(t *testing.T) {
	tb := run(t, conceptGraph, "transform", "-", "--direction", "TB")
	require.NoError(t, tb.err)
	in := writeFile(t, "canvas.json", tb.stdout)

	res := run(t, "", "layout", in, "--direction", "LR")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Laid out 2 nodes, 1 edges (LR)")

	before := decodeDocument(t, tb.stdout)
	after := decodeDocument(t, res.stdout)
	assert.Equal(t, before.Metadata.CreatedAt, after.Metadata.CreatedAt)

	a, _ := nodeByID(after, "a")
	b, _ := nodeByID(after, "b")
	assert.Equal(t, after.Nodes[a].Position.Y, after.Nodes[b].Position.Y)
	assert.Greater(t, after.Nodes[b].Position.X, after.Nodes[a].Position.X)
	assert.Equal(t, valueobjects.SideLeft, after.Nodes[b].IncomingSide)
}

func TestMerge(t *testing.T) {
	base := run(t, conceptGraph, "transform", "-")
	require.NoError(t, base.err)
	basePath := writeFile(t, "base.json", base.stdout)
	incomingPath := writeFile(t, "incoming.json", incomingGraph)

	t.Run("overwrite", func(t *testing.T) {
		res := run(t, "", "merge", basePath, incomingPath)
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "Overwrote 1 nodes: b")
		assert.Contains(t, res.stderr, "Merged into 3 nodes, 2 edges (TB)")

		doc := decodeDocument(t, res.stdout)
		require.Len(t, doc.Nodes, 3)
		b, ok := nodeByID(doc, "b")
		require.True(t, ok)
		assert.Equal(t, "Beta v2", doc.Nodes[b].Data.Label)
	})

	t.Run("reassign", func(t *testing.T) {
		res := run(t, "", "merge", basePath, incomingPath, "--policy", "reassign")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "Renamed b to ")
		assert.NotContains(t, res.stderr, "Overwrote")

		doc := decodeDocument(t, res.stdout)
		assert.Len(t, doc.Nodes, 4)
		assert.Len(t, doc.Edges, 2)
	})

	t.Run("renames print in id order", func(t *testing.T) {
		in := writeFile(t, "collide.json", `{"nodes":[{"id":"b","label":"B2"},{"id":"a","label":"A2"}],"edges":[]}`)
		for i := 0; i < 5; i++ {
			res := run(t, "", "merge", basePath, in, "--policy", "reassign")
			require.NoError(t, res.err)
			first := strings.Index(res.stderr, "Renamed a to ")
			second := strings.Index(res.stderr, "Renamed b to ")
			require.NotEqual(t, -1, first)
			require.NotEqual(t, -1, second)
			assert.Less(t, first, second)
		}
	})

	t.Run("edges may reference the base", func(t *testing.T) {
		in := writeFile(t, "incoming.json", `{"nodes":[{"id":"d","label":"Delta"}],"edges":[{"source":"a","target":"d"}]}`)
		res := run(t, "", "merge", basePath, in)
		require.NoError(t, res.err)
		assert.Len(t, decodeDocument(t, res.stdout).Edges, 2)
	})

	t.Run("bad policy", func(t *testing.T) {
		res := run(t, "", "merge", basePath, incomingPath, "--policy", "keep-both")
		assert.ErrorContains(t, res.err, "--policy")
	})
}

func TestMigrate(t *testing.T) {
	t.Run("unversioned document", func(t *testing.T) {
		in := writeFile(t, "old.json", `{
  "nodes": [
    {"id": "a", "data": {"label": "A"}, "position": {"x": 1, "y": 2}},
    {"data": {"label": "no id"}}
  ],
  "edges": []
}`)
		res := run(t, "", "migrate", in)
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "unversioned -> "+aggregates.SchemaVersion)
		assert.Contains(t, res.stderr, "add document metadata")
		assert.Contains(t, res.stderr, "Dropped 1 unreadable entries")

		doc := decodeDocument(t, res.stdout)
		require.Len(t, doc.Nodes, 1)
		assert.Equal(t, aggregates.SchemaVersion, doc.Metadata.Version)
		assert.Equal(t, 1.0, doc.Nodes[0].Position.X)
	})

	t.Run("missing edges", func(t *testing.T) {
		in := writeFile(t, "bad.json", `{"nodes": []}`)
		res := run(t, "", "migrate", in)
		assert.ErrorIs(t, res.err, filestore.ErrMissingEdges)
	})

	t.Run("missing file", func(t *testing.T) {
		res := run(t, "", "migrate", filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, res.err, os.ErrNotExist)
	})
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("blank text", func(t *testing.T) {
		in := writeFile(t, "notes.txt", "   \n")
		res := run(t, "", "generate", in)
		assert.ErrorContains(t, res.err, "no text")
	})

	t.Run("no api key", func(t *testing.T) {
		res := run(t, "The Greek alphabet has 24 letters.", "generate", "-")
		require.Error(t, res.err)
		assert.Contains(t, res.stderr, "Generating from")
		assert.Empty(t, res.stdout)
	})
}
