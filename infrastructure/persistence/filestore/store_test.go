package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/entities"
	"mindcanvas/infrastructure/persistence/schema"
)

var now = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func sampleDoc() *aggregates.CanvasDocument {
	label := "leads to"
	return aggregates.NewCanvasDocument(
		[]entities.VisualNode{
			{ID: "a", Type: entities.NodeType, Data: entities.NodeData{Label: "A"}, Style: entities.DefaultNodeStyle(), Selected: true},
			{ID: "b", Type: entities.NodeType, Data: entities.NodeData{Label: "B"}, Position: entities.Position{X: 250}},
		},
		[]entities.VisualEdge{{ID: "e-a-b-0", Source: "a", Target: "b", Label: &label, Animated: true}},
		"Sample",
		now,
	)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "state"), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ports.ErrNoAutosave)

	require.NoError(t, s.Save(ctx, sampleDoc()))
	assert.FileExists(t, s.Path())

	data, err := s.Load(ctx)
	require.NoError(t, err)
	doc, err := schema.NewMigrator(zaptest.NewLogger(t)).MigrateJSON(data)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Edges, 1)
	assert.False(t, doc.Nodes[0].Selected)
	assert.Equal(t, "Sample", doc.Metadata.Title)

	require.NoError(t, s.Clear(ctx))
	assert.NoFileExists(t, s.Path())
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
}

func TestStore_SkipsUnchangedContent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	doc := sampleDoc()

	require.NoError(t, s.Save(ctx, doc))
	stamp := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(s.Path(), stamp, stamp))

	require.NoError(t, s.Save(ctx, doc))
	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp), "unchanged document is not rewritten")

	doc.Metadata.Title = "Renamed"
	require.NoError(t, s.Save(ctx, doc))
	info, err = os.Stat(s.Path())
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(stamp))
}

func TestStore_CorruptFileIsNoAutosave(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.Load(context.Background())

	assert.ErrorIs(t, err, ports.ErrNoAutosave)
}

func TestStore_LeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(context.Background(), sampleDoc()))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, AutosaveFile, entries[0].Name())
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, newStore(t).Save(ctx, sampleDoc()), context.Canceled)
}

func TestStore_SelectionDoesNotTriggerWrite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleDoc()))
	require.NoError(t, os.WriteFile(s.Path(), []byte("marker"), 0o644))

	unselected := sampleDoc()
	unselected.Nodes[0].Selected = false
	require.NoError(t, s.Save(ctx, unselected))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "marker", string(data), "selection alone does not trigger a write")

	unselected.Nodes[1].Data.Label = "changed"
	require.NoError(t, s.Save(ctx, unselected))

	data, err = os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"changed"`)
}

func TestExportImportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := sampleDoc()

	require.NoError(t, Export(&buf, original))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"nodes\""), "export is indented")

	out, err := Import(&buf, schema.NewMigrator(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Len(t, out.Document.Nodes, len(original.Nodes))
	assert.Len(t, out.Document.Edges, len(original.Edges))
	assert.Equal(t, original.Metadata, out.Document.Metadata)
	assert.Empty(t, out.Steps)
}

func TestImportExport_KeepsRendererKeys(t *testing.T) {
	in := `{"nodes":[{"id":"a","data":{"label":"A"},"position":{"x":0,"y":0},"measured":{"width":210}}],` +
		`"edges":[{"id":"e","source":"a","target":"a","markerEnd":"arrow"}],"metadata":{"version":"1.0"}}`

	out, err := Import(strings.NewReader(in), schema.NewMigrator(zaptest.NewLogger(t)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, out.Document))
	assert.Contains(t, buf.String(), `"measured": {`)
	assert.Contains(t, buf.String(), `"markerEnd": "arrow"`)
}

func TestImport_ShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		message string
	}{
		{name: "not json", input: "nope", wantErr: ErrInvalidJSON, message: "Invalid JSON file"},
		{name: "missing nodes", input: `{"edges": []}`, wantErr: ErrMissingNodes, message: "Invalid file: missing nodes array"},
		{name: "nodes not array", input: `{"nodes": {}, "edges": []}`, wantErr: ErrMissingNodes},
		{name: "missing edges", input: `{"nodes": []}`, wantErr: ErrMissingEdges, message: "Invalid file: missing edges array"},
		{name: "top level array", input: `[]`, wantErr: ErrMissingNodes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.input), schema.NewMigrator(zaptest.NewLogger(t)))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestImport_LegacyFileIsMigrated(t *testing.T) {
	legacy := map[string]any{
		"nodes": []any{map[string]any{"id": "n1", "data": map[string]any{"label": "Old"}, "position": map[string]any{"x": 1, "y": 1}}},
		"edges": []any{},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)

	out, err := Import(bytes.NewReader(data), schema.NewMigrator(zaptest.NewLogger(t)))

	require.NoError(t, err)
	assert.Equal(t, aggregates.SchemaVersion, out.Document.Metadata.Version)
	assert.Equal(t, aggregates.DefaultTitle, out.Document.Metadata.Title)
	assert.Len(t, out.Steps, 1)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "mindcanvas-1717230600000.json", ExportFilename(now))
}
