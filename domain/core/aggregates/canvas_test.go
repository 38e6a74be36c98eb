package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/domain/core/entities"
	"mindcanvas/pkg/errors"
)

func clock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestNewWelcomeCanvas(t *testing.T) {
	c := NewWelcomeCanvas(clock())

	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "welcome", nodes[0].ID)
	assert.Equal(t, entities.Position{X: 500, Y: 300}, nodes[0].Position)
	assert.Equal(t, SchemaVersion, c.Document().Metadata.Version)
	assert.Equal(t, DefaultTitle, c.Document().Metadata.Title)
}

func TestCanvas_AddUpdateMove(t *testing.T) {
	c := NewCanvas(nil, clock())
	before := c.Document().Metadata.UpdatedAt

	added := c.AddNode("Idea", nil, entities.Position{X: 5, Y: 6})
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, entities.DefaultNodeStyle(), added.Style)
	assert.NotEqual(t, before, c.Document().Metadata.UpdatedAt)

	label, url := "Better idea", "https://example.com"
	updated, err := c.UpdateNodeData(added.ID, NodePatch{Label: &label, URL: &url})
	require.NoError(t, err)
	assert.Equal(t, "Better idea", updated.Data.Label)
	assert.Equal(t, "https://example.com", updated.Data.URL)
	assert.Nil(t, updated.Data.Details)

	styled, err := c.UpdateNodeStyle(added.ID, entities.Style{"background": "#fdd", "boxShadow": nil})
	require.NoError(t, err)
	assert.Equal(t, "#fdd", styled.Style["background"])
	assert.NotContains(t, styled.Style, "boxShadow")

	moved, err := c.MoveNode(added.ID, entities.Position{X: 100, Y: 200})
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 100, Y: 200}, moved.Position)

	_, err = c.MoveNode("missing", entities.Position{})
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)
}

func TestCanvas_ReturnedValuesAreCopies(t *testing.T) {
	c := NewWelcomeCanvas(clock())

	nodes := c.Nodes()
	nodes[0].Data.Label = "mutated"
	nodes[0].Style["background"] = "#000"

	fresh := c.Nodes()
	assert.Equal(t, "Welcome to MindCanvas!", fresh[0].Data.Label)
	assert.Equal(t, "#fff", fresh[0].Style["background"])
}

func TestCanvas_KeepsOwnCopiesOfCallerPointers(t *testing.T) {
	c := NewCanvas(nil, clock())
	details := "original details"
	node := c.AddNode("A", &details, entities.Position{})
	other := c.AddNode("B", nil, entities.Position{})

	label := "relates to"
	_, err := c.ConnectNodes(node.ID, other.ID, &label)
	require.NoError(t, err)

	details = "changed by caller"
	label = "changed by caller"

	doc := c.Document()
	require.NotNil(t, doc.Nodes[0].Data.Details)
	assert.Equal(t, "original details", *doc.Nodes[0].Data.Details)
	require.NotNil(t, doc.Edges[0].Label)
	assert.Equal(t, "relates to", *doc.Edges[0].Label)
}

func TestCanvas_ConnectNodes(t *testing.T) {
	c := NewCanvas(nil, clock())
	a := c.AddNode("A", nil, entities.Position{})
	b := c.AddNode("B", nil, entities.Position{})

	first, err := c.ConnectNodes(a.ID, b.ID, nil)
	require.NoError(t, err)
	second, err := c.ConnectNodes(a.ID, b.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, "e-"+a.ID+"-"+b.ID+"-0", first.ID)
	assert.Equal(t, "e-"+a.ID+"-"+b.ID+"-1", second.ID)
	assert.Equal(t, entities.DefaultEdgeStyle(), first.Style)

	require.NoError(t, c.RemoveEdge(first.ID))
	third, err := c.ConnectNodes(a.ID, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID, "freed ordinal is reused")

	_, err = c.ConnectNodes(a.ID, a.ID, nil)
	assert.ErrorIs(t, err, errors.ErrSelfReferentialEdge)

	_, err = c.ConnectNodes(a.ID, "ghost", nil)
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)

	assert.ErrorIs(t, c.RemoveEdge("nope"), errors.ErrEdgeNotFound)
}

func TestCanvas_RemoveNodeDropsIncidentEdges(t *testing.T) {
	c := NewCanvas(nil, clock())
	a := c.AddNode("A", nil, entities.Position{})
	b := c.AddNode("B", nil, entities.Position{})
	d := c.AddNode("D", nil, entities.Position{})
	_, err := c.ConnectNodes(a.ID, b.ID, nil)
	require.NoError(t, err)
	keep, err := c.ConnectNodes(b.ID, d.ID, nil)
	require.NoError(t, err)
	_, err = c.ConnectNodes(d.ID, a.ID, nil)
	require.NoError(t, err)

	require.NoError(t, c.RemoveNode(a.ID))

	assert.Len(t, c.Nodes(), 2)
	edges := c.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, keep.ID, edges[0].ID)
	assert.ErrorIs(t, c.RemoveNode(a.ID), errors.ErrNodeNotFound)
}

func TestCanvas_Selection(t *testing.T) {
	c := NewCanvas(nil, clock())
	a := c.AddNode("A", nil, entities.Position{})
	b := c.AddNode("B", nil, entities.Position{})

	require.NoError(t, c.SelectNodes([]string{b.ID}))
	selected := c.SelectedNodes()
	require.Len(t, selected, 1)
	assert.Equal(t, b.ID, selected[0].ID)

	err := c.SelectNodes([]string{a.ID, "ghost"})
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)
	assert.Equal(t, b.ID, c.SelectedNodes()[0].ID, "failed select leaves selection alone")

	persisted := c.Document().ForPersistence()
	for _, n := range persisted.Nodes {
		assert.False(t, n.Selected)
	}
	assert.Len(t, c.SelectedNodes(), 1, "persistence copy does not touch live state")
}

func TestCanvas_SetGraphKeepsMetadata(t *testing.T) {
	c := NewCanvas(nil, clock())
	c.SetTitle("Biology")
	created := c.Document().Metadata.CreatedAt

	c.SetGraph([]entities.VisualNode{{ID: "x"}}, nil)

	doc := c.Document()
	assert.Equal(t, "Biology", doc.Metadata.Title)
	assert.Equal(t, created, doc.Metadata.CreatedAt)
	assert.Len(t, doc.Nodes, 1)
	assert.NotNil(t, doc.Edges)

	c.SetTitle("")
	assert.Equal(t, DefaultTitle, c.Document().Metadata.Title)
}
