package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/transform"
)

func newMerger(policy Policy) *Merger {
	return NewMerger(layout.NewEngine(layout.DefaultOptions()), Options{Direction: valueobjects.TopToBottom, Policy: policy})
}

func visual(id, label string) entities.VisualNode {
	return transform.ToVisualNode(entities.ConceptNode{ID: id, Label: label})
}

func link(source, target string, index int) entities.VisualEdge {
	return transform.ToVisualEdge(entities.ConceptEdge{Source: source, Target: target}, index)
}

func ids(nodes []entities.VisualNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestMerge_LaterValueWinsAtFirstSlot(t *testing.T) {
	m := newMerger(PolicyOverwrite)
	existing := []entities.VisualNode{visual("n1", "A"), visual("n2", "Other")}
	incoming := []entities.VisualNode{visual("n3", "New"), visual("n1", "B")}

	result := m.Merge(existing, nil, incoming, nil)

	require.Equal(t, []string{"n1", "n2", "n3"}, ids(result.Nodes))
	assert.Equal(t, "B", result.Nodes[0].Data.Label)
}

func TestMerge_UniqueIDs(t *testing.T) {
	m := newMerger(PolicyOverwrite)
	existing := []entities.VisualNode{visual("a", "A"), visual("b", "B")}
	existingEdges := []entities.VisualEdge{link("a", "b", 0)}
	incoming := []entities.VisualNode{visual("b", "B2"), visual("c", "C"), visual("a", "A2")}
	incomingEdges := []entities.VisualEdge{link("a", "b", 0), link("b", "c", 1)}

	result, report := m.MergeWithReport(existing, existingEdges, incoming, incomingEdges)

	nodeSeen := map[string]bool{}
	for _, n := range result.Nodes {
		assert.False(t, nodeSeen[n.ID], "duplicate node %s", n.ID)
		nodeSeen[n.ID] = true
	}
	edgeSeen := map[string]bool{}
	for _, e := range result.Edges {
		assert.False(t, edgeSeen[e.ID], "duplicate edge %s", e.ID)
		edgeSeen[e.ID] = true
	}
	assert.Len(t, result.Nodes, 3)
	assert.Len(t, result.Edges, 2)
	assert.Equal(t, []string{"b", "a"}, report.NodeCollisions)
	assert.Equal(t, []string{"e-a-b-0"}, report.EdgeCollisions)
	assert.True(t, report.HasCollisions())
}

func TestMerge_EmptyExistingLaysOutIncoming(t *testing.T) {
	m := newMerger(PolicyOverwrite)
	incoming := []entities.VisualNode{visual("x", "X"), visual("y", "Y"), visual("z", "Z")}

	result, report := m.MergeWithReport(nil, nil, incoming, nil)

	require.Len(t, result.Nodes, 3)
	assert.False(t, report.HasCollisions())
	seen := map[entities.Position]bool{}
	for _, n := range result.Nodes {
		assert.False(t, seen[n.Position], "position %+v reused", n.Position)
		seen[n.Position] = true
	}
}

func TestMerge_RelaysOutExistingNodes(t *testing.T) {
	m := newMerger(PolicyOverwrite)
	root := visual("root", "Root")
	root.Position = entities.Position{X: 4000, Y: 4000}

	result := m.Merge([]entities.VisualNode{root}, nil,
		[]entities.VisualNode{visual("child", "Child")},
		[]entities.VisualEdge{link("root", "child", 0)})

	byID := map[string]entities.VisualNode{}
	for _, n := range result.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, entities.Position{X: 0, Y: 0}, byID["root"].Position)
	assert.Greater(t, byID["child"].Position.Y, byID["root"].Position.Y)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	m := newMerger(PolicyReassign)
	existing := []entities.VisualNode{visual("a", "A")}
	incoming := []entities.VisualNode{visual("a", "A again")}
	incomingEdges := []entities.VisualEdge{link("a", "a", 0)}

	m.Merge(existing, nil, incoming, incomingEdges)

	assert.Equal(t, "a", incoming[0].ID)
	assert.Equal(t, "e-a-a-0", incomingEdges[0].ID)
	assert.Equal(t, entities.Position{}, existing[0].Position)
}

func TestMerge_ReassignPolicy(t *testing.T) {
	m := newMerger(PolicyReassign)
	existing := []entities.VisualNode{visual("n1", "Original"), visual("n1-2", "Taken suffix")}
	incoming := []entities.VisualNode{visual("n1", "Clash"), visual("n9", "Fresh")}
	incomingEdges := []entities.VisualEdge{link("n9", "n1", 0)}

	result, report := m.MergeWithReport(existing, nil, incoming, incomingEdges)

	require.Equal(t, []string{"n1", "n1-2", "n1-3", "n9"}, ids(result.Nodes))
	assert.Equal(t, "Original", result.Nodes[0].Data.Label)
	assert.Equal(t, "Clash", result.Nodes[2].Data.Label)
	assert.Equal(t, map[string]string{"n1": "n1-3"}, report.Reassigned)
	assert.Empty(t, report.NodeCollisions)

	require.Len(t, result.Edges, 1)
	assert.Equal(t, "n1-3", result.Edges[0].Target)
	assert.Equal(t, "e-n9-n1-3-0", result.Edges[0].ID)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyOverwrite},
		{in: "overwrite", want: PolicyOverwrite},
		{in: "reassign", want: PolicyReassign},
		{in: "merge-fields", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithDirection(t *testing.T) {
	m := newMerger(PolicyOverwrite).WithDirection(valueobjects.LeftToRight)

	result := m.Merge(nil, nil, []entities.VisualNode{visual("a", "A")}, nil)

	assert.Equal(t, valueobjects.LeftToRight, m.Direction())
	assert.Equal(t, valueobjects.SideLeft, result.Nodes[0].IncomingSide)
}
