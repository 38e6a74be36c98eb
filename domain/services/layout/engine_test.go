package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
)

func node(id string) entities.VisualNode {
	return entities.VisualNode{ID: id, Type: entities.NodeType, Data: entities.NodeData{Label: id}}
}

func edge(source, target string) entities.VisualEdge {
	return entities.VisualEdge{ID: valueobjects.EdgeID(source, target, 0), Source: source, Target: target}
}

func byID(nodes []entities.VisualNode) map[string]entities.VisualNode {
	m := make(map[string]entities.VisualNode, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

// assertNoOverlap checks that no two node boxes intersect.
func assertNoOverlap(t *testing.T, nodes []entities.VisualNode, opts Options) {
	t.Helper()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i].Position, nodes[j].Position
			overlapX := a.X < b.X+opts.NodeWidth && b.X < a.X+opts.NodeWidth
			overlapY := a.Y < b.Y+opts.NodeHeight && b.Y < a.Y+opts.NodeHeight
			assert.False(t, overlapX && overlapY, "nodes %s and %s overlap: %+v %+v", nodes[i].ID, nodes[j].ID, a, b)
		}
	}
}

func TestLayout_EmptyGraph(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result := engine.Layout(nil, nil, valueobjects.TopToBottom)

	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)
}

func TestLayout_SingleNodeAtOrigin(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result := engine.Layout([]entities.VisualNode{node("only")}, nil, valueobjects.TopToBottom)

	require.Len(t, result.Nodes, 1)
	assert.Equal(t, entities.Position{X: 0, Y: 0}, result.Nodes[0].Position)
}

func TestLayout_ParentChild(t *testing.T) {
	opts := DefaultOptions()
	engine := NewEngine(opts)
	nodes := []entities.VisualNode{node("n1"), node("n2")}
	edges := []entities.VisualEdge{edge("n1", "n2")}

	t.Run("top to bottom", func(t *testing.T) {
		result := engine.Layout(nodes, edges, valueobjects.TopToBottom)
		got := byID(result.Nodes)

		assert.GreaterOrEqual(t, got["n2"].Position.Y-got["n1"].Position.Y, opts.NodeHeight)
		assert.Equal(t, got["n1"].Position.X, got["n2"].Position.X)
		assertNoOverlap(t, result.Nodes, opts)
	})

	t.Run("left to right", func(t *testing.T) {
		result := engine.Layout(nodes, edges, valueobjects.LeftToRight)
		got := byID(result.Nodes)

		assert.GreaterOrEqual(t, got["n2"].Position.X-got["n1"].Position.X, opts.NodeWidth)
		assert.Equal(t, got["n1"].Position.Y, got["n2"].Position.Y)
		assertNoOverlap(t, result.Nodes, opts)
	})
}

func TestLayout_StoresTopLeftCorner(t *testing.T) {
	opts := DefaultOptions()
	engine := NewEngine(opts)

	result := engine.Layout([]entities.VisualNode{node("a"), node("b")}, []entities.VisualEdge{edge("a", "b")}, valueobjects.TopToBottom)
	got := byID(result.Nodes)

	// Rank 1 centre sits one box plus one gap below rank 0's centre.
	assert.Equal(t, 0.0, got["a"].Position.Y)
	assert.Equal(t, opts.NodeHeight+opts.RankSep, got["b"].Position.Y)
}

func TestLayout_ConnectionSides(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	nodes := []entities.VisualNode{node("a"), node("b")}

	tb := engine.Layout(nodes, nil, valueobjects.TopToBottom)
	for _, n := range tb.Nodes {
		assert.Equal(t, valueobjects.SideTop, n.IncomingSide)
		assert.Equal(t, valueobjects.SideBottom, n.OutgoingSide)
	}

	lr := engine.Layout(nodes, nil, valueobjects.LeftToRight)
	for _, n := range lr.Nodes {
		assert.Equal(t, valueobjects.SideLeft, n.IncomingSide)
		assert.Equal(t, valueobjects.SideRight, n.OutgoingSide)
	}

	defaulted := engine.Layout(nodes, nil, "")
	assert.Equal(t, valueobjects.SideTop, defaulted.Nodes[0].IncomingSide)
}

func TestLayout_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	nodes := []entities.VisualNode{node("root"), node("a"), node("b"), node("c"), node("d"), node("e"), node("f")}
	edges := []entities.VisualEdge{
		edge("root", "a"), edge("root", "b"), edge("root", "c"),
		edge("a", "d"), edge("c", "d"), edge("b", "e"), edge("root", "f"), edge("f", "a"),
	}

	first := engine.Layout(nodes, edges, valueobjects.TopToBottom)
	for i := 0; i < 20; i++ {
		again := engine.Layout(nodes, edges, valueobjects.TopToBottom)
		assert.Equal(t, first, again, "run %d differs", i)
	}
}

func TestLayout_ToleratesCycles(t *testing.T) {
	opts := DefaultOptions()
	engine := NewEngine(opts)
	nodes := []entities.VisualNode{node("a"), node("b"), node("c")}
	edges := []entities.VisualEdge{edge("a", "b"), edge("b", "c"), edge("c", "a")}

	result := engine.Layout(nodes, edges, valueobjects.TopToBottom)

	require.Len(t, result.Nodes, 3)
	got := byID(result.Nodes)
	// The back edge c->a is reversed, leaving the chain a, b, c.
	assert.Less(t, got["a"].Position.Y, got["b"].Position.Y)
	assert.Less(t, got["b"].Position.Y, got["c"].Position.Y)
	assertNoOverlap(t, result.Nodes, opts)
}

func TestLayout_IgnoresDanglingEdgesAndSelfLoops(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	nodes := []entities.VisualNode{node("a"), node("b")}
	edges := []entities.VisualEdge{edge("a", "ghost"), edge("a", "a"), edge("ghost", "b")}

	result := engine.Layout(nodes, edges, valueobjects.TopToBottom)

	require.Len(t, result.Nodes, 2)
	assert.Equal(t, edges, result.Edges, "edges pass through unchanged")
	got := byID(result.Nodes)
	assert.Equal(t, got["a"].Position.Y, got["b"].Position.Y, "no usable edge, both on rank 0")
}

func TestLayout_DisconnectedComponents(t *testing.T) {
	opts := DefaultOptions()
	engine := NewEngine(opts)
	nodes := []entities.VisualNode{node("a"), node("b"), node("x"), node("y"), node("lonely")}
	edges := []entities.VisualEdge{edge("a", "b"), edge("x", "y")}

	result := engine.Layout(nodes, edges, valueobjects.TopToBottom)

	assertNoOverlap(t, result.Nodes, opts)
	got := byID(result.Nodes)
	assert.Greater(t, got["b"].Position.Y, got["a"].Position.Y)
	assert.Greater(t, got["y"].Position.Y, got["x"].Position.Y)
}

func TestLayout_LongEdgesAndWideGraphDoNotOverlap(t *testing.T) {
	opts := DefaultOptions()
	engine := NewEngine(opts)

	var nodes []entities.VisualNode
	var edges []entities.VisualEdge
	for i := 0; i < 12; i++ {
		nodes = append(nodes, node(fmt.Sprintf("n%d", i)))
	}
	for i := 1; i < 12; i++ {
		edges = append(edges, edge(fmt.Sprintf("n%d", (i-1)/3), fmt.Sprintf("n%d", i)))
	}
	// Skip-level edges force virtual vertices.
	edges = append(edges, edge("n0", "n11"), edge("n1", "n10"))

	for _, dir := range []valueobjects.Direction{valueobjects.TopToBottom, valueobjects.LeftToRight} {
		result := engine.Layout(nodes, edges, dir)
		require.Len(t, result.Nodes, len(nodes))
		assertNoOverlap(t, result.Nodes, opts)
	}
}

func TestLayout_BoundingBoxStartsAtOrigin(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	nodes := []entities.VisualNode{node("r"), node("a"), node("b"), node("c")}
	edges := []entities.VisualEdge{edge("r", "a"), edge("r", "b"), edge("r", "c")}

	result := engine.Layout(nodes, edges, valueobjects.TopToBottom)

	minX, minY := result.Nodes[0].Position.X, result.Nodes[0].Position.Y
	for _, n := range result.Nodes {
		minX = min(minX, n.Position.X)
		minY = min(minY, n.Position.Y)
	}
	assert.Equal(t, 0.0, minX)
	assert.Equal(t, 0.0, minY)
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	nodes := []entities.VisualNode{node("a"), node("b")}
	nodes[0].Position = entities.Position{X: 999, Y: 999}
	edges := []entities.VisualEdge{edge("a", "b")}

	engine.Layout(nodes, edges, valueobjects.TopToBottom)

	assert.Equal(t, entities.Position{X: 999, Y: 999}, nodes[0].Position)
	assert.Empty(t, nodes[0].IncomingSide)
}

func TestLayout_ZeroOptionsUseDefaults(t *testing.T) {
	engine := NewEngine(Options{})

	assert.Equal(t, DefaultOptions(), engine.Options())
}

func TestSortByBarycenterRemovesCrossing(t *testing.T) {
	g := &graph{
		vertices:  []vertex{{rank: 0}, {rank: 0}, {rank: 1}, {rank: 1}},
		realCount: 4,
		arcs:      []arc{{from: 0, to: 2}, {from: 1, to: 3}},
	}
	layers := [][]int{{0, 1}, {3, 2}}
	succ := g.successors()
	require.Equal(t, 1, g.crossings(layers, succ))

	sortByBarycenter(layers[1], layers[0], g.predecessors())

	assert.Equal(t, []int{2, 3}, layers[1])
	assert.Equal(t, 0, g.crossings(layers, succ))
}

func TestAssignRanks_PullsSourcesTowardChildren(t *testing.T) {
	// a -> b -> c and d -> c: d belongs directly above c, not on rank 0.
	nodes := []entities.VisualNode{node("a"), node("b"), node("c"), node("d")}
	edges := []entities.VisualEdge{edge("a", "b"), edge("b", "c"), edge("d", "c")}

	g := buildGraph(nodes, edges, 200)
	g.breakCycles()
	g.assignRanks()

	assert.Equal(t, []int{0, 1, 2, 1}, []int{g.vertices[0].rank, g.vertices[1].rank, g.vertices[2].rank, g.vertices[3].rank})
}
