package layout

import (
	"mindcanvas/domain/core/entities"
)

// vertex is a layout node. Vertices [0, realCount) mirror the input nodes
// in order; the rest are virtual points on long edges.
type vertex struct {
	rank    int
	extent  float64 // size along the cross axis
	virtual bool
}

// arc is a directed edge between vertex indices.
type arc struct {
	from, to int
}

// graph is the working structure the layout phases mutate in turn.
type graph struct {
	vertices  []vertex
	realCount int
	arcs      []arc
}

// buildGraph indexes nodes by position and keeps only arcs whose endpoints
// both exist. Self loops carry no ranking information and are dropped.
func buildGraph(nodes []entities.VisualNode, edges []entities.VisualEdge, extent float64) *graph {
	g := &graph{
		vertices:  make([]vertex, len(nodes)),
		realCount: len(nodes),
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		g.vertices[i] = vertex{extent: extent}
		// A repeated id resolves to its first occurrence.
		if _, ok := index[n.ID]; !ok {
			index[n.ID] = i
		}
	}

	for _, e := range edges {
		from, okFrom := index[e.Source]
		to, okTo := index[e.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		g.arcs = append(g.arcs, arc{from: from, to: to})
	}
	return g
}

// successors returns adjacency lists in arc order.
func (g *graph) successors() [][]int {
	succ := make([][]int, len(g.vertices))
	for _, a := range g.arcs {
		succ[a.from] = append(succ[a.from], a.to)
	}
	return succ
}

// predecessors returns reverse adjacency lists in arc order.
func (g *graph) predecessors() [][]int {
	pred := make([][]int, len(g.vertices))
	for _, a := range g.arcs {
		pred[a.to] = append(pred[a.to], a.from)
	}
	return pred
}

// breakCycles reverses every arc that closes a cycle in a depth-first
// traversal started from each vertex in input order.
func (g *graph) breakCycles() {
	const (
		unvisited = iota
		onStack
		done
	)

	outArcs := make([][]int, len(g.vertices))
	for i, a := range g.arcs {
		outArcs[a.from] = append(outArcs[a.from], i)
	}

	state := make([]int, len(g.vertices))
	var visit func(v int)
	visit = func(v int) {
		state[v] = onStack
		for _, ai := range outArcs[v] {
			w := g.arcs[ai].to
			switch state[w] {
			case onStack:
				g.arcs[ai] = arc{from: w, to: v}
			case unvisited:
				visit(w)
			}
		}
		state[v] = done
	}

	for v := range g.vertices {
		if state[v] == unvisited {
			visit(v)
		}
	}
}

// assignRanks gives each vertex the length of the longest path reaching
// it, then moves sources down to sit directly above their nearest child.
// The graph must be acyclic.
func (g *graph) assignRanks() {
	n := len(g.vertices)
	succ := g.successors()
	indegree := make([]int, n)
	for _, a := range g.arcs {
		indegree[a.to]++
	}

	// Kahn's algorithm; the queue is seeded in input order.
	topo := make([]int, 0, n)
	remaining := append([]int(nil), indegree...)
	for v := 0; v < n; v++ {
		if remaining[v] == 0 {
			topo = append(topo, v)
		}
	}
	for head := 0; head < len(topo); head++ {
		v := topo[head]
		for _, w := range succ[v] {
			remaining[w]--
			if remaining[w] == 0 {
				topo = append(topo, w)
			}
		}
	}

	for _, v := range topo {
		for _, w := range succ[v] {
			if r := g.vertices[v].rank + 1; r > g.vertices[w].rank {
				g.vertices[w].rank = r
			}
		}
	}

	for i := len(topo) - 1; i >= 0; i-- {
		v := topo[i]
		if indegree[v] != 0 || len(succ[v]) == 0 {
			continue
		}
		tightest := -1
		for _, w := range succ[v] {
			if tightest < 0 || g.vertices[w].rank < tightest {
				tightest = g.vertices[w].rank
			}
		}
		g.vertices[v].rank = tightest - 1
	}

	g.normalizeRanks()
}

// normalizeRanks shifts ranks so the smallest is zero.
func (g *graph) normalizeRanks() {
	if len(g.vertices) == 0 {
		return
	}
	lowest := g.vertices[0].rank
	for _, v := range g.vertices {
		if v.rank < lowest {
			lowest = v.rank
		}
	}
	for i := range g.vertices {
		g.vertices[i].rank -= lowest
	}
}

// splitLongEdges replaces every arc spanning more than one rank with a
// chain of virtual vertices, one per intermediate rank.
func (g *graph) splitLongEdges() {
	arcs := make([]arc, 0, len(g.arcs))
	for _, a := range g.arcs {
		span := g.vertices[a.to].rank - g.vertices[a.from].rank
		if span <= 1 {
			arcs = append(arcs, a)
			continue
		}
		prev := a.from
		for r := g.vertices[a.from].rank + 1; r < g.vertices[a.to].rank; r++ {
			g.vertices = append(g.vertices, vertex{rank: r, virtual: true})
			v := len(g.vertices) - 1
			arcs = append(arcs, arc{from: prev, to: v})
			prev = v
		}
		arcs = append(arcs, arc{from: prev, to: a.to})
	}
	g.arcs = arcs
}

// maxRank returns the highest rank in use, or -1 for an empty graph.
func (g *graph) maxRank() int {
	highest := -1
	for _, v := range g.vertices {
		if v.rank > highest {
			highest = v.rank
		}
	}
	return highest
}
