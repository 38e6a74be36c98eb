package layout

import (
	"sort"
)

// orderLayers groups vertices by rank and orders each rank to reduce edge
// crossings. The returned layers hold vertex indices left to right.
func (g *graph) orderLayers(iterations int) [][]int {
	layers := g.initialOrder()
	if len(layers) < 2 {
		return layers
	}

	succ := g.successors()
	pred := g.predecessors()

	best := cloneLayers(layers)
	bestCrossings := g.crossings(layers, succ)
	stale := 0

	for i := 0; i < iterations && bestCrossings > 0; i++ {
		if i%2 == 0 {
			for r := 1; r < len(layers); r++ {
				sortByBarycenter(layers[r], layers[r-1], pred)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				sortByBarycenter(layers[r], layers[r+1], succ)
			}
		}

		c := g.crossings(layers, succ)
		if c < bestCrossings {
			best = cloneLayers(layers)
			bestCrossings = c
			stale = 0
			continue
		}
		stale++
		// Two full down/up rounds without improvement.
		if stale >= 4 {
			break
		}
	}
	return best
}

// initialOrder fills each rank by a depth-first walk that starts from the
// lowest-ranked vertices in input order, so connected vertices begin close.
func (g *graph) initialOrder() [][]int {
	if len(g.vertices) == 0 {
		return nil
	}
	layers := make([][]int, g.maxRank()+1)
	succ := g.successors()

	starts := make([]int, len(g.vertices))
	for i := range starts {
		starts[i] = i
	}
	sort.SliceStable(starts, func(a, b int) bool {
		return g.vertices[starts[a]].rank < g.vertices[starts[b]].rank
	})

	visited := make([]bool, len(g.vertices))
	var visit func(v int)
	visit = func(v int) {
		if visited[v] {
			return
		}
		visited[v] = true
		r := g.vertices[v].rank
		layers[r] = append(layers[r], v)
		for _, w := range succ[v] {
			visit(w)
		}
	}
	for _, v := range starts {
		visit(v)
	}
	return layers
}

// sortByBarycenter reorders layer by the mean position of each vertex's
// neighbours in the fixed layer. Vertices without neighbours keep their
// current slot as their weight; ties keep the current order.
func sortByBarycenter(layer, fixed []int, neighbours [][]int) {
	pos := positions(fixed)
	weight := make(map[int]float64, len(layer))
	for i, v := range layer {
		sum, count := 0.0, 0
		for _, w := range neighbours[v] {
			if p, ok := pos[w]; ok {
				sum += float64(p)
				count++
			}
		}
		if count == 0 {
			weight[v] = float64(i)
			continue
		}
		weight[v] = sum / float64(count)
	}
	sort.SliceStable(layer, func(a, b int) bool {
		return weight[layer[a]] < weight[layer[b]]
	})
}

// crossings counts edge crossings between every pair of adjacent ranks.
func (g *graph) crossings(layers [][]int, succ [][]int) int {
	total := 0
	for r := 0; r+1 < len(layers); r++ {
		upper := positions(layers[r])
		lower := positions(layers[r+1])

		type segment struct{ u, l int }
		var segs []segment
		for _, v := range layers[r] {
			for _, w := range succ[v] {
				if l, ok := lower[w]; ok {
					segs = append(segs, segment{u: upper[v], l: l})
				}
			}
		}
		for i := 0; i < len(segs); i++ {
			for j := i + 1; j < len(segs); j++ {
				a, b := segs[i], segs[j]
				if (a.u < b.u && a.l > b.l) || (a.u > b.u && a.l < b.l) {
					total++
				}
			}
		}
	}
	return total
}

// positions maps vertex index to slot within a layer.
func positions(layer []int) map[int]int {
	pos := make(map[int]int, len(layer))
	for i, v := range layer {
		pos[v] = i
	}
	return pos
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, l := range layers {
		out[i] = append([]int(nil), l...)
	}
	return out
}
