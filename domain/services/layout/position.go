package layout

import "math"

// assignCoordinates returns the centre of every vertex on the rank axis and
// the cross axis. The drawing is translated so the real nodes' bounding box
// starts at zero on both axes.
func (g *graph) assignCoordinates(layers [][]int, rankExtent float64, opts Options) (rankPos, crossPos []float64) {
	n := len(g.vertices)
	rankPos = make([]float64, n)
	crossPos = make([]float64, n)
	if n == 0 {
		return rankPos, crossPos
	}

	for i, v := range g.vertices {
		rankPos[i] = float64(v.rank)*(rankExtent+opts.RankSep) + rankExtent/2
	}

	// Pack every layer tightly around zero to start.
	for _, layer := range layers {
		x := 0.0
		for i, v := range layer {
			if i > 0 {
				x += g.separation(layer[i-1], v, opts)
			}
			crossPos[v] = x
		}
		shift := x / 2
		for _, v := range layer {
			crossPos[v] -= shift
		}
	}

	succ := g.successors()
	pred := g.predecessors()
	for it := 0; it < opts.PositionIterations; it++ {
		for r := 1; r < len(layers); r++ {
			g.placeLayer(layers[r], pred, crossPos, opts)
		}
		for r := len(layers) - 2; r >= 0; r-- {
			g.placeLayer(layers[r], succ, crossPos, opts)
		}
	}

	minCross, minRank := math.Inf(1), math.Inf(1)
	for i := 0; i < g.realCount; i++ {
		minCross = math.Min(minCross, crossPos[i]-g.vertices[i].extent/2)
		minRank = math.Min(minRank, rankPos[i]-rankExtent/2)
	}
	for i := range crossPos {
		crossPos[i] -= minCross
		rankPos[i] -= minRank
	}
	return rankPos, crossPos
}

// placeLayer moves each vertex towards the mean cross position of its
// neighbours while keeping the layer order and minimum separations.
//
// A left-to-right pass pushes vertices right of their target when they
// would overlap, a right-to-left pass pushes them left; averaging the two
// keeps every gap at least as wide as required.
func (g *graph) placeLayer(layer []int, neighbours [][]int, crossPos []float64, opts Options) {
	if len(layer) == 0 {
		return
	}

	target := make([]float64, len(layer))
	for i, v := range layer {
		sum, count := 0.0, 0
		for _, w := range neighbours[v] {
			sum += crossPos[w]
			count++
		}
		if count == 0 {
			target[i] = crossPos[v]
			continue
		}
		target[i] = sum / float64(count)
	}

	left := make([]float64, len(layer))
	right := make([]float64, len(layer))

	left[0] = target[0]
	for i := 1; i < len(layer); i++ {
		left[i] = math.Max(target[i], left[i-1]+g.separation(layer[i-1], layer[i], opts))
	}

	last := len(layer) - 1
	right[last] = target[last]
	for i := last - 1; i >= 0; i-- {
		right[i] = math.Min(target[i], right[i+1]-g.separation(layer[i], layer[i+1], opts))
	}

	for i, v := range layer {
		crossPos[v] = (left[i] + right[i]) / 2
	}
}

// separation is the minimum centre distance between two neighbours in a layer.
func (g *graph) separation(a, b int, opts Options) float64 {
	va, vb := g.vertices[a], g.vertices[b]
	gap := opts.NodeSep
	if va.virtual || vb.virtual {
		gap = opts.EdgeSep
	}
	return (va.extent+vb.extent)/2 + gap
}
