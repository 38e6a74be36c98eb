// Package layout assigns canvas positions to nodes with a layered
// (Sugiyama-style) drawing algorithm.
//
// The pipeline runs in fixed phases:
//   - cycle breaking (back edges found by DFS are reversed)
//   - rank assignment (longest path, sources pulled towards their children)
//   - long-edge splitting with virtual nodes
//   - crossing minimisation (barycenter sweeps)
//   - coordinate assignment
//
// Every node is treated as a box of the same configured size. Output is a
// pure function of the input slices and their order.
package layout

import (
	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
)

// Options controls node box size and spacing.
type Options struct {
	NodeWidth  float64 `yaml:"node_width" json:"nodeWidth"`
	NodeHeight float64 `yaml:"node_height" json:"nodeHeight"`
	// NodeSep is the gap between neighbouring nodes in the same rank.
	NodeSep float64 `yaml:"node_sep" json:"nodeSep"`
	// RankSep is the gap between consecutive ranks.
	RankSep float64 `yaml:"rank_sep" json:"rankSep"`
	// EdgeSep is the gap next to the virtual points of long edges.
	EdgeSep float64 `yaml:"edge_sep" json:"edgeSep"`
	// OrderIterations bounds the crossing minimisation sweeps.
	OrderIterations int `yaml:"order_iterations" json:"orderIterations"`
	// PositionIterations bounds the coordinate balancing sweeps.
	PositionIterations int `yaml:"position_iterations" json:"positionIterations"`
}

// DefaultOptions returns the stock 200x100 node box with 50px gaps.
func DefaultOptions() Options {
	return Options{
		NodeWidth:          200,
		NodeHeight:         100,
		NodeSep:            50,
		RankSep:            50,
		EdgeSep:            10,
		OrderIterations:    24,
		PositionIterations: 8,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.EdgeSep <= 0 {
		o.EdgeSep = d.EdgeSep
	}
	if o.OrderIterations <= 0 {
		o.OrderIterations = d.OrderIterations
	}
	if o.PositionIterations <= 0 {
		o.PositionIterations = d.PositionIterations
	}
	return o
}

// Result is a laid-out graph.
type Result struct {
	Nodes []entities.VisualNode `json:"nodes"`
	Edges []entities.VisualEdge `json:"edges"`
}

// Engine lays out canvas graphs. It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine creates an engine. Zero option fields take their defaults.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Layout positions every node and sets its connection sides for direction.
// Edges are returned unchanged. Edges with an unknown endpoint and self
// loops are ignored for placement; cycles are tolerated.
func (e *Engine) Layout(nodes []entities.VisualNode, edges []entities.VisualEdge, direction valueobjects.Direction) Result {
	if direction == "" {
		direction = valueobjects.DefaultDirection
	}

	// Ranks advance along the rank axis; order within a rank along the cross axis.
	rankExtent, crossExtent := e.opts.NodeHeight, e.opts.NodeWidth
	if direction.IsHorizontal() {
		rankExtent, crossExtent = e.opts.NodeWidth, e.opts.NodeHeight
	}

	g := buildGraph(nodes, edges, crossExtent)
	g.breakCycles()
	g.assignRanks()
	g.splitLongEdges()
	layers := g.orderLayers(e.opts.OrderIterations)
	rankPos, crossPos := g.assignCoordinates(layers, rankExtent, e.opts)

	incoming, outgoing := direction.ConnectionSides()
	out := entities.CloneNodes(nodes)
	for i := range out {
		r, c := rankPos[i], crossPos[i]
		if direction.IsHorizontal() {
			out[i].Position = entities.Position{
				X: r - e.opts.NodeWidth/2,
				Y: c - e.opts.NodeHeight/2,
			}
		} else {
			out[i].Position = entities.Position{
				X: c - e.opts.NodeWidth/2,
				Y: r - e.opts.NodeHeight/2,
			}
		}
		out[i].IncomingSide = incoming
		out[i].OutgoingSide = outgoing
	}

	return Result{Nodes: out, Edges: entities.CloneEdges(edges)}
}
