// Package transform turns concept graphs returned by the generation service
// into canvas nodes and edges.
package transform

import (
	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/layout"
)

// Transform converts a concept graph into unpositioned canvas elements.
// Nodes start at the origin; edge endpoints are not checked here.
func Transform(graph entities.ConceptGraph) ([]entities.VisualNode, []entities.VisualEdge) {
	nodes := make([]entities.VisualNode, 0, len(graph.Nodes))
	for _, cn := range graph.Nodes {
		nodes = append(nodes, ToVisualNode(cn))
	}

	edges := make([]entities.VisualEdge, 0, len(graph.Edges))
	for i, ce := range graph.Edges {
		edges = append(edges, ToVisualEdge(ce, i))
	}
	return nodes, edges
}

// ToVisualNode builds a generated canvas node with default presentation.
func ToVisualNode(cn entities.ConceptNode) entities.VisualNode {
	var details *string
	if cn.Details != nil {
		d := *cn.Details
		details = &d
	}
	return entities.VisualNode{
		ID:   cn.ID,
		Type: entities.NodeType,
		Data: entities.NodeData{
			Label:       cn.Label,
			Details:     details,
			IsGenerated: true,
			Kind:        cn.Kind,
		},
		Position: entities.Position{},
		Style:    entities.DefaultNodeStyle(),
	}
}

// ToVisualEdge builds an animated canvas edge. index is the edge's position
// in its response and keeps parallel edges distinct.
func ToVisualEdge(ce entities.ConceptEdge, index int) entities.VisualEdge {
	var label *string
	if ce.Label != nil {
		l := *ce.Label
		label = &l
	}
	return entities.VisualEdge{
		ID:         valueobjects.EdgeID(ce.Source, ce.Target, index),
		Source:     ce.Source,
		Target:     ce.Target,
		Label:      label,
		Animated:   true,
		Style:      entities.DefaultEdgeStyle(),
		LabelStyle: entities.DefaultEdgeLabelStyle(),
	}
}

// TransformAndLayout converts graph and positions the result.
func TransformAndLayout(engine *layout.Engine, graph entities.ConceptGraph, direction valueobjects.Direction) layout.Result {
	nodes, edges := Transform(graph)
	return engine.Layout(nodes, edges, direction)
}
