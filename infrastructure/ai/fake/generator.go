// Package fake provides a canned GraphGenerator for tests and offline runs.
package fake

import (
	"context"
	"sync"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/entities"
)

// Generator returns preset graphs and records what it was asked.
type Generator struct {
	mu sync.Mutex

	GenerateGraph *entities.ConceptGraph
	ExpandGraph   *entities.ConceptGraph
	Err           error

	GenerateCalls []string
	ExpandCalls   []ports.ExpandRequest
}

var _ ports.GraphGenerator = (*Generator)(nil)

// NewGenerator returns a generator answering with a small sample graph.
func NewGenerator() *Generator {
	return &Generator{
		GenerateGraph: SampleGraph(),
		ExpandGraph: &entities.ConceptGraph{
			Nodes: []entities.ConceptNode{{ID: "new_1", Label: "Follow-up"}},
			Edges: []entities.ConceptEdge{{Source: "n1", Target: "new_1"}},
		},
	}
}

// SampleGraph is a three-node tree rooted at n1.
func SampleGraph() *entities.ConceptGraph {
	details := "The central idea"
	return &entities.ConceptGraph{
		Nodes: []entities.ConceptNode{
			{ID: "n1", Label: "Main Topic", Details: &details, Kind: entities.NodeKindInput},
			{ID: "n2", Label: "First Branch"},
			{ID: "n3", Label: "Second Branch"},
		},
		Edges: []entities.ConceptEdge{
			{Source: "n1", Target: "n2"},
			{Source: "n1", Target: "n3"},
		},
	}
}

func (g *Generator) Generate(ctx context.Context, text string) (*entities.ConceptGraph, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.GenerateCalls = append(g.GenerateCalls, text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.Err != nil {
		return nil, g.Err
	}
	return clone(g.GenerateGraph), nil
}

func (g *Generator) Expand(ctx context.Context, req ports.ExpandRequest) (*entities.ConceptGraph, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ExpandCalls = append(g.ExpandCalls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.Err != nil {
		return nil, g.Err
	}
	return clone(g.ExpandGraph), nil
}

func clone(g *entities.ConceptGraph) *entities.ConceptGraph {
	if g == nil {
		return &entities.ConceptGraph{}
	}
	return &entities.ConceptGraph{
		Nodes: append([]entities.ConceptNode(nil), g.Nodes...),
		Edges: append([]entities.ConceptEdge(nil), g.Edges...),
	}
}
