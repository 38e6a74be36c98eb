package ports

import (
	"context"

	"mindcanvas/domain/core/entities"
)

// SelectedConcept is how a selected canvas node is described to the generator.
type SelectedConcept struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ExpandRequest asks the generator to grow the graph from selected nodes.
type ExpandRequest struct {
	// Context is the source document text. Empty means none was uploaded.
	Context  string
	Selected []SelectedConcept
	Prompt   string
}

// GraphGenerator produces concept graphs from text.
type GraphGenerator interface {
	// Generate builds a graph summarising text.
	Generate(ctx context.Context, text string) (*entities.ConceptGraph, error)

	// Expand returns only the new nodes and edges for an expansion.
	Expand(ctx context.Context, req ExpandRequest) (*entities.ConceptGraph, error)
}
