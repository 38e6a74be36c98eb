package validators

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"mindcanvas/domain/core/entities"
	"mindcanvas/pkg/errors"
	"mindcanvas/pkg/utils"
)

// ConceptGraphValidator checks generated graphs at the boundary where they
// enter the system. It checks shape and references, never content.
type ConceptGraphValidator struct {
	validate *validator.Validate
}

// NewConceptGraphValidator creates a validator that reports json field names
func NewConceptGraphValidator() *ConceptGraphValidator {
	return &ConceptGraphValidator{validate: utils.NewValidator()}
}

// Validate checks a graph. existing holds ids already on the canvas, which
// edges in an expansion may point at.
func (v *ConceptGraphValidator) Validate(graph *entities.ConceptGraph, existing map[string]struct{}) error {
	if graph == nil {
		return errors.ErrInvalidDocument.New().WithDetail("reason", "graph is nil")
	}

	validationErrors := errors.NewValidationErrors()

	if err := utils.CollectFieldErrors(v.validate.Struct(graph), validationErrors); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(graph.Nodes))
	for i, n := range graph.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			validationErrors.AddError(errors.ErrDuplicateNodeID.New().
				WithDetail("field", fmt.Sprintf("nodes[%d].id", i)).
				WithDetail("node_id", n.ID))
			continue
		}
		seen[n.ID] = struct{}{}
	}

	resolves := func(id string) bool {
		if _, ok := seen[id]; ok {
			return true
		}
		_, ok := existing[id]
		return ok
	}

	for i, e := range graph.Edges {
		for _, end := range []struct{ field, id string }{
			{"source", e.Source},
			{"target", e.Target},
		} {
			if end.id == "" || resolves(end.id) {
				continue
			}
			validationErrors.AddError(errors.ErrDanglingEdge.New().
				WithDetail("field", fmt.Sprintf("edges[%d].%s", i, end.field)).
				WithDetail("node_id", end.id))
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}
