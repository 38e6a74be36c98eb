package gemini

import (
	"context"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/entities"
	"mindcanvas/pkg/errors"
)

// Unconfigured stands in for the client when no API key is set, so the
// rest of the canvas keeps working.
type Unconfigured struct{}

var _ ports.GraphGenerator = Unconfigured{}

func (Unconfigured) Generate(context.Context, string) (*entities.ConceptGraph, error) {
	return nil, unconfigured()
}

func (Unconfigured) Expand(context.Context, ports.ExpandRequest) (*entities.ConceptGraph, error) {
	return nil, unconfigured()
}

func unconfigured() error {
	return errors.NewUnavailableError(serviceName).
		WithCode("AI_NOT_CONFIGURED").
		WithDetails(map[string]interface{}{"hint": "set GEMINI_API_KEY"})
}
