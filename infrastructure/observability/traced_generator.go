package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/entities"
)

// TraceGenerator wraps inner so every generation call gets a client span.
func TraceGenerator(inner ports.GraphGenerator, tracer trace.Tracer) ports.GraphGenerator {
	return &tracedGenerator{inner: inner, tracer: tracer}
}

type tracedGenerator struct {
	inner  ports.GraphGenerator
	tracer trace.Tracer
}

func (g *tracedGenerator) Generate(ctx context.Context, text string) (*entities.ConceptGraph, error) {
	ctx, span := g.tracer.Start(ctx, "ai.Generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("ai.text_length", len(text))),
	)
	defer span.End()

	graph, err := g.inner.Generate(ctx, text)
	finishGeneration(span, graph, err)
	return graph, err
}

func (g *tracedGenerator) Expand(ctx context.Context, req ports.ExpandRequest) (*entities.ConceptGraph, error) {
	ctx, span := g.tracer.Start(ctx, "ai.Expand",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("ai.selected", len(req.Selected)),
			attribute.Int("ai.context_length", len(req.Context)),
			attribute.Bool("ai.has_context", req.Context != ""),
		),
	)
	defer span.End()

	graph, err := g.inner.Expand(ctx, req)
	finishGeneration(span, graph, err)
	return graph, err
}

func finishGeneration(span trace.Span, graph *entities.ConceptGraph, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if graph != nil {
		span.SetAttributes(
			attribute.Int("graph.nodes", len(graph.Nodes)),
			attribute.Int("graph.edges", len(graph.Edges)),
		)
	}
}
