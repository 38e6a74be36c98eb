// Package services contains the application service that drives the canvas.
//
// CanvasService owns the single live canvas. It orchestrates the generator,
// the transformer, the layout engine, the merger and the migrator, and saves
// the canvas after every change. Business rules live in the domain packages;
// this layer only sequences them.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindcanvas/application/commands"
	"mindcanvas/application/dto"
	"mindcanvas/application/ports"
	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/validators"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/merge"
	"mindcanvas/domain/services/transform"
	"mindcanvas/infrastructure/persistence/filestore"
	"mindcanvas/infrastructure/persistence/schema"
	apperrors "mindcanvas/pkg/errors"
)

// CanvasService serialises access to the live canvas.
// Generator calls run outside the lock so reads stay responsive while a
// request is in flight; their results are applied to the canvas as it is
// when they return.
type CanvasService struct {
	mu        sync.Mutex
	canvas    *aggregates.Canvas
	direction valueobjects.Direction

	generator ports.GraphGenerator
	validator *validators.ConceptGraphValidator
	engine    *layout.Engine
	merger    *merge.Merger
	migrator  *schema.Migrator
	repo      ports.DocumentRepository
	metrics   ports.PipelineMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewCanvasService creates a service showing the welcome canvas.
// Call Restore to pick up an autosaved document.
func NewCanvasService(
	generator ports.GraphGenerator,
	validator *validators.ConceptGraphValidator,
	engine *layout.Engine,
	merger *merge.Merger,
	migrator *schema.Migrator,
	repo ports.DocumentRepository,
	metrics ports.PipelineMetrics,
	logger *zap.Logger,
) *CanvasService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CanvasService{
		direction: merger.Direction(),
		generator: generator,
		validator: validator,
		engine:    engine,
		merger:    merger,
		migrator:  migrator,
		repo:      repo,
		metrics:   metrics,
		logger:    logger.Named("canvas"),
		now:       time.Now,
	}
	s.canvas = aggregates.NewWelcomeCanvas(s.clock)
	return s
}

// WithClock replaces the time source, for tests.
func (s *CanvasService) WithClock(now func() time.Time) *CanvasService {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.canvas = aggregates.NewCanvas(s.canvas.Document(), s.clock)
	return s
}

func (s *CanvasService) clock() time.Time {
	return s.now()
}

// Snapshot returns the current canvas.
func (s *CanvasService) Snapshot() *dto.CanvasView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Document returns a copy of the current document.
func (s *CanvasService) Document() *aggregates.CanvasDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Document()
}

// Direction returns the direction used for the next layout.
func (s *CanvasService) Direction() valueobjects.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction
}

// SetDirection changes the default direction without re-laying out,
// as when configuration is reloaded.
func (s *CanvasService) SetDirection(direction valueobjects.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.direction = direction
}

// GenerateFromText replaces the canvas with a graph generated from text.
// The text is kept as context for later expansions.
func (s *CanvasService) GenerateFromText(ctx context.Context, cmd commands.GenerateCommand) (*dto.CanvasView, error) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("text is required").WithCode("TEXT_REQUIRED")
	}

	graph, err := s.generate(ctx, "generate", func(ctx context.Context) (*entities.ConceptGraph, error) {
		return s.generator.Generate(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(graph, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.layout(s.direction, len(graph.Nodes), func() layout.Result {
		return transform.TransformAndLayout(s.engine, *graph, s.direction)
	})
	s.canvas.SetGraph(result.Nodes, result.Edges)
	s.canvas.SetSourceContext(text)
	if title := strings.TrimSpace(cmd.Title); title != "" {
		s.canvas.SetTitle(title)
	}

	s.logger.Info("Canvas generated",
		zap.Int("nodes", len(result.Nodes)),
		zap.Int("edges", len(result.Edges)),
		zap.String("direction", s.direction.String()),
	)
	s.autosaveLocked(ctx)
	return s.viewLocked(), nil
}

// ExpandSelection asks the generator to grow the canvas from the selected
// nodes and merges what it returns.
func (s *CanvasService) ExpandSelection(ctx context.Context, cmd commands.ExpandCommand) (*dto.MergeView, error) {
	prompt := strings.TrimSpace(cmd.Prompt)
	if prompt == "" {
		return nil, apperrors.ErrPromptRequired.New()
	}

	s.mu.Lock()
	if len(cmd.NodeIDs) > 0 {
		if err := s.canvas.SelectNodes(cmd.NodeIDs); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	selected := s.canvas.SelectedNodes()
	sourceContext := s.canvas.SourceContext()
	s.mu.Unlock()

	if len(selected) == 0 {
		return nil, apperrors.ErrEmptySelection.New()
	}

	req := ports.ExpandRequest{
		Context:  sourceContext,
		Selected: make([]ports.SelectedConcept, len(selected)),
		Prompt:   prompt,
	}
	for i, n := range selected {
		req.Selected[i] = ports.SelectedConcept{ID: n.ID, Label: n.Data.Label}
	}

	graph, err := s.generate(ctx, "expand", func(ctx context.Context) (*entities.ConceptGraph, error) {
		return s.generator.Expand(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(ctx, graph, s.direction)
}

// MergeGraph folds a caller-supplied concept graph into the canvas.
func (s *CanvasService) MergeGraph(ctx context.Context, cmd commands.MergeCommand) (*dto.MergeView, error) {
	direction, err := valueobjects.ParseDirection(cmd.Direction)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error()).WithCode("INVALID_DIRECTION")
	}
	if cmd.Direction == "" {
		direction = s.Direction()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	graph := cmd.Graph
	return s.mergeLocked(ctx, &graph, direction)
}

func (s *CanvasService) mergeLocked(ctx context.Context, graph *entities.ConceptGraph, direction valueobjects.Direction) (*dto.MergeView, error) {
	if err := s.validator.Validate(graph, s.canvas.NodeIDs()); err != nil {
		return nil, err
	}

	nodes, edges := transform.Transform(*graph)
	existingNodes, existingEdges := s.canvas.Nodes(), s.canvas.Edges()

	var report merge.Report
	result := s.layout(direction, len(existingNodes)+len(nodes), func() layout.Result {
		var r layout.Result
		r, report = s.merger.WithDirection(direction).MergeWithReport(existingNodes, existingEdges, nodes, edges)
		return r
	})
	s.metrics.RecordMergeCollisions(len(report.NodeCollisions), len(report.EdgeCollisions))

	s.canvas.SetGraph(result.Nodes, result.Edges)

	if report.HasCollisions() {
		s.logger.Warn("Merge resolved identifier collisions",
			zap.Strings("nodeCollisions", report.NodeCollisions),
			zap.Strings("edgeCollisions", report.EdgeCollisions),
			zap.Int("reassigned", len(report.Reassigned)),
		)
	}
	s.logger.Info("Graph merged",
		zap.Int("incomingNodes", len(nodes)),
		zap.Int("incomingEdges", len(edges)),
		zap.Int("totalNodes", len(result.Nodes)),
	)
	s.autosaveLocked(ctx)

	return dto.NewMergeView(*s.viewLocked(),
		len(result.Nodes)-len(existingNodes),
		len(result.Edges)-len(existingEdges),
		report,
	), nil
}

// Relayout positions every node again. An empty direction keeps the
// current one.
func (s *CanvasService) Relayout(ctx context.Context, cmd commands.LayoutCommand) (*dto.CanvasView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Direction != "" {
		direction, err := valueobjects.ParseDirection(cmd.Direction)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error()).WithCode("INVALID_DIRECTION")
		}
		s.direction = direction
	}

	nodes, edges := s.canvas.Nodes(), s.canvas.Edges()
	result := s.layout(s.direction, len(nodes), func() layout.Result {
		return s.engine.Layout(nodes, edges, s.direction)
	})
	s.canvas.SetGraph(result.Nodes, result.Edges)
	s.autosaveLocked(ctx)
	return s.viewLocked(), nil
}

// AddNode places a hand-made node on the canvas.
func (s *CanvasService) AddNode(ctx context.Context, cmd commands.AddNodeCommand) (entities.VisualNode, error) {
	label := strings.TrimSpace(cmd.Label)
	if label == "" {
		return entities.VisualNode{}, apperrors.NewValidationError("label is required").WithCode("LABEL_REQUIRED")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	node := s.canvas.AddNode(label, cmd.Details, cmd.Position)
	s.autosaveLocked(ctx)
	return node, nil
}

// UpdateNode patches a node's content and style.
func (s *CanvasService) UpdateNode(ctx context.Context, cmd commands.UpdateNodeCommand) (entities.VisualNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.canvas.UpdateNodeData(cmd.NodeID, aggregates.NodePatch{
		Label:   cmd.Label,
		Details: cmd.Details,
		URL:     cmd.URL,
	})
	if err != nil {
		return entities.VisualNode{}, err
	}
	if len(cmd.Style) > 0 {
		if node, err = s.canvas.UpdateNodeStyle(cmd.NodeID, cmd.Style); err != nil {
			return entities.VisualNode{}, err
		}
	}
	s.autosaveLocked(ctx)
	return node, nil
}

// MoveNode stores a dragged node's position.
func (s *CanvasService) MoveNode(ctx context.Context, cmd commands.MoveNodeCommand) (entities.VisualNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.canvas.MoveNode(cmd.NodeID, cmd.Position)
	if err != nil {
		return entities.VisualNode{}, err
	}
	s.autosaveLocked(ctx)
	return node, nil
}

// DeleteNode removes a node and its edges.
func (s *CanvasService) DeleteNode(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canvas.RemoveNode(nodeID); err != nil {
		return err
	}
	s.autosaveLocked(ctx)
	return nil
}

// Connect draws an edge between two nodes.
func (s *CanvasService) Connect(ctx context.Context, cmd commands.ConnectCommand) (entities.VisualEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, err := s.canvas.ConnectNodes(cmd.Source, cmd.Target, cmd.Label)
	if err != nil {
		return entities.VisualEdge{}, err
	}
	s.autosaveLocked(ctx)
	return edge, nil
}

// DeleteEdge removes an edge.
func (s *CanvasService) DeleteEdge(ctx context.Context, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canvas.RemoveEdge(edgeID); err != nil {
		return err
	}
	s.autosaveLocked(ctx)
	return nil
}

// Select replaces the selection. Selection is not persisted.
func (s *CanvasService) Select(_ context.Context, cmd commands.SelectCommand) ([]entities.VisualNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canvas.SelectNodes(cmd.NodeIDs); err != nil {
		return nil, err
	}
	return s.canvas.SelectedNodes(), nil
}

// Import replaces the canvas with a document read from r.
func (s *CanvasService) Import(ctx context.Context, r io.Reader) (*dto.ImportView, error) {
	outcome, err := filestore.Import(r, s.migrator)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordMigration(outcome.FromVersion, len(outcome.Steps))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas.Replace(outcome.Document)
	s.canvas.SetSourceContext("")
	s.logger.Info("Canvas imported",
		zap.String("fromVersion", outcome.FromVersion),
		zap.Int("steps", len(outcome.Steps)),
		zap.Int("dropped", outcome.Dropped),
		zap.Int("nodes", len(outcome.Document.Nodes)),
	)
	s.autosaveLocked(ctx)

	return &dto.ImportView{
		CanvasView:  *s.viewLocked(),
		FromVersion: outcome.FromVersion,
		Steps:       outcome.Steps,
		Dropped:     outcome.Dropped,
	}, nil
}

// Export writes the canvas as an export file.
func (s *CanvasService) Export(_ context.Context, w io.Writer) error {
	return filestore.Export(w, s.Document())
}

// ExportFilename names an export taken now.
func (s *CanvasService) ExportFilename() string {
	return filestore.ExportFilename(s.now())
}

// Restore loads the autosaved canvas. It reports whether one was found;
// otherwise the welcome canvas is shown. Unreadable autosaves are logged and
// treated as absent.
func (s *CanvasService) Restore(ctx context.Context) (bool, error) {
	data, err := s.repo.Load(ctx)
	if errors.Is(err, ports.ErrNoAutosave) {
		s.resetToWelcome()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Autosave is not valid JSON", zap.Error(err))
		s.resetToWelcome()
		return false, nil
	}
	outcome, err := s.migrator.MigrateWithHistory(raw)
	if err != nil {
		s.logger.Warn("Autosave could not be migrated", zap.Error(err))
		s.resetToWelcome()
		return false, nil
	}
	s.metrics.RecordMigration(outcome.FromVersion, len(outcome.Steps))

	if len(outcome.Document.Nodes) == 0 {
		s.resetToWelcome()
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas = aggregates.NewCanvas(outcome.Document, s.clock)
	s.logger.Info("Canvas restored",
		zap.Int("nodes", len(outcome.Document.Nodes)),
		zap.Int("edges", len(outcome.Document.Edges)),
		zap.String("fromVersion", outcome.FromVersion),
	)
	return true, nil
}

// Clear wipes the autosave and shows the welcome canvas again.
func (s *CanvasService) Clear(ctx context.Context) (*dto.CanvasView, error) {
	if err := s.repo.Clear(ctx); err != nil {
		return nil, err
	}
	s.resetToWelcome()
	return s.Snapshot(), nil
}

func (s *CanvasService) resetToWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas = aggregates.NewWelcomeCanvas(s.clock)
}

// generate runs a generator call and records its outcome.
func (s *CanvasService) generate(ctx context.Context, operation string, call func(context.Context) (*entities.ConceptGraph, error)) (*entities.ConceptGraph, error) {
	start := time.Now()
	graph, err := call(ctx)
	s.metrics.RecordGeneration(operation, err, time.Since(start))
	if err != nil {
		s.logger.Warn("Generator call failed", zap.String("operation", operation), zap.Error(err))
		return nil, err
	}
	if graph == nil {
		return nil, apperrors.ErrInvalidDocument.New().WithDetail("reason", "generator returned no graph")
	}
	return graph, nil
}

// layout times a layout run.
func (s *CanvasService) layout(direction valueobjects.Direction, nodes int, run func() layout.Result) layout.Result {
	start := time.Now()
	result := run()
	s.metrics.ObserveLayout(direction.String(), nodes, time.Since(start))
	return result
}

// autosaveLocked persists the canvas. Failures are logged, never returned.
func (s *CanvasService) autosaveLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.canvas.Document()); err != nil {
		s.logger.Warn("Autosave failed", zap.Error(err))
	}
}

func (s *CanvasService) viewLocked() *dto.CanvasView {
	return &dto.CanvasView{
		Document:  s.canvas.Document(),
		Direction: s.direction,
	}
}
