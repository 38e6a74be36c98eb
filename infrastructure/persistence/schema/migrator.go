// Package schema upgrades persisted canvas documents to the current schema.
package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/blang/semver"
	"go.uber.org/zap"

	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/entities"
	"mindcanvas/pkg/errors"
)

// BaseVersion is the first versioned schema. Documents without a usable
// version are lifted to it before any registered transition runs.
const BaseVersion = "1.0"

// TransitionFunc rewrites a raw document from one version to the next.
// It receives a private copy and may modify it.
type TransitionFunc func(doc map[string]any) (map[string]any, error)

// Transition upgrades documents from one schema version to a later one.
type Transition struct {
	From        string
	To          string
	Description string
	Apply       TransitionFunc
}

// Step records one applied transition.
type Step struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Description string `json:"description"`
}

// Outcome is a migrated document plus how it got there.
type Outcome struct {
	Document *aggregates.CanvasDocument
	// FromVersion is the version the input declared, or "" if none.
	FromVersion string
	Steps       []Step
	// Dropped counts node and edge entries that could not be decoded.
	Dropped int
}

// Migrator upgrades raw documents through a chain of transitions.
type Migrator struct {
	current     semver.Version
	transitions map[string]Transition
	logger      *zap.Logger
	now         func() time.Time
}

// NewMigrator creates a migrator targeting aggregates.SchemaVersion.
func NewMigrator(logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		current:     mustParse(aggregates.SchemaVersion),
		transitions: make(map[string]Transition),
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for defaulted timestamps.
func (m *Migrator) WithClock(now func() time.Time) *Migrator {
	m.now = now
	return m
}

// CurrentVersion returns the version every migrated document carries.
func (m *Migrator) CurrentVersion() string {
	return aggregates.SchemaVersion
}

// RegisterTransition adds a step to the chain.
func (m *Migrator) RegisterTransition(t Transition) error {
	from, err := semver.ParseTolerant(t.From)
	if err != nil {
		return fmt.Errorf("invalid transition: from version %q: %w", t.From, err)
	}
	to, err := semver.ParseTolerant(t.To)
	if err != nil {
		return fmt.Errorf("invalid transition: to version %q: %w", t.To, err)
	}
	if !from.LT(to) {
		return fmt.Errorf("invalid transition: from version %s must be less than to version %s", t.From, t.To)
	}
	if t.Apply == nil {
		return fmt.Errorf("invalid transition %s->%s: missing apply func", t.From, t.To)
	}
	if _, exists := m.transitions[from.String()]; exists {
		return fmt.Errorf("transition from %s already exists", t.From)
	}
	m.transitions[from.String()] = t
	return nil
}

// Migrate returns a current-version document for any input. Anything that
// is not an object yields an empty document. Only a version newer than the
// current one is an error.
func (m *Migrator) Migrate(raw any) (*aggregates.CanvasDocument, error) {
	out, err := m.MigrateWithHistory(raw)
	if err != nil {
		return nil, err
	}
	return out.Document, nil
}

// MigrateJSON decodes data and migrates it. Undecodable input yields an
// empty document.
func (m *Migrator) MigrateJSON(data []byte) (*aggregates.CanvasDocument, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		m.logger.Warn("Discarding undecodable canvas document", zap.Error(err))
		raw = nil
	}
	return m.Migrate(raw)
}

// MigrateWithHistory is Migrate plus the applied steps.
func (m *Migrator) MigrateWithHistory(raw any) (*Outcome, error) {
	obj, ok := toObject(raw)
	if !ok {
		if raw != nil {
			m.logger.Warn("Canvas document is not an object, starting empty", zap.String("kind", fmt.Sprintf("%T", raw)))
		}
		return &Outcome{Document: aggregates.NewCanvasDocument(nil, nil, "", m.now())}, nil
	}

	declared := declaredVersion(obj)
	out := &Outcome{FromVersion: declared}
	doc := cloneMap(obj)
	version := declared
	lifted := false

	for {
		v, err := semver.ParseTolerant(version)
		if err != nil || version == "" {
			if lifted {
				return nil, fmt.Errorf("migrate canvas: transition produced unparseable version %q", version)
			}
			doc = m.liftUnversioned(doc)
			out.Steps = append(out.Steps, Step{From: declared, To: BaseVersion, Description: "add document metadata"})
			version, lifted = BaseVersion, true
			continue
		}

		if v.GT(m.current) {
			return nil, errors.ErrUnsupportedSchemaVersion.New().
				WithDetail("version", version).
				WithDetail("supported", aggregates.SchemaVersion)
		}
		if v.EQ(m.current) {
			break
		}

		t, found := m.transitions[v.String()]
		if !found {
			if lifted {
				return nil, fmt.Errorf("migrate canvas: no transition from version %s", version)
			}
			// An old version nothing knows how to upgrade is read as unversioned.
			m.logger.Warn("No transition for canvas version, treating as unversioned", zap.String("version", version))
			doc = m.liftUnversioned(doc)
			out.Steps = append(out.Steps, Step{From: declared, To: BaseVersion, Description: "add document metadata"})
			version, lifted = BaseVersion, true
			continue
		}

		next, err := t.Apply(cloneMap(doc))
		if err != nil {
			return nil, fmt.Errorf("migrate canvas %s->%s: %w", t.From, t.To, err)
		}
		setVersion(next, t.To)
		doc = next
		out.Steps = append(out.Steps, Step{From: t.From, To: t.To, Description: t.Description})
		version = t.To
	}

	out.Document, out.Dropped = m.decode(doc)
	if len(out.Steps) > 0 {
		m.logger.Info("Migrated canvas document",
			zap.String("from", declared),
			zap.String("to", aggregates.SchemaVersion),
			zap.Int("steps", len(out.Steps)))
	}
	return out, nil
}

// liftUnversioned adds metadata to a document saved before versioning.
// Existing title and timestamps are kept when they are strings.
func (m *Migrator) liftUnversioned(doc map[string]any) map[string]any {
	ts := aggregates.Timestamp(m.now())
	meta, _ := doc["metadata"].(map[string]any)

	lifted := map[string]any{
		"nodes": arrayOrEmpty(doc["nodes"]),
		"edges": arrayOrEmpty(doc["edges"]),
		"metadata": map[string]any{
			"version":   BaseVersion,
			"title":     stringOr(meta["title"], aggregates.DefaultTitle),
			"createdAt": stringOr(meta["createdAt"], ts),
			"updatedAt": stringOr(meta["updatedAt"], ts),
		},
	}
	return lifted
}

// decode turns a current-version raw document into the typed form.
// Entries that fail to decode are dropped and counted.
func (m *Migrator) decode(doc map[string]any) (*aggregates.CanvasDocument, int) {
	dropped := 0

	nodes := make([]entities.VisualNode, 0)
	for i, item := range arrayOrEmpty(doc["nodes"]) {
		var n entities.VisualNode
		if err := remarshal(item, &n); err != nil || n.ID == "" {
			m.logger.Warn("Dropping undecodable node", zap.Int("index", i), zap.Error(err))
			dropped++
			continue
		}
		nodes = append(nodes, n)
	}

	edges := make([]entities.VisualEdge, 0)
	for i, item := range arrayOrEmpty(doc["edges"]) {
		var e entities.VisualEdge
		if err := remarshal(item, &e); err != nil || e.ID == "" {
			m.logger.Warn("Dropping undecodable edge", zap.Int("index", i), zap.Error(err))
			dropped++
			continue
		}
		edges = append(edges, e)
	}

	ts := aggregates.Timestamp(m.now())
	meta, _ := doc["metadata"].(map[string]any)
	return &aggregates.CanvasDocument{
		Nodes: nodes,
		Edges: edges,
		Metadata: aggregates.Metadata{
			Version:   aggregates.SchemaVersion,
			Title:     stringOr(meta["title"], aggregates.DefaultTitle),
			CreatedAt: stringOr(meta["createdAt"], ts),
			UpdatedAt: stringOr(meta["updatedAt"], ts),
			Extra:     extraMembers(meta, "version", "title", "createdAt", "updatedAt"),
		},
		Extra: extraMembers(doc, "nodes", "edges", "metadata"),
	}, dropped
}

// extraMembers keeps the members of obj that the typed document does not
// model, so they are written back unchanged.
func extraMembers(obj map[string]any, known ...string) entities.Extra {
	var extra entities.Extra
	for key, value := range obj {
		// encoding/json would read a case variant of a known member as that member.
		if slices.ContainsFunc(known, func(k string) bool { return strings.EqualFold(k, key) }) {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		if extra == nil {
			extra = entities.Extra{}
		}
		extra[key] = raw
	}
	return extra
}

// toObject accepts decoded JSON as well as typed documents, so a migrated
// document can be fed back in.
func toObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case *aggregates.CanvasDocument, aggregates.CanvasDocument:
		var obj map[string]any
		if err := remarshal(v, &obj); err != nil {
			return nil, false
		}
		return obj, true
	default:
		return nil, false
	}
}

func declaredVersion(doc map[string]any) string {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	switch v := meta["version"].(type) {
	case string:
		return v
	case float64:
		// Hand-edited files sometimes carry a bare number.
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

func setVersion(doc map[string]any, version string) {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		doc["metadata"] = meta
	}
	meta["version"] = version
}

func arrayOrEmpty(v any) []any {
	if a, ok := v.([]any); ok {
		return a
	}
	return []any{}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// cloneMap copies the top level and the metadata object, which are the
// parts transitions rewrite.
func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	if meta, ok := in["metadata"].(map[string]any); ok {
		m := make(map[string]any, len(meta))
		for k, v := range meta {
			m[k] = v
		}
		out["metadata"] = m
	}
	return out
}

func mustParse(v string) semver.Version {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid version constant %q: %v", v, err))
	}
	return parsed
}
