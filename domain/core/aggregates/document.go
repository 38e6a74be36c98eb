package aggregates

import (
	"time"

	"mindcanvas/domain/core/entities"
)

const (
	// SchemaVersion is the document schema written by this build.
	SchemaVersion = "1.0"

	// DefaultTitle is used for documents created without a title.
	DefaultTitle = "Untitled Canvas"
)

// Metadata describes a persisted canvas document.
type Metadata struct {
	Version   string         `json:"version"`
	Title     string         `json:"title"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Extra     entities.Extra `json:"-"`
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	extra, err := entities.SplitExtra(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	return entities.JoinExtra(plain(m), m.Extra)
}

func (m Metadata) clone() Metadata {
	m.Extra = m.Extra.Clone()
	return m
}

// CanvasDocument is the unit of persistence and export.
type CanvasDocument struct {
	Nodes    []entities.VisualNode `json:"nodes"`
	Edges    []entities.VisualEdge `json:"edges"`
	Metadata Metadata              `json:"metadata"`
	Extra    entities.Extra        `json:"-"`
}

func (d *CanvasDocument) UnmarshalJSON(data []byte) error {
	type plain CanvasDocument
	extra, err := entities.SplitExtra(data, (*plain)(d))
	d.Extra = extra
	return err
}

func (d CanvasDocument) MarshalJSON() ([]byte, error) {
	type plain CanvasDocument
	return entities.JoinExtra(plain(d), d.Extra)
}

// Timestamp formats t the way document metadata stores it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// NewCanvasDocument stamps nodes and edges with current metadata.
func NewCanvasDocument(nodes []entities.VisualNode, edges []entities.VisualEdge, title string, now time.Time) *CanvasDocument {
	if title == "" {
		title = DefaultTitle
	}
	ts := Timestamp(now)
	return &CanvasDocument{
		Nodes: entities.CloneNodes(nodes),
		Edges: entities.CloneEdges(edges),
		Metadata: Metadata{
			Version:   SchemaVersion,
			Title:     title,
			CreatedAt: ts,
			UpdatedAt: ts,
		},
	}
}

// Clone deep-copies the document.
func (d *CanvasDocument) Clone() *CanvasDocument {
	return &CanvasDocument{
		Nodes:    entities.CloneNodes(d.Nodes),
		Edges:    entities.CloneEdges(d.Edges),
		Metadata: d.Metadata.clone(),
		Extra:    d.Extra.Clone(),
	}
}

// ForPersistence returns a copy with live-only state (selection) cleared.
func (d *CanvasDocument) ForPersistence() *CanvasDocument {
	c := d.Clone()
	for i := range c.Nodes {
		c.Nodes[i].Selected = false
	}
	return c
}
