package entities

import (
	"maps"

	"mindcanvas/domain/core/valueobjects"
)

// NodeType is the renderer component used for every canvas node.
const NodeType = "editableNode"

// Position is a point in canvas coordinates. For nodes it is the top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style holds user-mutable presentation attributes. It is an open map so
// keys set by the renderer survive a save/load cycle.
type Style map[string]any

// Clone returns a shallow copy of the style.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// NodeData is the editable content of a canvas node.
type NodeData struct {
	Label       string   `json:"label"`
	Details     *string  `json:"details,omitempty"`
	URL         string   `json:"url,omitempty"`
	IsGenerated bool     `json:"isGenerated,omitempty"`
	Kind        NodeKind `json:"kind,omitempty"`
	Extra       Extra    `json:"-"`
}

func (d *NodeData) UnmarshalJSON(data []byte) error {
	type plain NodeData
	extra, err := SplitExtra(data, (*plain)(d))
	d.Extra = extra
	return err
}

func (d NodeData) MarshalJSON() ([]byte, error) {
	type plain NodeData
	return JoinExtra(plain(d), d.Extra)
}

// VisualNode is a node as it lives on the canvas.
type VisualNode struct {
	ID           string            `json:"id"`
	Type         string            `json:"type,omitempty"`
	Data         NodeData          `json:"data"`
	Position     Position          `json:"position"`
	IncomingSide valueobjects.Side `json:"targetPosition,omitempty"`
	OutgoingSide valueobjects.Side `json:"sourcePosition,omitempty"`
	Style        Style             `json:"style,omitempty"`
	Selected     bool              `json:"selected,omitempty"`
	// Extra keeps renderer keys such as width, height and measured.
	Extra Extra `json:"-"`
}

func (n *VisualNode) UnmarshalJSON(data []byte) error {
	type plain VisualNode
	extra, err := SplitExtra(data, (*plain)(n))
	n.Extra = extra
	return err
}

func (n VisualNode) MarshalJSON() ([]byte, error) {
	type plain VisualNode
	return JoinExtra(plain(n), n.Extra)
}

// Clone returns a copy that shares no mutable state with n.
func (n VisualNode) Clone() VisualNode {
	c := n
	if n.Data.Details != nil {
		d := *n.Data.Details
		c.Data.Details = &d
	}
	c.Data.Extra = n.Data.Extra.Clone()
	c.Style = n.Style.Clone()
	c.Extra = n.Extra.Clone()
	return c
}

// VisualEdge is an edge as it lives on the canvas.
type VisualEdge struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Label      *string `json:"label,omitempty"`
	Animated   bool    `json:"animated,omitempty"`
	Style      Style   `json:"style,omitempty"`
	LabelStyle Style   `json:"labelStyle,omitempty"`
	// Extra keeps renderer keys such as sourceHandle, type and markerEnd.
	Extra Extra `json:"-"`
}

func (e *VisualEdge) UnmarshalJSON(data []byte) error {
	type plain VisualEdge
	extra, err := SplitExtra(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (e VisualEdge) MarshalJSON() ([]byte, error) {
	type plain VisualEdge
	return JoinExtra(plain(e), e.Extra)
}

// Clone returns a copy that shares no mutable state with e.
func (e VisualEdge) Clone() VisualEdge {
	c := e
	if e.Label != nil {
		l := *e.Label
		c.Label = &l
	}
	c.Style = e.Style.Clone()
	c.LabelStyle = e.LabelStyle.Clone()
	c.Extra = e.Extra.Clone()
	return c
}

// CloneNodes deep-copies a node slice. A nil input yields an empty slice.
func CloneNodes(nodes []VisualNode) []VisualNode {
	out := make([]VisualNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges deep-copies an edge slice. A nil input yields an empty slice.
func CloneEdges(edges []VisualEdge) []VisualEdge {
	out := make([]VisualEdge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}
