package aggregates

import (
	"time"

	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/pkg/errors"
)

// Canvas is the aggregate root for the live whiteboard.
// Node and edge order is significant: layout is deterministic per order.
type Canvas struct {
	doc           *CanvasDocument
	sourceContext string
	now           func() time.Time
}

// NodePatch carries a partial update of a node's content.
// Nil fields are left untouched.
type NodePatch struct {
	Label   *string
	Details *string
	URL     *string
}

// NewCanvas wraps an existing document.
func NewCanvas(doc *CanvasDocument, now func() time.Time) *Canvas {
	if now == nil {
		now = time.Now
	}
	if doc == nil {
		doc = NewCanvasDocument(nil, nil, "", now())
	}
	return &Canvas{doc: doc.Clone(), now: now}
}

// NewWelcomeCanvas returns the canvas shown before anything is generated.
func NewWelcomeCanvas(now func() time.Time) *Canvas {
	if now == nil {
		now = time.Now
	}
	details := "Click here to edit text."
	style := entities.DefaultNodeStyle()
	style["fontSize"] = "18px"
	style["textAlign"] = "center"

	welcome := entities.VisualNode{
		ID:       "welcome",
		Type:     entities.NodeType,
		Position: entities.Position{X: 500, Y: 300},
		Data: entities.NodeData{
			Label:   "Welcome to MindCanvas!",
			Details: &details,
		},
		Style: style,
	}
	return &Canvas{
		doc: NewCanvasDocument([]entities.VisualNode{welcome}, nil, "", now()),
		now: now,
	}
}

// Document returns a copy of the current document.
func (c *Canvas) Document() *CanvasDocument {
	return c.doc.Clone()
}

// Nodes returns a copy of the canvas nodes in order.
func (c *Canvas) Nodes() []entities.VisualNode {
	return entities.CloneNodes(c.doc.Nodes)
}

// Edges returns a copy of the canvas edges in order.
func (c *Canvas) Edges() []entities.VisualEdge {
	return entities.CloneEdges(c.doc.Edges)
}

// NodeIDs returns the set of node ids currently on the canvas.
func (c *Canvas) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.doc.Nodes))
	for _, n := range c.doc.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// SourceContext is the text of the document the canvas was generated from.
func (c *Canvas) SourceContext() string {
	return c.sourceContext
}

// SetSourceContext remembers the source text for later expansions.
func (c *Canvas) SetSourceContext(text string) {
	c.sourceContext = text
}

// Replace swaps in a whole document, as on import.
func (c *Canvas) Replace(doc *CanvasDocument) {
	c.doc = doc.Clone()
}

// SetGraph replaces nodes and edges but keeps the document metadata.
func (c *Canvas) SetGraph(nodes []entities.VisualNode, edges []entities.VisualEdge) {
	c.doc.Nodes = entities.CloneNodes(nodes)
	c.doc.Edges = entities.CloneEdges(edges)
	c.Touch()
}

// SetTitle renames the document.
func (c *Canvas) SetTitle(title string) {
	if title == "" {
		title = DefaultTitle
	}
	c.doc.Metadata.Title = title
	c.Touch()
}

// Touch bumps the document's updatedAt timestamp.
func (c *Canvas) Touch() {
	c.doc.Metadata.UpdatedAt = Timestamp(c.now())
}

// AddNode places a new hand-made node at pos.
func (c *Canvas) AddNode(label string, details *string, pos entities.Position) entities.VisualNode {
	node := entities.VisualNode{
		ID:       valueobjects.NewNodeID(),
		Type:     entities.NodeType,
		Position: pos,
		Data: entities.NodeData{
			Label:   label,
			Details: copyString(details),
		},
		Style: entities.DefaultNodeStyle(),
	}
	c.doc.Nodes = append(c.doc.Nodes, node)
	c.Touch()
	return node.Clone()
}

// UpdateNodeData applies a content patch to a node.
func (c *Canvas) UpdateNodeData(id string, patch NodePatch) (entities.VisualNode, error) {
	i, err := c.nodeIndex(id)
	if err != nil {
		return entities.VisualNode{}, err
	}
	n := &c.doc.Nodes[i]
	if patch.Label != nil {
		n.Data.Label = *patch.Label
	}
	if patch.Details != nil {
		n.Data.Details = copyString(patch.Details)
	}
	if patch.URL != nil {
		n.Data.URL = *patch.URL
	}
	c.Touch()
	return n.Clone(), nil
}

// UpdateNodeStyle merges presentation keys into a node's style.
// A nil value removes the key.
func (c *Canvas) UpdateNodeStyle(id string, style entities.Style) (entities.VisualNode, error) {
	i, err := c.nodeIndex(id)
	if err != nil {
		return entities.VisualNode{}, err
	}
	n := &c.doc.Nodes[i]
	if n.Style == nil {
		n.Style = entities.Style{}
	}
	for k, v := range style {
		if v == nil {
			delete(n.Style, k)
			continue
		}
		n.Style[k] = v
	}
	c.Touch()
	return n.Clone(), nil
}

// MoveNode sets a node's position, as after a drag.
func (c *Canvas) MoveNode(id string, pos entities.Position) (entities.VisualNode, error) {
	i, err := c.nodeIndex(id)
	if err != nil {
		return entities.VisualNode{}, err
	}
	c.doc.Nodes[i].Position = pos
	c.Touch()
	return c.doc.Nodes[i].Clone(), nil
}

// SelectNodes replaces the selection. Unknown ids are rejected and the
// selection is left unchanged.
func (c *Canvas) SelectNodes(ids []string) error {
	want := make(map[string]struct{}, len(ids))
	existing := c.NodeIDs()
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return errors.ErrNodeNotFound.New().WithDetail("node_id", id)
		}
		want[id] = struct{}{}
	}
	for i := range c.doc.Nodes {
		_, c.doc.Nodes[i].Selected = want[c.doc.Nodes[i].ID]
	}
	return nil
}

// SelectedNodes returns the currently selected nodes in canvas order.
func (c *Canvas) SelectedNodes() []entities.VisualNode {
	var out []entities.VisualNode
	for _, n := range c.doc.Nodes {
		if n.Selected {
			out = append(out, n.Clone())
		}
	}
	return out
}

// RemoveNode deletes a node and every edge touching it.
func (c *Canvas) RemoveNode(id string) error {
	i, err := c.nodeIndex(id)
	if err != nil {
		return err
	}
	c.doc.Nodes = append(c.doc.Nodes[:i], c.doc.Nodes[i+1:]...)

	kept := c.doc.Edges[:0]
	for _, e := range c.doc.Edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	c.doc.Edges = kept
	c.Touch()
	return nil
}

// ConnectNodes draws a user edge between two existing nodes.
func (c *Canvas) ConnectNodes(source, target string, label *string) (entities.VisualEdge, error) {
	if source == target {
		return entities.VisualEdge{}, errors.ErrSelfReferentialEdge.New().WithDetail("node_id", source)
	}
	if _, err := c.nodeIndex(source); err != nil {
		return entities.VisualEdge{}, err
	}
	if _, err := c.nodeIndex(target); err != nil {
		return entities.VisualEdge{}, err
	}

	used := make(map[string]struct{}, len(c.doc.Edges))
	for _, e := range c.doc.Edges {
		used[e.ID] = struct{}{}
	}
	ordinal := 0
	for {
		if _, taken := used[valueobjects.EdgeID(source, target, ordinal)]; !taken {
			break
		}
		ordinal++
	}

	edge := entities.VisualEdge{
		ID:         valueobjects.EdgeID(source, target, ordinal),
		Source:     source,
		Target:     target,
		Label:      copyString(label),
		Style:      entities.DefaultEdgeStyle(),
		LabelStyle: entities.DefaultEdgeLabelStyle(),
	}
	c.doc.Edges = append(c.doc.Edges, edge)
	c.Touch()
	return edge.Clone(), nil
}

// RemoveEdge deletes an edge by id.
func (c *Canvas) RemoveEdge(id string) error {
	for i, e := range c.doc.Edges {
		if e.ID == id {
			c.doc.Edges = append(c.doc.Edges[:i], c.doc.Edges[i+1:]...)
			c.Touch()
			return nil
		}
	}
	return errors.ErrEdgeNotFound.New().WithDetail("edge_id", id)
}

func (c *Canvas) nodeIndex(id string) (int, error) {
	for i, n := range c.doc.Nodes {
		if n.ID == id {
			return i, nil
		}
	}
	return -1, errors.ErrNodeNotFound.New().WithDetail("node_id", id)
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
