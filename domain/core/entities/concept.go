package entities

// NodeKind is a presentation hint carried by generated nodes.
type NodeKind string

const (
	NodeKindDefault NodeKind = "default"
	NodeKindInput   NodeKind = "input"
	NodeKindOutput  NodeKind = "output"
)

// ConceptNode is one node of a generated concept graph. It has no position.
type ConceptNode struct {
	ID      string   `json:"id" validate:"required"`
	Label   string   `json:"label" validate:"required"`
	Details *string  `json:"details,omitempty"`
	Kind    NodeKind `json:"type,omitempty" validate:"omitempty,oneof=default input output"`
}

// ConceptEdge is a directed relationship between two concept nodes.
type ConceptEdge struct {
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Label  *string `json:"label,omitempty"`
}

// ConceptGraph is the structured response of the generation service.
type ConceptGraph struct {
	Nodes []ConceptNode `json:"nodes" validate:"dive"`
	Edges []ConceptEdge `json:"edges" validate:"dive"`
}

// NodeIDs returns the ids of the graph's nodes in order.
func (g ConceptGraph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
