// Package commands contains command objects for write operations on the canvas.
// Struct tags are checked by validator/v10 at the transport boundary; the
// service re-checks the rules that carry domain error codes.
package commands

import (
	"mindcanvas/domain/core/entities"
)

// GenerateCommand asks for a fresh canvas built from a source document.
type GenerateCommand struct {
	Text string `json:"text" validate:"required"`
	// Title names the new document. Empty keeps the current title.
	Title string `json:"title,omitempty" validate:"max=200"`
}

// ExpandCommand grows the canvas from selected nodes. When NodeIDs is empty
// the current canvas selection is used.
type ExpandCommand struct {
	Prompt  string   `json:"prompt" validate:"required"`
	NodeIDs []string `json:"nodeIds" validate:"omitempty,dive,required"`
}

// MergeCommand folds a caller-supplied concept graph into the canvas.
type MergeCommand struct {
	Graph entities.ConceptGraph `json:"graph"`
	// Direction overrides the canvas direction for this merge only.
	Direction string `json:"direction" validate:"omitempty,oneof=TB LR"`
}

// LayoutCommand re-lays out the whole canvas.
type LayoutCommand struct {
	Direction string `json:"direction" validate:"omitempty,oneof=TB LR"`
}

// AddNodeCommand places a hand-made node.
type AddNodeCommand struct {
	Label    string            `json:"label" validate:"required,max=500"`
	Details  *string           `json:"details,omitempty"`
	Position entities.Position `json:"position"`
}

// UpdateNodeCommand patches node content and presentation.
type UpdateNodeCommand struct {
	NodeID  string         `json:"-" validate:"required"`
	Label   *string        `json:"label,omitempty" validate:"omitempty,min=1,max=500"`
	Details *string        `json:"details,omitempty"`
	URL     *string        `json:"url,omitempty" validate:"omitempty,url"`
	Style   entities.Style `json:"style,omitempty"`
}

// MoveNodeCommand stores a node position after a drag.
type MoveNodeCommand struct {
	NodeID   string            `json:"-" validate:"required"`
	Position entities.Position `json:"position"`
}

// ConnectCommand draws an edge between two nodes.
type ConnectCommand struct {
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required,nefield=Source"`
	Label  *string `json:"label,omitempty"`
}

// SelectCommand replaces the canvas selection.
type SelectCommand struct {
	NodeIDs []string `json:"nodeIds" validate:"dive,required"`
}
