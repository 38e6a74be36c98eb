// Package dto contains the views the canvas service hands to its callers.
package dto

import (
	"mindcanvas/domain/core/aggregates"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/merge"
	"mindcanvas/infrastructure/persistence/schema"
)

// CanvasView is the live canvas document plus its layout direction.
type CanvasView struct {
	Document  *aggregates.CanvasDocument `json:"document"`
	Direction valueobjects.Direction     `json:"direction"`
}

// MergeView reports a merge on top of the resulting canvas.
type MergeView struct {
	CanvasView
	AddedNodes     int               `json:"addedNodes"`
	AddedEdges     int               `json:"addedEdges"`
	NodeCollisions []string          `json:"nodeCollisions,omitempty"`
	EdgeCollisions []string          `json:"edgeCollisions,omitempty"`
	Reassigned     map[string]string `json:"reassigned,omitempty"`
}

// NewMergeView builds a MergeView from a merge report.
func NewMergeView(canvas CanvasView, addedNodes, addedEdges int, report merge.Report) *MergeView {
	return &MergeView{
		CanvasView:     canvas,
		AddedNodes:     addedNodes,
		AddedEdges:     addedEdges,
		NodeCollisions: report.NodeCollisions,
		EdgeCollisions: report.EdgeCollisions,
		Reassigned:     report.Reassigned,
	}
}

// ImportView describes an imported document.
type ImportView struct {
	CanvasView
	FromVersion string        `json:"fromVersion,omitempty"`
	Steps       []schema.Step `json:"steps,omitempty"`
	Dropped     int           `json:"dropped"`
}
