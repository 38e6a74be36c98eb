package valueobjects

import (
	"fmt"

	"github.com/google/uuid"
)

// NewNodeID creates a random id for a node added by hand on the canvas.
// Generated graphs bring their own ids.
func NewNodeID() string {
	return uuid.New().String()
}

// EdgeID derives an edge id from its endpoints and an ordinal.
// The ordinal keeps parallel edges between the same pair distinct.
func EdgeID(source, target string, ordinal int) string {
	return fmt.Sprintf("e-%s-%s-%d", source, target, ordinal)
}
