package valueobjects

import (
	"fmt"
	"strings"
)

// Direction is the flow direction of a layered layout.
type Direction string

const (
	// TopToBottom places ranks as rows, edges flowing downwards.
	TopToBottom Direction = "TB"
	// LeftToRight places ranks as columns, edges flowing rightwards.
	LeftToRight Direction = "LR"
)

// DefaultDirection is used when no direction is given
const DefaultDirection = TopToBottom

// ParseDirection accepts the short and long spellings of a direction.
// An empty string yields the default.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tb", "top-to-bottom":
		return TopToBottom, nil
	case "lr", "left-to-right":
		return LeftToRight, nil
	default:
		return "", fmt.Errorf("unknown layout direction %q", s)
	}
}

// IsHorizontal reports whether ranks advance along the x axis
func (d Direction) IsHorizontal() bool {
	return d == LeftToRight
}

// String returns the string representation
func (d Direction) String() string {
	if d == "" {
		return string(DefaultDirection)
	}
	return string(d)
}

// Side is the border of a node an edge attaches to.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// ConnectionSides returns the incoming and outgoing sides for a direction.
func (d Direction) ConnectionSides() (incoming, outgoing Side) {
	if d.IsHorizontal() {
		return SideLeft, SideRight
	}
	return SideTop, SideBottom
}
