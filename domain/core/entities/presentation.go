package entities

// DefaultNodeWidth is the width baked into the default node style.
const DefaultNodeWidth = 200

// DefaultNodeStyle is the hand-drawn look applied to new nodes.
func DefaultNodeStyle() Style {
	return Style{
		"background":   "#fff",
		"border":       "2px solid #000",
		"borderRadius": "8px",
		"fontFamily":   "Kalam, cursive",
		"fontSize":     "16px",
		"padding":      "12px",
		"boxShadow":    "4px 4px 0px rgba(0,0,0,1)",
		"width":        DefaultNodeWidth,
	}
}

// DefaultEdgeStyle is the stroke applied to new edges.
func DefaultEdgeStyle() Style {
	return Style{
		"stroke":      "#000",
		"strokeWidth": 2,
	}
}

// DefaultEdgeLabelStyle is the label font applied to new edges.
func DefaultEdgeLabelStyle() Style {
	return Style{
		"fontFamily": "Kalam, cursive",
		"fill":       "#000",
		"fontWeight": 700,
	}
}
