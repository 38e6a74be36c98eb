package gemini

import (
	"github.com/kaptinlin/jsonschema"
)

// responseSchema is sent with every request so the model answers with a
// concept graph. It uses the API's OpenAPI subset.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id":      map[string]any{"type": "STRING", "description": "Unique short identifier (e.g., 'n1')"},
					"label":   map[string]any{"type": "STRING", "description": "Visible text on the whiteboard node"},
					"details": map[string]any{"type": "STRING", "description": "A short summary or definition of this concept"},
					"type":    map[string]any{"type": "STRING", "enum": []string{"default", "input", "output"}},
				},
				"required": []string{"id", "label"},
			},
		},
		"edges": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"source": map[string]any{"type": "STRING", "description": "ID of the source node"},
					"target": map[string]any{"type": "STRING", "description": "ID of the target node"},
					"label":  map[string]any{"type": "STRING", "description": "Relationship label (optional)"},
				},
				"required": []string{"source", "target"},
			},
		},
	},
	"required": []string{"nodes", "edges"},
}

// graphShapeSchema checks a decoded response before it is trusted.
// Content is not checked, only shape.
const graphShapeSchema = `{
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "label"],
        "properties": {
          "id": {"type": "string"},
          "label": {"type": "string"},
          "details": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "target"],
        "properties": {
          "source": {"type": "string"},
          "target": {"type": "string"},
          "label": {"type": "string"}
        }
      }
    }
  }
}`

func compileShapeSchema() (*jsonschema.Schema, error) {
	return jsonschema.NewCompiler().Compile([]byte(graphShapeSchema))
}
