package gemini

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/kaptinlin/jsonschema"

	"mindcanvas/domain/core/entities"
)

// ErrEmptyResponse is returned when the model answers without text.
var ErrEmptyResponse = stderrors.New("empty response from AI")

// parseGraph decodes model output into a concept graph. Output that is not
// valid JSON is repaired once before giving up.
func parseGraph(text string, shape *jsonschema.Schema) (*entities.ConceptGraph, bool, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, false, ErrEmptyResponse
	}

	repaired := false
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return nil, false, fmt.Errorf("decode response: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), &raw); err != nil {
			return nil, false, fmt.Errorf("decode repaired response: %w", err)
		}
		text = fixed
		repaired = true
	}

	if result := shape.Validate(raw); !result.IsValid() {
		problems := make([]string, 0, len(result.Errors))
		for field, e := range result.Errors {
			problems = append(problems, fmt.Sprintf("%s: %s", field, e.Message))
		}
		sort.Strings(problems)
		return nil, repaired, fmt.Errorf("response does not match graph schema: %s", strings.Join(problems, "; "))
	}

	var graph entities.ConceptGraph
	if err := json.Unmarshal([]byte(text), &graph); err != nil {
		return nil, repaired, fmt.Errorf("decode graph: %w", err)
	}
	if graph.Nodes == nil {
		graph.Nodes = []entities.ConceptNode{}
	}
	if graph.Edges == nil {
		graph.Edges = []entities.ConceptEdge{}
	}
	return &graph, repaired, nil
}

// stripCodeFence removes a surrounding markdown fence some models add
// even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
