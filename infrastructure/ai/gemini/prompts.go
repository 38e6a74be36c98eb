package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"mindcanvas/application/ports"
)

// NoContextFallback stands in for the source document when none was uploaded.
const NoContextFallback = "No original document, infer generic knowledge."

const generateInstruction = `You are an expert Information Architect.
Your task is to analyze the provided text and structure it into a clear, hierarchical Mind Map or Flowchart.
- Extract key concepts as Nodes.
- Define logical relationships as Edges.
- Ensure the 'id's are simple (n1, n2, etc.).
- Keep labels concise (3-5 words max).
- Use 'details' for longer explanations.
- Focus on the main logic flow or topic hierarchy.`

const expandInstruction = `You are an intelligent Whiteboard Assistant.
The user has selected specific nodes on a canvas.
Your task is to generate *NEW* nodes and edges to append to the graph based on their request.

1. Analyze the 'Selected Nodes' and the 'User Instruction'.
2. Reference the 'Original Document Context' if needed for accuracy.
3. Return a JSON containing ONLY the NEW nodes and edges to be added.
4. Ensure new Node IDs do not conflict with existing ones (start IDs with 'new_').
5. Connect new nodes to the existing selected nodes where logical.`

func generatePrompt(text string, limit int) string {
	return "Analyze this text and generate a graph structure:\n\n" + truncate(text, limit)
}

func expandPrompt(req ports.ExpandRequest, limit int) (string, error) {
	selected, err := json.MarshalIndent(req.Selected, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode selected nodes: %w", err)
	}
	source := req.Context
	if strings.TrimSpace(source) == "" {
		source = NoContextFallback
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original Document Context: %s...\n\n", truncate(source, limit))
	fmt.Fprintf(&b, "Selected Nodes Data:\n%s\n\n", selected)
	fmt.Fprintf(&b, "User Instruction:\n%q\n", req.Prompt)
	return b.String(), nil
}

// truncate keeps at most limit runes. A non-positive limit keeps everything.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
