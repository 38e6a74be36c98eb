// Package merge folds newly generated elements into an existing canvas.
//
// Identity is the node or edge id. With the default overwrite policy a
// later element replaces an earlier one with the same id but keeps the
// earlier one's slot, so the order of the canvas is stable. The merged
// graph is always laid out again from scratch.
package merge

import (
	"fmt"

	"mindcanvas/domain/core/entities"
	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/layout"
)

// Policy decides what happens when an incoming node id is already taken.
type Policy string

const (
	// PolicyOverwrite lets the incoming node replace the existing one.
	PolicyOverwrite Policy = "overwrite"
	// PolicyReassign gives the incoming node a fresh suffixed id.
	PolicyReassign Policy = "reassign"
)

// ParsePolicy maps a config value to a Policy. Empty means overwrite.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyReassign:
		return PolicyReassign, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// Options configures a Merger.
type Options struct {
	Direction valueobjects.Direction
	Policy    Policy
}

// Report describes what a merge did besides concatenation.
type Report struct {
	// NodeCollisions lists node ids whose earlier value was overwritten.
	NodeCollisions []string
	// EdgeCollisions lists edge ids whose earlier value was overwritten.
	EdgeCollisions []string
	// Reassigned maps original incoming ids to the ids they were given.
	Reassigned map[string]string
}

// HasCollisions reports whether any element was overwritten or renamed.
func (r Report) HasCollisions() bool {
	return len(r.NodeCollisions) > 0 || len(r.EdgeCollisions) > 0 || len(r.Reassigned) > 0
}

// Merger combines graphs and re-lays them out.
type Merger struct {
	engine *layout.Engine
	opts   Options
}

// NewMerger creates a merger that lays out with engine.
func NewMerger(engine *layout.Engine, opts Options) *Merger {
	if opts.Direction == "" {
		opts.Direction = valueobjects.DefaultDirection
	}
	if opts.Policy == "" {
		opts.Policy = PolicyOverwrite
	}
	return &Merger{engine: engine, opts: opts}
}

// Direction returns the layout direction used for merged graphs.
func (m *Merger) Direction() valueobjects.Direction {
	return m.opts.Direction
}

// WithDirection returns a copy of m that lays out in direction.
func (m *Merger) WithDirection(direction valueobjects.Direction) *Merger {
	opts := m.opts
	opts.Direction = direction
	return NewMerger(m.engine, opts)
}

// Merge combines existing and incoming elements and lays the result out.
func (m *Merger) Merge(existingNodes []entities.VisualNode, existingEdges []entities.VisualEdge, incomingNodes []entities.VisualNode, incomingEdges []entities.VisualEdge) layout.Result {
	result, _ := m.MergeWithReport(existingNodes, existingEdges, incomingNodes, incomingEdges)
	return result
}

// MergeWithReport is Merge plus a description of the collisions it resolved.
func (m *Merger) MergeWithReport(existingNodes []entities.VisualNode, existingEdges []entities.VisualEdge, incomingNodes []entities.VisualNode, incomingEdges []entities.VisualEdge) (layout.Result, Report) {
	var report Report

	if m.opts.Policy == PolicyReassign {
		incomingNodes, incomingEdges, report.Reassigned = reassign(existingNodes, incomingNodes, incomingEdges)
	}

	nodes, nodeCollisions := dedupe(append(entities.CloneNodes(existingNodes), entities.CloneNodes(incomingNodes)...),
		func(n entities.VisualNode) string { return n.ID })
	edges, edgeCollisions := dedupe(append(entities.CloneEdges(existingEdges), entities.CloneEdges(incomingEdges)...),
		func(e entities.VisualEdge) string { return e.ID })
	report.NodeCollisions = nodeCollisions
	report.EdgeCollisions = edgeCollisions

	return m.engine.Layout(nodes, edges, m.opts.Direction), report
}

// dedupe keeps one element per key. The last value wins and sits where the
// key first appeared. It also returns the keys that were overwritten.
func dedupe[T any](items []T, key func(T) string) ([]T, []string) {
	slot := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	var collided []string
	seen := make(map[string]bool)

	for _, item := range items {
		k := key(item)
		if i, ok := slot[k]; ok {
			out[i] = item
			if !seen[k] {
				seen[k] = true
				collided = append(collided, k)
			}
			continue
		}
		slot[k] = len(out)
		out = append(out, item)
	}
	return out, collided
}

// reassign renames incoming nodes whose ids are taken and rewrites the
// incoming edges that referenced them. Rewritten edges get new ids.
func reassign(existing, incoming []entities.VisualNode, edges []entities.VisualEdge) ([]entities.VisualNode, []entities.VisualEdge, map[string]string) {
	taken := make(map[string]struct{}, len(existing)+len(incoming))
	for _, n := range existing {
		taken[n.ID] = struct{}{}
	}

	renamed := make(map[string]string)
	nodes := entities.CloneNodes(incoming)
	for i := range nodes {
		id := nodes[i].ID
		if _, ok := taken[id]; !ok {
			taken[id] = struct{}{}
			continue
		}
		fresh := freeID(id, taken)
		taken[fresh] = struct{}{}
		if _, done := renamed[id]; !done {
			renamed[id] = fresh
		}
		nodes[i].ID = fresh
	}
	if len(renamed) == 0 {
		return nodes, entities.CloneEdges(edges), nil
	}

	out := entities.CloneEdges(edges)
	for i := range out {
		src, srcOK := renamed[out[i].Source]
		dst, dstOK := renamed[out[i].Target]
		if !srcOK && !dstOK {
			continue
		}
		if srcOK {
			out[i].Source = src
		}
		if dstOK {
			out[i].Target = dst
		}
		out[i].ID = valueobjects.EdgeID(out[i].Source, out[i].Target, i)
	}
	return nodes, out, renamed
}

func freeID(id string, taken map[string]struct{}) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
