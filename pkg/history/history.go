// Package history keeps undo/redo snapshots of a roadmap graph.
//
// A [History] stores immutable copies of (nodes, edges). The editor pushes
// the state it is about to replace before every mutation; [History.Undo]
// hands back the previous state and remembers the current one for
// [History.Redo]. Pushing a new snapshot clears the redo stack.
//
// The past stack is bounded: once it holds [DefaultLimit] snapshots (or the
// configured limit) the oldest one is dropped.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// DefaultLimit is the default number of undo steps kept.
const DefaultLimit = 50

// Snapshot is an immutable copy of a graph state.
type Snapshot struct {
	ID    string
	Label string // what the edit that followed this state did, e.g. "add node"
	At    time.Time
	Nodes []dag.Node
	Edges []dag.Edge
}

// Take captures the current nodes and edges of g. Node values are deep
// copied so later edits to g do not leak into the snapshot.
func Take(g *dag.DAG, label string) Snapshot {
	nodes := g.Nodes()
	s := Snapshot{
		ID:    uuid.NewString(),
		Label: label,
		At:    time.Now(),
		Nodes: make([]dag.Node, len(nodes)),
		Edges: g.Edges(),
	}
	for i, n := range nodes {
		s.Nodes[i] = n.Clone()
	}
	return s
}

// Restore rebuilds a graph from the snapshot. Snapshots are taken from valid
// graphs, so an error here means the snapshot was tampered with.
func (s Snapshot) Restore() (*dag.DAG, error) {
	return dag.FromSlices(s.Nodes, s.Edges)
}

// History holds past and future snapshots.
// History is not safe for concurrent use; the editor guards it.
type History struct {
	past   []Snapshot
	future []Snapshot
	limit  int
}

// New creates a History that keeps at most limit undo steps.
// A limit <= 0 uses DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Push records s as the state before an edit and clears the redo stack.
func (h *History) Push(s Snapshot) {
	h.past = append(h.past, s)
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.future = nil
}

// Undo returns the most recent past snapshot and stores current for Redo.
// current takes over the label of the undone edit so a later Redo reports
// the same label. Returns an ErrCodeNothingToUndo error when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, error) {
	if len(h.past) == 0 {
		return Snapshot{}, errs.New(errs.ErrCodeNothingToUndo, "nothing to undo")
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	current.Label = prev.Label
	h.future = append(h.future, current)
	return prev, nil
}

// Redo returns the most recently undone snapshot and stores current for Undo.
// Returns an ErrCodeNothingToRedo error when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, error) {
	if len(h.future) == 0 {
		return Snapshot{}, errs.New(errs.ErrCodeNothingToRedo, "nothing to redo")
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	current.Label = next.Label
	h.past = append(h.past, current)
	return next, nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Len returns the number of undo and redo steps available.
func (h *History) Len() (undo, redo int) { return len(h.past), len(h.future) }

// Clear drops every snapshot.
func (h *History) Clear() {
	h.past, h.future = nil, nil
}
