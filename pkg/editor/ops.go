package editor

import (
	"context"
	"time"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/events"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/history"
	"github.com/matzehuels/roadmap/pkg/idgen"
	"github.com/matzehuels/roadmap/pkg/layout"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// NodePatch is a partial node update. Nil fields are left unchanged.
type NodePatch struct {
	Label       *string         `json:"label,omitempty"`
	Status      *dag.Status     `json:"status,omitempty"`
	Owner       *string         `json:"owner,omitempty"`
	Type        *dag.NodeType   `json:"type,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
	StartDate   *string         `json:"startDate,omitempty"`
	EndDate     *string         `json:"endDate,omitempty"`
	Description *string         `json:"description,omitempty"`
	Position    *graph.Position `json:"position,omitempty"`
}

// apply merges the patch into n.
func (p NodePatch) apply(n *dag.Node) {
	set(&n.Data.Label, p.Label)
	set(&n.Data.Status, p.Status)
	set(&n.Data.Owner, p.Owner)
	set(&n.Data.Type, p.Type)
	set(&n.Data.StartDate, p.StartDate)
	set(&n.Data.EndDate, p.EndDate)
	set(&n.Data.Description, p.Description)
	if p.Progress != nil {
		n.Data.Progress = dag.IntPtr(*p.Progress)
	}
	if p.Position != nil {
		n.Position = &dag.Position{X: p.Position.X, Y: p.Position.Y}
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode adds n and returns it as stored, with defaults applied. An empty
// ID is replaced with a generated one.
func (e *Editor) AddNode(ctx context.Context, n dag.Node) (dag.Node, error) {
	if n.ID == "" {
		id, err := idgen.NodeID()
		if err != nil {
			return dag.Node{}, errs.Wrap(errs.ErrCodeInternal, err, "add node")
		}
		n.ID = id
	} else if err := errs.ValidateID("node", n.ID); err != nil {
		return dag.Node{}, err
	}

	var stored dag.Node
	err := e.mutate(ctx, "add node", func(g *dag.DAG) (*dag.DAG, change, error) {
		if err := g.AddNode(n); err != nil {
			return nil, change{}, err
		}
		cur, _ := g.Node(n.ID)
		stored = cur.Clone()
		return g, change{events.TopicNodeAdded, events.NodeAdded{Node: graph.NodeFromDAG(stored)}}, nil
	})
	return stored, err
}

// UpdateNode applies patch to the node with the given ID.
func (e *Editor) UpdateNode(ctx context.Context, id string, patch NodePatch) (dag.Node, error) {
	var stored dag.Node
	err := e.mutate(ctx, "update node", func(g *dag.DAG) (*dag.DAG, change, error) {
		cur, ok := g.Node(id)
		if !ok {
			return nil, change{}, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
		}
		n := cur.Clone()
		patch.apply(&n)
		if err := g.UpdateNode(n); err != nil {
			return nil, change{}, err
		}
		cur, _ = g.Node(id)
		stored = cur.Clone()
		return g, change{events.TopicNodeUpdated, events.NodeUpdated{Node: graph.NodeFromDAG(stored)}}, nil
	})
	return stored, err
}

// MoveNode sets the position of a node.
func (e *Editor) MoveNode(ctx context.Context, id string, p dag.Position) error {
	return e.mutate(ctx, "move node", func(g *dag.DAG) (*dag.DAG, change, error) {
		if err := g.SetPosition(id, p); err != nil {
			return nil, change{}, err
		}
		n, _ := g.Node(id)
		return g, change{events.TopicNodeUpdated, events.NodeUpdated{Node: graph.NodeFromDAG(*n)}}, nil
	})
}

// DeleteNode removes a node and every edge incident to it. It returns the
// removed edges.
func (e *Editor) DeleteNode(ctx context.Context, id string) ([]dag.Edge, error) {
	var removed []dag.Edge
	err := e.mutate(ctx, "delete node", func(g *dag.DAG) (*dag.DAG, change, error) {
		var err error
		if removed, err = g.RemoveNode(id); err != nil {
			return nil, change{}, err
		}
		ids := make([]string, len(removed))
		for i, ed := range removed {
			ids[i] = ed.ID
		}
		return g, change{events.TopicNodeDeleted, events.NodeDeleted{NodeID: id, RemovedEdges: ids}}, nil
	})
	return removed, err
}

// =============================================================================
// Edges
// =============================================================================

// AddEdge adds ed and returns it as stored. An empty ID is replaced with a
// generated one. Both endpoints must exist.
func (e *Editor) AddEdge(ctx context.Context, ed dag.Edge) (dag.Edge, error) {
	if ed.ID == "" {
		id, err := idgen.EdgeID()
		if err != nil {
			return dag.Edge{}, errs.Wrap(errs.ErrCodeInternal, err, "add edge")
		}
		ed.ID = id
	} else if err := errs.ValidateID("edge", ed.ID); err != nil {
		return dag.Edge{}, err
	}

	var stored dag.Edge
	err := e.mutate(ctx, "add edge", func(g *dag.DAG) (*dag.DAG, change, error) {
		if err := g.AddEdge(ed); err != nil {
			return nil, change{}, err
		}
		stored, _ = g.Edge(ed.ID)
		return g, change{events.TopicEdgeAdded, events.EdgeAdded{Edge: graph.EdgeFromDAG(stored)}}, nil
	})
	return stored, err
}

// DeleteEdge removes the edge with the given ID.
func (e *Editor) DeleteEdge(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete edge", func(g *dag.DAG) (*dag.DAG, change, error) {
		if _, err := g.RemoveEdge(id); err != nil {
			return nil, change{}, err
		}
		return g, change{events.TopicEdgeDeleted, events.EdgeDeleted{EdgeID: id}}, nil
	})
}

// =============================================================================
// Whole-graph operations
// =============================================================================

// ApplyLayout positions every node with the given algorithm. Applying a
// layout is undoable like any other edit.
func (e *Editor) ApplyLayout(ctx context.Context, alg layout.Algorithm) error {
	return e.mutate(ctx, "apply layout", func(g *dag.DAG) (*dag.DAG, change, error) {
		hooks := observability.Pipeline()
		hooks.OnLayoutStart(ctx, string(alg), g.NodeCount())
		start := time.Now()
		out, err := layout.Apply(ctx, g, alg, e.layoutOpts)
		hooks.OnLayoutComplete(ctx, string(alg), time.Since(start), err)
		if err != nil {
			return nil, change{}, err
		}
		return out, change{events.TopicLayoutApplied, events.LayoutApplied{Algorithm: string(alg), Nodes: out.NodeCount()}}, nil
	})
}

// Replace swaps in a whole new graph, for example after the backing file
// changed on disk. source describes where it came from.
func (e *Editor) Replace(ctx context.Context, g *dag.DAG, source string) error {
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "reload: nil graph")
	}
	return e.mutate(ctx, "reload", func(*dag.DAG) (*dag.DAG, change, error) {
		next := g.Clone()
		return next, change{events.TopicGraphReloaded, events.GraphReloaded{
			Source: source,
			Nodes:  next.NodeCount(),
			Edges:  next.EdgeCount(),
		}}, nil
	})
}

// Undo restores the state before the most recent edit.
func (e *Editor) Undo(ctx context.Context) error {
	return e.move(ctx, "undo", events.TopicHistoryUndo, e.hist.Undo)
}

// Redo reapplies the most recently undone edit.
func (e *Editor) Redo(ctx context.Context) error {
	return e.move(ctx, "redo", events.TopicHistoryRedo, e.hist.Redo)
}

func (e *Editor) move(ctx context.Context, op, topic string, step func(history.Snapshot) (history.Snapshot, error)) (err error) {
	start := time.Now()
	defer func() { observability.Editor().OnEdit(ctx, op, time.Since(start), err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	target, err := step(history.Take(e.g, ""))
	if err != nil {
		return err
	}
	g, err := target.Restore()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "restore snapshot %s", target.ID)
	}
	e.commit(ctx, op, g, change{topic, events.HistoryMoved{
		Label:   target.Label,
		CanUndo: e.hist.CanUndo(),
		CanRedo: e.hist.CanRedo(),
	}})
	return nil
}
