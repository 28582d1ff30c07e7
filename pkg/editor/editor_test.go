package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/events"
	"github.com/matzehuels/roadmap/pkg/layout"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

func newEditor(t *testing.T, ids ...string) (*Editor, *recordingPublisher) {
	t.Helper()
	g := dag.New()
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q) error = %v", id, err)
		}
	}
	pub := &recordingPublisher{}
	return New(g, Options{Publisher: pub}), pub
}

func TestNewCopiesGraph(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a"})
	ed := New(g, Options{})

	_ = g.AddNode(dag.Node{ID: "b"})
	if got := ed.Graph().NodeCount(); got != 1 {
		t.Errorf("NodeCount() = %d, want 1", got)
	}
	if got := ed.Metrics().TotalNodes; got != 1 {
		t.Errorf("Metrics().TotalNodes = %d, want 1", got)
	}
}

func TestNewNilGraph(t *testing.T) {
	ed := New(nil, Options{})
	if got := ed.Graph().NodeCount(); got != 0 {
		t.Errorf("NodeCount() = %d, want 0", got)
	}
	if ed.CanUndo() || ed.CanRedo() {
		t.Error("fresh editor should have no history")
	}
}

func TestAddNodeGeneratesID(t *testing.T) {
	ed, pub := newEditor(t)
	n, err := ed.AddNode(context.Background(), dag.Node{Data: dag.NodeData{Label: "Design"}})
	if err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if n.ID == "" {
		t.Fatal("AddNode() returned empty ID")
	}
	if n.Data.Status != dag.StatusPlanning || n.Data.Type != dag.TypeTask {
		t.Errorf("defaults not applied: %+v", n.Data)
	}

	want := []string{events.TopicNodeAdded, events.TopicMetricsUpdated}
	if got := pub.Topics(); !equal(got, want) {
		t.Errorf("topics = %v, want %v", got, want)
	}
	if got := ed.Metrics().TotalNodes; got != 1 {
		t.Errorf("Metrics().TotalNodes = %d, want 1", got)
	}
}

func TestAddNodeErrors(t *testing.T) {
	tests := []struct {
		name string
		node dag.Node
		code errs.Code
	}{
		{"duplicate", dag.Node{ID: "a"}, errs.ErrCodeConflict},
		{"bad status", dag.Node{ID: "x", Data: dag.NodeData{Status: "done-ish"}}, errs.ErrCodeInvalidInput},
		{"bad progress", dag.Node{ID: "x", Data: dag.NodeData{Progress: dag.IntPtr(140)}}, errs.ErrCodeInvalidInput},
		{"control char", dag.Node{ID: "x\n"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, pub := newEditor(t, "a")
			_, err := ed.AddNode(context.Background(), tt.node)
			if !errs.Is(err, tt.code) {
				t.Errorf("AddNode() error = %v, want code %s", err, tt.code)
			}
			if ed.CanUndo() {
				t.Error("failed edit pushed history")
			}
			if len(pub.Topics()) != 0 {
				t.Errorf("failed edit published %v", pub.Topics())
			}
		})
	}
}

func TestUpdateNode(t *testing.T) {
	ed, _ := newEditor(t, "a")
	ctx := context.Background()

	status := dag.StatusBlocked
	label := "Alpha"
	n, err := ed.UpdateNode(ctx, "a", NodePatch{Status: &status, Label: &label, Progress: dag.IntPtr(30)})
	if err != nil {
		t.Fatalf("UpdateNode() error = %v", err)
	}
	if n.Data.Status != dag.StatusBlocked || n.Data.Label != "Alpha" || *n.Data.Progress != 30 {
		t.Errorf("UpdateNode() = %+v", n.Data)
	}
	if got := ed.Metrics().NodesByStatus[dag.StatusBlocked]; got != 1 {
		t.Errorf("NodesByStatus[blocked] = %d, want 1", got)
	}

	if _, err := ed.UpdateNode(ctx, "ghost", NodePatch{}); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("UpdateNode(ghost) error = %v, want NODE_NOT_FOUND", err)
	}
	bad := dag.Status("nope")
	if _, err := ed.UpdateNode(ctx, "a", NodePatch{Status: &bad}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("UpdateNode(bad status) error = %v, want INVALID_INPUT", err)
	}
	if got, _ := ed.Node("a"); got.Data.Status != dag.StatusBlocked {
		t.Errorf("failed update changed status to %s", got.Data.Status)
	}
}

func TestMoveNode(t *testing.T) {
	ed, _ := newEditor(t, "a")
	if err := ed.MoveNode(context.Background(), "a", dag.Position{X: 10, Y: 20}); err != nil {
		t.Fatalf("MoveNode() error = %v", err)
	}
	n, _ := ed.Node("a")
	if n.Position == nil || *n.Position != (dag.Position{X: 10, Y: 20}) {
		t.Errorf("Position = %v, want {10 20}", n.Position)
	}
	if err := ed.MoveNode(context.Background(), "b", dag.Position{}); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("MoveNode(b) error = %v, want NODE_NOT_FOUND", err)
	}
}

func TestDeleteNodeRemovesIncidentEdges(t *testing.T) {
	ed, pub := newEditor(t, "a", "b", "c")
	ctx := context.Background()
	for _, e := range []dag.Edge{{ID: "ab", Source: "a", Target: "b"}, {ID: "bc", Source: "b", Target: "c"}, {ID: "ac", Source: "a", Target: "c"}} {
		if _, err := ed.AddEdge(ctx, e); err != nil {
			t.Fatalf("AddEdge(%s) error = %v", e.ID, err)
		}
	}

	removed, err := ed.DeleteNode(ctx, "b")
	if err != nil {
		t.Fatalf("DeleteNode() error = %v", err)
	}
	if len(removed) != 2 || removed[0].ID != "ab" || removed[1].ID != "bc" {
		t.Errorf("DeleteNode() removed = %v, want [ab bc]", removed)
	}
	g := ed.Graph()
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph = %d nodes %d edges, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	topics := pub.Topics()
	if topics[len(topics)-2] != events.TopicNodeDeleted {
		t.Errorf("last change topic = %s, want %s", topics[len(topics)-2], events.TopicNodeDeleted)
	}
}

func TestAddEdge(t *testing.T) {
	ed, _ := newEditor(t, "a", "b")
	ctx := context.Background()

	e, err := ed.AddEdge(ctx, dag.Edge{Source: "a", Target: "b"})
	if err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if e.ID == "" || e.Data.DependencyType != dag.DependencyBlocks {
		t.Errorf("AddEdge() = %+v, want generated ID and blocks", e)
	}

	tests := []struct {
		name string
		edge dag.Edge
		code errs.Code
	}{
		{"unknown source", dag.Edge{Source: "x", Target: "b"}, errs.ErrCodeInvalidInput},
		{"unknown target", dag.Edge{Source: "a", Target: "y"}, errs.ErrCodeInvalidInput},
		{"duplicate id", dag.Edge{ID: e.ID, Source: "b", Target: "a"}, errs.ErrCodeConflict},
		{"bad dependency", dag.Edge{Source: "a", Target: "b", Data: dag.EdgeData{DependencyType: "owns"}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ed.AddEdge(ctx, tt.edge); !errs.Is(err, tt.code) {
				t.Errorf("AddEdge() error = %v, want code %s", err, tt.code)
			}
		})
	}
	if got := ed.Graph().EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
}

func TestDeleteEdge(t *testing.T) {
	ed, _ := newEditor(t, "a", "b")
	ctx := context.Background()
	_, _ = ed.AddEdge(ctx, dag.Edge{ID: "e1", Source: "a", Target: "b"})

	if err := ed.DeleteEdge(ctx, "e1"); err != nil {
		t.Fatalf("DeleteEdge() error = %v", err)
	}
	if err := ed.DeleteEdge(ctx, "e1"); !errs.Is(err, errs.ErrCodeEdgeNotFound) {
		t.Errorf("DeleteEdge() twice error = %v, want EDGE_NOT_FOUND", err)
	}
}

func TestMetricsTrackEdits(t *testing.T) {
	ed, _ := newEditor(t, "a", "b")
	ctx := context.Background()
	_, _ = ed.AddEdge(ctx, dag.Edge{ID: "ab", Source: "a", Target: "b"})
	_, _ = ed.AddEdge(ctx, dag.Edge{ID: "ba", Source: "b", Target: "a"})

	m := ed.Metrics()
	if !m.HasCycles() {
		t.Fatal("Metrics().HasCycles() = false after closing a cycle")
	}
	if err := ed.DeleteEdge(ctx, "ba"); err != nil {
		t.Fatalf("DeleteEdge() error = %v", err)
	}
	m = ed.Metrics()
	if m.HasCycles() {
		t.Errorf("cycles = %v after breaking the cycle", m.CircularDependencies)
	}
	if m.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", m.MaxDepth)
	}
}

func TestUndoRedo(t *testing.T) {
	ed, pub := newEditor(t)
	ctx := context.Background()

	if err := ed.Undo(ctx); !errs.Is(err, errs.ErrCodeNothingToUndo) {
		t.Errorf("Undo() on fresh editor error = %v, want NOTHING_TO_UNDO", err)
	}
	if err := ed.Redo(ctx); !errs.Is(err, errs.ErrCodeNothingToRedo) {
		t.Errorf("Redo() on fresh editor error = %v, want NOTHING_TO_REDO", err)
	}

	_, _ = ed.AddNode(ctx, dag.Node{ID: "a"})
	_, _ = ed.AddNode(ctx, dag.Node{ID: "b"})

	if err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := ed.Graph().NodeIDList(); !equal(got, []string{"a"}) {
		t.Errorf("after undo nodes = %v, want [a]", got)
	}
	if got := ed.Metrics().TotalNodes; got != 1 {
		t.Errorf("Metrics().TotalNodes after undo = %d, want 1", got)
	}
	if !ed.CanRedo() {
		t.Error("CanRedo() = false after undo")
	}

	if err := ed.Redo(ctx); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if got := ed.Graph().NodeIDList(); !equal(got, []string{"a", "b"}) {
		t.Errorf("after redo nodes = %v, want [a b]", got)
	}

	_ = ed.Undo(ctx)
	_, _ = ed.AddNode(ctx, dag.Node{ID: "c"})
	if ed.CanRedo() {
		t.Error("CanRedo() = true after a new edit")
	}

	var sawUndo, sawRedo bool
	for _, topic := range pub.Topics() {
		sawUndo = sawUndo || topic == events.TopicHistoryUndo
		sawRedo = sawRedo || topic == events.TopicHistoryRedo
	}
	if !sawUndo || !sawRedo {
		t.Errorf("topics = %v, want undo and redo events", pub.Topics())
	}
}

func TestHistoryLimit(t *testing.T) {
	ed := New(nil, Options{HistoryLimit: 2})
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, _ = ed.AddNode(ctx, dag.Node{ID: id})
	}
	_ = ed.Undo(ctx)
	_ = ed.Undo(ctx)
	if err := ed.Undo(ctx); !errs.Is(err, errs.ErrCodeNothingToUndo) {
		t.Errorf("third Undo() error = %v, want NOTHING_TO_UNDO", err)
	}
	if got := ed.Graph().NodeIDList(); !equal(got, []string{"a"}) {
		t.Errorf("nodes = %v, want [a]", got)
	}
}

func TestApplyLayout(t *testing.T) {
	ed, pub := newEditor(t, "a", "b")
	ctx := context.Background()
	_, _ = ed.AddEdge(ctx, dag.Edge{Source: "a", Target: "b"})

	if err := ed.ApplyLayout(ctx, layout.AlgorithmHierarchical); err != nil {
		t.Fatalf("ApplyLayout() error = %v", err)
	}
	for _, n := range ed.Graph().Nodes() {
		if n.Position == nil {
			t.Errorf("node %s has no position", n.ID)
		}
	}
	a, _ := ed.Node("a")
	b, _ := ed.Node("b")
	if a.Position.Y >= b.Position.Y {
		t.Errorf("a.Y = %g, b.Y = %g, want a above b", a.Position.Y, b.Position.Y)
	}
	topics := pub.Topics()
	if topics[len(topics)-2] != events.TopicLayoutApplied {
		t.Errorf("topic = %s, want %s", topics[len(topics)-2], events.TopicLayoutApplied)
	}

	if err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if a, _ := ed.Node("a"); a.Position != nil {
		t.Errorf("undo kept layout position %v", a.Position)
	}

	if err := ed.ApplyLayout(ctx, "spiral"); !errs.Is(err, errs.ErrCodeInvalidAlgorithm) {
		t.Errorf("ApplyLayout(spiral) error = %v, want INVALID_ALGORITHM", err)
	}
}

func TestApplyLayoutCanceled(t *testing.T) {
	ed, _ := newEditor(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ed.ApplyLayout(ctx, layout.AlgorithmForceDirected)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ApplyLayout() error = %v, want context.Canceled", err)
	}
	if ed.CanUndo() {
		t.Error("canceled layout pushed history")
	}
}

func TestReplace(t *testing.T) {
	ed, pub := newEditor(t, "a")
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "x"})
	_ = g.AddNode(dag.Node{ID: "y"})

	if err := ed.Replace(context.Background(), g, "roadmap.json"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if got := ed.Graph().NodeIDList(); !equal(got, []string{"x", "y"}) {
		t.Errorf("nodes = %v, want [x y]", got)
	}
	if got := pub.Topics()[0]; got != events.TopicGraphReloaded {
		t.Errorf("topic = %s, want %s", got, events.TopicGraphReloaded)
	}
	if err := ed.Replace(context.Background(), nil, ""); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Replace(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestPublishErrorDoesNotFailEdit(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	ed := New(nil, Options{Publisher: pub})
	if _, err := ed.AddNode(context.Background(), dag.Node{ID: "a"}); err != nil {
		t.Errorf("AddNode() error = %v, want nil", err)
	}
}

func TestConcurrentEdits(t *testing.T) {
	ed := New(nil, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ed.AddNode(ctx, dag.Node{})
			_ = ed.Metrics()
			_ = ed.Snapshot()
		}()
	}
	wg.Wait()

	if got := ed.Graph().NodeCount(); got != 20 {
		t.Errorf("NodeCount() = %d, want 20", got)
	}
	if got := ed.Metrics().TotalNodes; got != 20 {
		t.Errorf("Metrics().TotalNodes = %d, want 20", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
