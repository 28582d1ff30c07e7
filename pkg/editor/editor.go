package editor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/analyze"
	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/events"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/history"
	"github.com/matzehuels/roadmap/pkg/layout"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// Options configures an Editor. The zero value is ready to use.
type Options struct {
	// HistoryLimit bounds the undo stack. Default: history.DefaultLimit.
	HistoryLimit int

	// Publisher receives change events. Default: events.NoopPublisher.
	Publisher events.Publisher

	// Logger receives debug output about edits. Default: discard.
	Logger *log.Logger

	// Layout configures ApplyLayout.
	Layout layout.Options
}

// Editor is a concurrency-safe editing session over one roadmap graph.
type Editor struct {
	mu         sync.RWMutex
	g          *dag.DAG
	hist       *history.History
	metrics    analyze.Metrics
	pub        events.Publisher
	logger     *log.Logger
	layoutOpts layout.Options
}

// New starts a session on a private copy of g. A nil g starts empty.
func New(g *dag.DAG, opts Options) *Editor {
	if g == nil {
		g = dag.New()
	} else {
		g = g.Clone()
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Editor{
		g:          g,
		hist:       history.New(opts.HistoryLimit),
		metrics:    analyze.Compute(g),
		pub:        opts.Publisher,
		logger:     opts.Logger,
		layoutOpts: opts.Layout,
	}
}

// =============================================================================
// Readers
// =============================================================================

// Graph returns a copy of the current graph.
func (e *Editor) Graph() *dag.DAG {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.g.Clone()
}

// Snapshot returns the current graph in wire form.
func (e *Editor) Snapshot() graph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return graph.FromDAG(e.g)
}

// Metrics returns the analytics of the current graph.
func (e *Editor) Metrics() analyze.Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics
}

// Node returns a copy of the node with the given ID.
func (e *Editor) Node(id string) (dag.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.g.Node(id)
	if !ok {
		return dag.Node{}, false
	}
	return n.Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanRedo()
}

// =============================================================================
// Mutation plumbing
// =============================================================================

// change is the event a successful edit publishes.
type change struct {
	topic string
	event any
}

// editFunc applies an edit to a private copy of the graph. It may return
// the copy itself or a new graph (layout does).
type editFunc func(g *dag.DAG) (*dag.DAG, change, error)

// mutate runs fn under the write lock and commits its result.
func (e *Editor) mutate(ctx context.Context, op string, fn editFunc) (err error) {
	start := time.Now()
	defer func() { observability.Editor().OnEdit(ctx, op, time.Since(start), err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	before := history.Take(e.g, op)
	next, ch, err := fn(e.g.Clone())
	if err != nil {
		return mapError(op, err)
	}
	e.hist.Push(before)
	e.commit(ctx, op, next, ch)
	return nil
}

// commit installs g, recomputes metrics and publishes. Callers hold e.mu.
func (e *Editor) commit(ctx context.Context, op string, g *dag.DAG, ch change) {
	e.g = g
	e.metrics = analyze.Compute(g)
	undo, redo := e.hist.Len()
	e.logger.Debug("graph updated",
		"op", op,
		"nodes", e.metrics.TotalNodes,
		"edges", e.metrics.TotalEdges,
		"cycles", len(e.metrics.CircularDependencies),
		"maxDepth", e.metrics.MaxDepth,
		"undo", undo,
		"redo", redo)

	e.publish(ctx, ch.topic, ch.event)
	e.publish(ctx, events.TopicMetricsUpdated, events.MetricsUpdated{Metrics: graph.MetricsFrom(e.metrics)})
}

func (e *Editor) publish(ctx context.Context, topic string, event any) {
	if err := e.pub.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("publish failed", "topic", topic, "error", err)
	}
}

// mapError attaches an error code to graph errors.
func mapError(op string, err error) error {
	if errs.GetCode(err) != "" {
		return err
	}
	code := errs.ErrCodeInvalidInput
	switch {
	case errors.Is(err, dag.ErrUnknownNode):
		code = errs.ErrCodeNodeNotFound
	case errors.Is(err, dag.ErrUnknownEdge):
		code = errs.ErrCodeEdgeNotFound
	case errors.Is(err, dag.ErrDuplicateNodeID), errors.Is(err, dag.ErrDuplicateEdgeID):
		code = errs.ErrCodeConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = errs.ErrCodeCanceled
	}
	return errs.Wrap(code, err, "%s", op)
}
