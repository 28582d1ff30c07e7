package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/roadmap/pkg/analyze"
	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/layout"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// =============================================================================
// Analysis
// =============================================================================

// Analyze computes the metrics of g. It only fails when ctx is already done.
func Analyze(ctx context.Context, g *dag.DAG) (graph.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return graph.Metrics{}, errs.Wrap(errs.ErrCodeCanceled, err, "analyze")
	}
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, g.NodeCount(), g.EdgeCount())
	start := time.Now()

	m := analyze.Compute(g)

	hooks.OnAnalyzeComplete(ctx, len(m.CircularDependencies), time.Since(start))
	return graph.MetricsFrom(m), nil
}

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout positions every node of g and returns the serializable
// layout. g is not modified. Options are validated and defaulted first.
func GenerateLayout(ctx context.Context, g *dag.DAG, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	alg := layout.Algorithm(opts.Algorithm)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Algorithm, g.NodeCount())
	start := time.Now()

	positioned, err := layout.Apply(ctx, g, alg, opts.Layout)

	hooks.OnLayoutComplete(ctx, opts.Algorithm, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return graph.Layout{}, errs.Wrap(errs.ErrCodeCanceled, err, "layout %s", alg)
		}
		return graph.Layout{}, err
	}

	opts.Logger.Debug("layout applied", "algorithm", alg, "nodes", positioned.NodeCount())
	return graph.NewLayout(positioned, opts.Algorithm, opts.Layout.NodeWidth, opts.Layout.NodeHeight), nil
}
