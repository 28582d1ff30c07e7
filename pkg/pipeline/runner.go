package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, g *dag.DAG, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Graph:     g,
		GraphHash: GraphHash(g),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Analyze
	analyzeStart := time.Now()
	metrics, err := r.Analyze(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Metrics = metrics
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	r.Logger.Info("analyzed graph",
		"nodes", metrics.TotalNodes,
		"edges", metrics.TotalEdges,
		"cycles", len(metrics.CircularDependencies),
		"maxDepth", metrics.MaxDepth,
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	l.Metrics = &result.Metrics
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"algorithm", l.Algorithm,
		"width", l.Width,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Analyze computes the metrics of g. Metrics are derived from the current
// snapshot on every call and never touch the cache.
func (r *Runner) Analyze(ctx context.Context, g *dag.DAG, opts Options) (graph.Metrics, error) {
	r.applyLogger(&opts)
	m, err := Analyze(ctx, g)
	if err != nil {
		return graph.Metrics{}, err
	}
	opts.Logger.Debug("analyzed graph", "nodes", m.TotalNodes, "cycles", len(m.CircularDependencies))
	return m, nil
}

// GenerateLayoutWithCacheInfo generates a layout with caching and returns
// cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g *dag.DAG, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(GraphHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cacheKey); ok {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "err", err)
		}
	}

	l, err := GenerateLayout(ctx, g, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if data, err := graph.MarshalLayout(l); err == nil {
		r.cacheSet(ctx, cacheKey, data, cache.TTLLayout)
	}
	return l, false, nil
}

// GenerateLayout is a convenience wrapper that calls
// GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g *dag.DAG, opts Options) (graph.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The hit flag is true only if every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.cacheGet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderFromLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.cacheSet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// GraphHash returns the content hash of g's JSON encoding.
func GraphHash(g *dag.DAG) string {
	data, _ := graph.MarshalGraph(g)
	return cache.Hash(data)
}

// cacheGet reads key and reports the lookup to the cache hooks. Cache
// errors count as misses: the pipeline never fails because of its cache.
func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyKind(key))
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyKind(key))
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyKind(key), len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
