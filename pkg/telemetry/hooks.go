package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/matzehuels/roadmap/pkg/observability"
)

// MeterName is the instrumentation scope of every roadmap instrument.
const MeterName = "github.com/matzehuels/roadmap"

// Hooks records observability events as OpenTelemetry metrics. It
// implements every hook interface of the observability package.
type Hooks struct {
	analyses       metric.Int64Counter
	analyzeLatency metric.Float64Histogram
	cyclesFound    metric.Int64Counter
	layouts        metric.Int64Counter
	layoutLatency  metric.Float64Histogram
	renders        metric.Int64Counter
	renderLatency  metric.Float64Histogram
	edits          metric.Int64Counter
	editLatency    metric.Float64Histogram
	cacheLookups   metric.Int64Counter
	cacheBytes     metric.Int64Counter
	httpRequests   metric.Int64Counter
	httpLatency    metric.Float64Histogram
	httpInFlight   metric.Int64UpDownCounter
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.EditorHooks   = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)

// NewHooks creates the instruments on meter. A nil meter uses the global
// meter provider.
func NewHooks(meter metric.Meter) (*Hooks, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	h := &Hooks{}
	var err error

	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err != nil {
			return
		}
		if *dst, err = meter.Int64Counter(name, metric.WithDescription(desc)); err != nil {
			err = fmt.Errorf("create %s: %w", name, err)
		}
	}
	histogram := func(dst *metric.Float64Histogram, name, desc string) {
		if err != nil {
			return
		}
		if *dst, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s")); err != nil {
			err = fmt.Errorf("create %s: %w", name, err)
		}
	}

	counter(&h.analyses, "roadmap_analyses_total", "Graph analyses run")
	histogram(&h.analyzeLatency, "roadmap_analyze_duration_seconds", "Duration of graph analysis")
	counter(&h.cyclesFound, "roadmap_cycles_found_total", "Circular dependencies reported by analysis")
	counter(&h.layouts, "roadmap_layouts_total", "Layouts computed by algorithm and status")
	histogram(&h.layoutLatency, "roadmap_layout_duration_seconds", "Duration of layout computation")
	counter(&h.renders, "roadmap_renders_total", "Render runs by status")
	histogram(&h.renderLatency, "roadmap_render_duration_seconds", "Duration of rendering")
	counter(&h.edits, "roadmap_edits_total", "Editor operations by op and status")
	histogram(&h.editLatency, "roadmap_edit_duration_seconds", "Duration of editor operations")
	counter(&h.cacheLookups, "roadmap_cache_lookups_total", "Cache lookups by key type and result")
	counter(&h.cacheBytes, "roadmap_cache_written_bytes_total", "Bytes written to the cache")
	counter(&h.httpRequests, "roadmap_http_requests_total", "HTTP requests by method, route and status")
	histogram(&h.httpLatency, "roadmap_http_request_duration_seconds", "HTTP request duration")
	if err != nil {
		return nil, err
	}
	if h.httpInFlight, err = meter.Int64UpDownCounter("roadmap_http_active_requests",
		metric.WithDescription("HTTP requests in flight")); err != nil {
		return nil, fmt.Errorf("create roadmap_http_active_requests: %w", err)
	}
	return h, nil
}

// Register installs h as the global observability hooks.
func Register(h *Hooks) {
	observability.SetPipelineHooks(h)
	observability.SetEditorHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "error")
	}
	return attribute.String("status", "ok")
}

// =============================================================================
// Pipeline
// =============================================================================

func (h *Hooks) OnAnalyzeStart(context.Context, int, int) {}

func (h *Hooks) OnAnalyzeComplete(ctx context.Context, cycles int, d time.Duration) {
	h.analyses.Add(ctx, 1)
	h.analyzeLatency.Record(ctx, d.Seconds())
	if cycles > 0 {
		h.cyclesFound.Add(ctx, int64(cycles))
	}
}

func (h *Hooks) OnLayoutStart(context.Context, string, int) {}

func (h *Hooks) OnLayoutComplete(ctx context.Context, algorithm string, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("algorithm", algorithm), statusAttr(err))
	h.layouts.Add(ctx, 1, attrs)
	h.layoutLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("algorithm", algorithm)))
}

func (h *Hooks) OnRenderStart(context.Context, []string) {}

func (h *Hooks) OnRenderComplete(ctx context.Context, _ []string, d time.Duration, err error) {
	h.renders.Add(ctx, 1, metric.WithAttributes(statusAttr(err)))
	h.renderLatency.Record(ctx, d.Seconds())
}

// =============================================================================
// Editor
// =============================================================================

func (h *Hooks) OnEdit(ctx context.Context, op string, d time.Duration, err error) {
	h.edits.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op), statusAttr(err)))
	h.editLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

// =============================================================================
// Cache
// =============================================================================

func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType), attribute.Bool("hit", true)))
}

func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType), attribute.Bool("hit", false)))
}

func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}

// =============================================================================
// HTTP
// =============================================================================

func (h *Hooks) OnRequest(ctx context.Context, _, _ string) {
	h.httpInFlight.Add(ctx, 1)
}

func (h *Hooks) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	h.httpInFlight.Add(ctx, -1)
	h.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	h.httpLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
