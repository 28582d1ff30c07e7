package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/observability"
)

func roadmap(t *testing.T) *dag.DAG {
	t.Helper()
	g, err := dag.FromSlices(
		[]dag.Node{
			{ID: "design", Data: dag.NodeData{Label: "Design"}},
			{ID: "build", Data: dag.NodeData{Label: "Build"}},
			{ID: "launch", Data: dag.NodeData{Label: "Launch", Type: dag.TypeMilestone}},
			{ID: "docs"},
		},
		[]dag.Edge{
			{ID: "e1", Source: "design", Target: "build"},
			{ID: "e2", Source: "build", Target: "launch"},
		},
	)
	if err != nil {
		t.Fatalf("FromSlices() error = %v", err)
	}
	return g
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// stuffedCache answers every Get with the same payload and counts calls.
type stuffedCache struct {
	payload    []byte
	gets, sets int
}

func (c *stuffedCache) Get(context.Context, string) ([]byte, bool, error) {
	c.gets++
	return c.payload, true, nil
}

func (c *stuffedCache) Set(context.Context, string, []byte, time.Duration) error {
	c.sets++
	return nil
}

func (c *stuffedCache) Delete(context.Context, string) error { return nil }
func (c *stuffedCache) Close() error                         { return nil }

func TestAnalyzeNeverUsesCache(t *testing.T) {
	c := &stuffedCache{payload: []byte(`{"totalNodes":999,"maxDepth":42}`)}
	r := NewRunner(c, nil, nil)

	for range 2 {
		m, err := r.Analyze(context.Background(), roadmap(t), Options{})
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if m.TotalNodes != 4 || m.MaxDepth != 2 {
			t.Errorf("Analyze() = %d nodes depth %d, want 4 nodes depth 2", m.TotalNodes, m.MaxDepth)
		}
	}
	if c.gets != 0 || c.sets != 0 {
		t.Errorf("cache calls = %d gets %d sets, want none", c.gets, c.sets)
	}
}

func TestAnalyzeLeavesFileCacheEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	if _, err := r.Analyze(context.Background(), roadmap(t), Options{}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if len(files) != 0 {
		t.Errorf("cache files after Analyze = %v, want none", files)
	}
}

func TestExecute(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatDOT, FormatJSON}}

	res, err := r.Execute(ctx, roadmap(t), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %+v, want 4 nodes 2 edges", res.Stats)
	}
	if res.Metrics.MaxDepth != 2 {
		t.Errorf("Metrics.MaxDepth = %d, want 2", res.Metrics.MaxDepth)
	}
	if got := strings.Join(res.Metrics.IsolatedNodes, ","); got != "docs" {
		t.Errorf("Metrics.IsolatedNodes = %q, want docs", got)
	}
	if res.Layout.Algorithm != DefaultAlgorithm {
		t.Errorf("Layout.Algorithm = %q, want %q", res.Layout.Algorithm, DefaultAlgorithm)
	}
	if res.Layout.Metrics == nil || res.Layout.Metrics.MaxDepth != 2 {
		t.Errorf("Layout.Metrics = %+v, want attached metrics", res.Layout.Metrics)
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `pos="`) {
		t.Errorf("DOT artifact should pin positions:\n%s", res.Artifacts[FormatDOT])
	}
	l, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("UnmarshalLayout(json artifact) error = %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Errorf("json artifact has %d nodes, want 4", len(l.Nodes))
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run CacheInfo = %+v, want all misses", res.CacheInfo)
	}

	again, err := r.Execute(ctx, roadmap(t), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if want := (CacheInfo{LayoutHit: true, RenderHit: true}); again.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", again.CacheInfo, want)
	}
	if string(again.Artifacts[FormatDOT]) != string(res.Artifacts[FormatDOT]) {
		t.Error("cached DOT differs from the rendered one")
	}
	if again.GraphHash != res.GraphHash {
		t.Errorf("GraphHash changed: %s vs %s", again.GraphHash, res.GraphHash)
	}

	refreshed, err := r.Execute(ctx, roadmap(t), Options{Formats: opts.Formats, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if refreshed.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh CacheInfo = %+v, want all misses", refreshed.CacheInfo)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), roadmap(t), Options{Algorithm: "spiral"})
	if !errs.Is(err, errs.ErrCodeInvalidAlgorithm) {
		t.Errorf("Execute() error = %v, want INVALID_ALGORITHM", err)
	}
	_, err = r.Execute(context.Background(), roadmap(t), Options{Formats: []string{"gif"}})
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Execute() error = %v, want INVALID_FORMAT", err)
	}
}

func TestLayoutCacheKeyedByGraph(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()

	g := roadmap(t)
	if _, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, Options{}); err != nil || hit {
		t.Fatalf("GenerateLayoutWithCacheInfo() hit=%v err=%v, want miss", hit, err)
	}

	// Editing the graph changes its hash.
	_ = g.AddNode(dag.Node{ID: "qa"})
	if _, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, Options{}); err != nil || hit {
		t.Errorf("after edit hit=%v err=%v, want miss", hit, err)
	}

	// A different algorithm is a different key.
	if _, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, Options{Algorithm: "force"}); err != nil || hit {
		t.Errorf("force layout hit=%v err=%v, want miss", hit, err)
	}
	if _, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, Options{Algorithm: "force-directed"}); err != nil || !hit {
		t.Errorf("force-directed after force hit=%v err=%v, want hit", hit, err)
	}
}

func TestGenerateLayoutPositionsEveryNode(t *testing.T) {
	g := roadmap(t)
	l, err := GenerateLayout(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}
	pos := map[string]graph.Position{}
	for _, n := range l.Nodes {
		if n.Position == nil {
			t.Fatalf("node %s has no position", n.ID)
		}
		pos[n.ID] = *n.Position
	}
	if !(pos["design"].Y < pos["build"].Y && pos["build"].Y < pos["launch"].Y) {
		t.Errorf("ranks not top to bottom: %+v", pos)
	}
	for _, n := range g.Nodes() {
		if n.Position != nil {
			t.Errorf("input node %s was modified", n.ID)
		}
	}
}

func TestGenerateLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateLayout(ctx, roadmap(t), Options{Algorithm: "force"})
	if !errs.Is(err, errs.ErrCodeCanceled) {
		t.Errorf("GenerateLayout() error = %v, want CANCELED", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateLayout() error = %v, want to wrap context.Canceled", err)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, roadmap(t)); !errs.Is(err, errs.ErrCodeCanceled) {
		t.Errorf("Analyze() error = %v, want CANCELED", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *recordingHooks) OnLayoutStart(_ context.Context, alg string, _ int) {
	h.record("layout:" + alg)
}

func (h *recordingHooks) OnAnalyzeComplete(context.Context, int, time.Duration) {
	h.record("analyze")
}

func (h *recordingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.record("render:" + strings.Join(formats, "+"))
}

func (h *recordingHooks) OnCacheHit(_ context.Context, kind string)  { h.record("hit:" + kind) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, kind string) { h.record("miss:" + kind) }

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	r := newFileRunner(t)
	opts := Options{Formats: []string{FormatDOT}}
	for range 2 {
		if _, err := r.Execute(context.Background(), roadmap(t), opts); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}

	want := []string{
		"analyze", "miss:layout", "layout:hierarchical", "miss:artifact", "render:dot",
		"analyze", "hit:layout", "hit:artifact",
	}
	if got := strings.Join(h.events, " "); got != strings.Join(want, " ") {
		t.Errorf("hook events = %v, want %v", h.events, want)
	}
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roadmap.yaml")
	if err := graph.WriteGraphFile(roadmap(t), path); err != nil {
		t.Fatalf("WriteGraphFile() error = %v", err)
	}

	g, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("LoadGraph() error = %v", err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 2 {
		t.Errorf("LoadGraph() = %d nodes %d edges, want 4 and 2", g.NodeCount(), g.EdgeCount())
	}

	if _, err := LoadGraph(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("LoadGraph(missing) error = %v, want NOT_FOUND", err)
	}
	if _, err := LoadGraph(""); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("LoadGraph(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadLayout(t *testing.T) {
	l, err := GenerateLayout(context.Background(), roadmap(t), Options{})
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := graph.WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}
	got, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if len(got.Nodes) != len(l.Nodes) || got.Width != l.Width {
		t.Errorf("LoadLayout() = %+v, want %+v", got, l)
	}
}
