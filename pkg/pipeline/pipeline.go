// Package pipeline runs the analyze → layout → render stages over a roadmap
// graph, with caching of every derived result.
//
// This package is shared by the CLI and the HTTP server so both entry points
// apply the same defaults, validation and cache keys.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Analyze: Compute cycles, depth, critical path and counts ([analyze.Compute])
//  2. Layout: Position every node with the chosen algorithm ([layout.Apply])
//  3. Render: Generate output in various formats (SVG, DOT, JSON, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, err := pipeline.LoadGraph("roadmap.json")
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Algorithm: "hierarchical",
//	    Formats:   []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	metrics, err := runner.Analyze(ctx, g, opts)
//	l, err := runner.GenerateLayout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
//
// # Caching
//
// Layouts are keyed by the hash of the graph's JSON encoding, artifacts by
// the hash of the layout's. Cached entries are therefore never stale: any
// edit changes the hash. Set [Options.Refresh] to recompute and overwrite.
// Metrics are not cached; they are computed fresh on every request.
//
// [analyze.Compute]: github.com/matzehuels/roadmap/pkg/analyze.Compute
// [layout.Apply]: github.com/matzehuels/roadmap/pkg/layout.Apply
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultAlgorithm is the layout algorithm used when none is given.
const DefaultAlgorithm = string(layout.AlgorithmHierarchical)

// DefaultPNGScale is the resolution multiplier for PNG output.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Algorithm string         `json:"algorithm,omitempty"`
	Layout    layout.Options `json:"layout,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph, unchanged.
	Graph *dag.DAG

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Metrics is the analysis of the graph.
	Metrics graph.Metrics

	// Layout is the positioned graph. Layout.Metrics points at Metrics.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	AnalyzeTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	o.Layout = o.Layout.WithDefaults()
	o.setLogger()
}

// ValidateForLayout sets layout defaults, then canonicalizes the algorithm
// name and checks the layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	alg, err := layout.Parse(o.Algorithm)
	if err != nil {
		return err
	}
	o.Algorithm = string(alg)
	return o.Layout.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm: o.Algorithm,
		Options:   o.Layout,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
