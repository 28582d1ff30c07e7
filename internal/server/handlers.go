package server

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/render/nodelink"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.editor.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Get().Version,
		Nodes:   len(snap.Nodes),
		Edges:   len(snap.Edges),
	})
}

// =============================================================================
// Stateless pipeline endpoints
// =============================================================================

// pipelineOptions copies the server defaults and applies query overrides.
func (s *Server) pipelineOptions(r *http.Request) pipeline.Options {
	opts := s.defaults
	opts.Formats = nil
	q := r.URL.Query()
	if alg := q.Get("algorithm"); alg != "" {
		opts.Algorithm = alg
	}
	if d, err := strconv.ParseBool(q.Get("detailed")); err == nil {
		opts.Detailed = d
	}
	opts.Logger = s.logger
	return opts
}

// readGraph decodes and validates a graph body.
func readGraph(w http.ResponseWriter, r *http.Request) (*dag.DAG, error) {
	var gj graph.Graph
	if err := decodeJSON(w, r, &gj); err != nil {
		return nil, err
	}
	return graph.ToDAG(gj)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	g, err := readGraph(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.runner.Analyze(r.Context(), g, s.pipelineOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, err := readGraph(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts := s.pipelineOptions(r)
	l, err := s.runner.GenerateLayout(r.Context(), g, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.runner.Analyze(r.Context(), g, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l.Metrics = &m
	writeJSON(w, http.StatusOK, l)
}

// handleRender draws the posted graph. A graph whose nodes all carry
// positions is drawn as placed; otherwise it is laid out first.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	g, err := readGraph(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts := s.pipelineOptions(r)
	opts.Formats = []string{format}
	if err := opts.ValidateForLayout(); err != nil {
		writeError(w, r, err)
		return
	}

	var l graph.Layout
	if nodelink.Positioned(g) {
		l = graph.NewLayout(g, "", opts.Layout.NodeWidth, opts.Layout.NodeHeight)
	} else if l, err = s.runner.GenerateLayout(r.Context(), g, opts); err != nil {
		writeError(w, r, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}
