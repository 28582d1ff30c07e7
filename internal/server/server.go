// Package server exposes the roadmap editor and the stateless analysis,
// layout and render pipeline over HTTP.
//
// Stateless endpoints take a graph in the request body:
//
//	GET  /v1/health
//	POST /v1/analyze            Graph → Metrics
//	POST /v1/layout?algorithm=  Graph → Layout
//	POST /v1/render?format=     Graph or positioned Graph → SVG, DOT, JSON, PNG or PDF
//
// Editor endpoints operate on the server's editing session:
//
//	GET    /v1/graph
//	GET    /v1/metrics
//	POST   /v1/nodes
//	GET    /v1/nodes/{id}
//	PATCH  /v1/nodes/{id}
//	DELETE /v1/nodes/{id}
//	POST   /v1/edges
//	DELETE /v1/edges/{id}
//	POST   /v1/layout/apply?algorithm=
//	POST   /v1/undo
//	POST   /v1/redo
//	GET    /v1/events?topic=   Server-Sent Events stream of editor events
//
// Every response carries an X-Request-ID header, echoed from the request or
// newly generated. Errors are JSON objects {"error", "code", "requestId"}.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/roadmap/pkg/editor"
	"github.com/matzehuels/roadmap/pkg/events"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/telemetry"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 10 << 20

	// shutdownTimeout is how long ListenAndServe waits for in-flight requests.
	shutdownTimeout = 5 * time.Second

	// heartbeatInterval keeps idle SSE connections alive through proxies.
	heartbeatInterval = 15 * time.Second
)

// Options configures a Server.
type Options struct {
	// Editor is the editing session served under /v1. Default: an empty session.
	Editor *editor.Editor

	// Runner executes the stateless endpoints. Default: an uncached runner.
	Runner *pipeline.Runner

	// Broker feeds /v1/events. Without one the endpoint answers 501.
	Broker *events.Broker

	// Pipeline holds defaults for stateless requests (algorithm, layout
	// options). Query parameters override the algorithm.
	Pipeline pipeline.Options

	// RateLimit is the sustained per-client request rate. Zero disables it.
	RateLimit float64
	Burst     int

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler

	Logger *log.Logger
}

// Server is the roadmap HTTP API.
type Server struct {
	editor   *editor.Editor
	runner   *pipeline.Runner
	broker   *events.Broker
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Editor == nil {
		opts.Editor = editor.New(nil, editor.Options{Logger: opts.Logger})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}

	s := &Server{
		editor:   opts.Editor,
		runner:   opts.Runner,
		broker:   opts.Broker,
		defaults: opts.Pipeline,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(telemetry.TracingMiddleware("roadmap/server"))
	r.Use(s.logRequests)
	r.Use(httpHooks)
	r.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		r.Use(newRateLimiter(opts.RateLimit, opts.Burst).middleware)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Get("/graph", s.handleGraph)
		r.Get("/metrics", s.handleMetrics)
		r.Post("/nodes", s.handleAddNode)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Patch("/nodes/{id}", s.handleUpdateNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Put("/nodes/{id}/position", s.handleMoveNode)
		r.Post("/edges", s.handleAddEdge)
		r.Delete("/edges/{id}", s.handleDeleteEdge)
		r.Post("/layout/apply", s.handleApplyLayout)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Get("/events", s.handleEvents)
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Editor returns the session served by s.
func (s *Server) Editor() *editor.Editor {
	return s.editor
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
