package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/editor"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/layout"
)

type deleteNodeResponse struct {
	NodeID       string   `json:"nodeId"`
	RemovedEdges []string `json:"removedEdges"`
}

type historyResponse struct {
	Graph   graph.Graph `json:"graph"`
	CanUndo bool        `json:"canUndo"`
	CanRedo bool        `json:"canRedo"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graph.MetricsFrom(s.editor.Metrics()))
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var n graph.Node
	if err := decodeJSON(w, r, &n); err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := s.editor.AddNode(r.Context(), n.ToDAG())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/nodes/"+stored.ID)
	writeJSON(w, http.StatusCreated, graph.NodeFromDAG(stored))
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := s.editor.Node(id)
	if !ok {
		writeError(w, r, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, graph.NodeFromDAG(n))
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch editor.NodePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.editor.UpdateNode(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.NodeFromDAG(n))
}

// handleMoveNode places a node at an explicit position, as when a node is
// dragged in the editor.
func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p graph.Position
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.editor.MoveNode(r.Context(), id, dag.Position{X: p.X, Y: p.Y}); err != nil {
		writeError(w, r, err)
		return
	}
	n, _ := s.editor.Node(id)
	writeJSON(w, http.StatusOK, graph.NodeFromDAG(n))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.editor.DeleteNode(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ids := make([]string, len(removed))
	for i, e := range removed {
		ids[i] = e.ID
	}
	writeJSON(w, http.StatusOK, deleteNodeResponse{NodeID: id, RemovedEdges: ids})
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var e graph.Edge
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := s.editor.AddEdge(r.Context(), e.ToDAG())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, graph.EdgeFromDAG(stored))
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.DeleteEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Layout and history
// =============================================================================

func (s *Server) handleApplyLayout(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("algorithm")
	if name == "" {
		name = s.defaults.Algorithm
	}
	alg, err := layout.Parse(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.editor.ApplyLayout(r.Context(), alg); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.history(w, r, s.editor.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.history(w, r, s.editor.Redo)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request, step func(ctx context.Context) error) {
	if err := step(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Graph:   s.editor.Snapshot(),
		CanUndo: s.editor.CanUndo(),
		CanRedo: s.editor.CanRedo(),
	})
}
