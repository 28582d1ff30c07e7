package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is the serialization format of a laid-out roadmap: the graph with
// every node positioned, plus the frame needed to draw it.
//
// Width and Height span the node boxes (NodeWidth by NodeHeight each) from
// the origin, so renderers can size their canvas without recomputing bounds.
type Layout struct {
	Algorithm  string   `json:"algorithm"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	NodeWidth  float64  `json:"nodeWidth"`
	NodeHeight float64  `json:"nodeHeight"`
	Nodes      []Node   `json:"nodes"`
	Edges      []Edge   `json:"edges"`
	Metrics    *Metrics `json:"metrics,omitempty"`
}

// NewLayout builds a Layout from a positioned DAG. Nodes without a position
// are placed at the origin.
func NewLayout(g *dag.DAG, algorithm string, nodeW, nodeH float64) Layout {
	gj := FromDAG(g)
	l := Layout{
		Algorithm:  algorithm,
		NodeWidth:  nodeW,
		NodeHeight: nodeH,
		Nodes:      gj.Nodes,
		Edges:      gj.Edges,
	}
	for i := range l.Nodes {
		if l.Nodes[i].Position == nil {
			l.Nodes[i].Position = &Position{}
		}
		p := l.Nodes[i].Position
		l.Width = max(l.Width, p.X+nodeW)
		l.Height = max(l.Height, p.Y+nodeH)
	}
	return l
}

// Graph returns the positioned graph carried by the layout.
func (l Layout) Graph() Graph {
	return Graph{Nodes: l.Nodes, Edges: l.Edges}
}

// DAG converts the layout back into a validated DAG with positions set.
func (l Layout) DAG() (*dag.DAG, error) {
	return ToDAG(l.Graph())
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every node must carry a position.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	for _, n := range l.Nodes {
		if n.Position == nil {
			return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "layout node %q has no position", n.ID)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
