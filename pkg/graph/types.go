package graph

import (
	"github.com/matzehuels/roadmap/pkg/analyze"
	"github.com/matzehuels/roadmap/pkg/dag"
)

// =============================================================================
// Graph - Roadmap Serialization
// =============================================================================

// Graph is the canonical serialization format for roadmap graphs.
// Used for files, API request and response bodies, events and caching.
//
// Nodes and edges keep their order: analysis results such as the critical
// path depend on it, so a round trip through Graph preserves them.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Position is the top-left corner of a node box.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a roadmap item.
type Node struct {
	ID       string    `json:"id" yaml:"id"`
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
	Data     NodeData  `json:"data" yaml:"data"`
}

// NodeData holds the user-facing attributes of a node.
type NodeData struct {
	Label       string `json:"label" yaml:"label"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Progress    *int   `json:"progress,omitempty" yaml:"progress,omitempty"`
	StartDate   string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Edge is a directed dependency from Source to Target.
type Edge struct {
	ID     string    `json:"id,omitempty" yaml:"id,omitempty"`
	Source string    `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
	Data   *EdgeData `json:"data,omitempty" yaml:"data,omitempty"`
}

// EdgeData holds edge metadata.
type EdgeData struct {
	DependencyType string `json:"dependencyType,omitempty" yaml:"dependencyType,omitempty"`
	Strength       string `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// =============================================================================
// Metrics - Analysis Result
// =============================================================================

// Metrics is the wire form of [analyze.Metrics].
type Metrics struct {
	TotalNodes           int            `json:"totalNodes"`
	TotalEdges           int            `json:"totalEdges"`
	MaxDepth             int            `json:"maxDepth"`
	CircularDependencies [][]string     `json:"circularDependencies"`
	CycleGroups          [][]string     `json:"cycleGroups"`
	IsolatedNodes        []string       `json:"isolatedNodes"`
	CriticalPath         []string       `json:"criticalPath"`
	NodesByStatus        map[string]int `json:"nodesByStatus,omitempty"`
	NodesByType          map[string]int `json:"nodesByType,omitempty"`
}

// MetricsFrom converts analysis results to their wire form.
func MetricsFrom(m analyze.Metrics) Metrics {
	out := Metrics{
		TotalNodes:           m.TotalNodes,
		TotalEdges:           m.TotalEdges,
		MaxDepth:             m.MaxDepth,
		CircularDependencies: nonNil2(m.CircularDependencies),
		CycleGroups:          nonNil2(m.CycleGroups),
		IsolatedNodes:        nonNil(m.IsolatedNodes),
		CriticalPath:         nonNil(m.CriticalPath),
	}
	if len(m.NodesByStatus) > 0 {
		out.NodesByStatus = make(map[string]int, len(m.NodesByStatus))
		for k, v := range m.NodesByStatus {
			out.NodesByStatus[string(k)] = v
		}
	}
	if len(m.NodesByType) > 0 {
		out.NodesByType = make(map[string]int, len(m.NodesByType))
		for k, v := range m.NodesByType {
			out.NodesByType[string(k)] = v
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNil2(s [][]string) [][]string {
	if s == nil {
		return [][]string{}
	}
	return s
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its serialization format, keeping insertion
// order for both nodes and edges.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = NodeFromDAG(*n)
	}
	for i, e := range edges {
		out.Edges[i] = EdgeFromDAG(e)
	}
	return out
}

// ToDAG converts a Graph to a DAG. Every invalid node and every edge that
// references a missing node is reported in one validation error.
func ToDAG(gj Graph) (*dag.DAG, error) {
	nodes := make([]dag.Node, len(gj.Nodes))
	for i, n := range gj.Nodes {
		nodes[i] = n.ToDAG()
	}
	edges := make([]dag.Edge, len(gj.Edges))
	for i, e := range gj.Edges {
		edges[i] = e.ToDAG()
	}
	return dag.FromSlices(nodes, edges)
}

// NodeFromDAG converts a single node.
func NodeFromDAG(n dag.Node) Node {
	n = n.Clone()
	out := Node{
		ID: n.ID,
		Data: NodeData{
			Label:       n.Data.Label,
			Status:      string(n.Data.Status),
			Owner:       n.Data.Owner,
			Type:        string(n.Data.Type),
			Progress:    n.Data.Progress,
			StartDate:   n.Data.StartDate,
			EndDate:     n.Data.EndDate,
			Description: n.Data.Description,
		},
	}
	if n.Position != nil {
		out.Position = &Position{X: n.Position.X, Y: n.Position.Y}
	}
	return out
}

// ToDAG converts the wire node to its graph model form. Empty status and
// type are left empty so the graph applies its defaults.
func (n Node) ToDAG() dag.Node {
	out := dag.Node{
		ID: n.ID,
		Data: dag.NodeData{
			Label:       n.Data.Label,
			Status:      dag.Status(n.Data.Status),
			Owner:       n.Data.Owner,
			Type:        dag.NodeType(n.Data.Type),
			Progress:    n.Data.Progress,
			StartDate:   n.Data.StartDate,
			EndDate:     n.Data.EndDate,
			Description: n.Data.Description,
		},
	}
	if n.Position != nil {
		out.Position = &dag.Position{X: n.Position.X, Y: n.Position.Y}
	}
	return out.Clone()
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	return n.ID
}

// EdgeFromDAG converts a single edge.
func EdgeFromDAG(e dag.Edge) Edge {
	out := Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	if e.Data != (dag.EdgeData{}) {
		out.Data = &EdgeData{
			DependencyType: string(e.Data.DependencyType),
			Strength:       string(e.Data.Strength),
		}
	}
	return out
}

// ToDAG converts the wire edge to its graph model form.
func (e Edge) ToDAG() dag.Edge {
	out := dag.Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	if e.Data != nil {
		out.Data = dag.EdgeData{
			DependencyType: dag.DependencyType(e.Data.DependencyType),
			Strength:       dag.Strength(e.Data.Strength),
		}
	}
	return out
}
