package analyze

import "github.com/matzehuels/roadmap/pkg/dag"

// Metrics is the analytics summary of a roadmap snapshot. It is derived
// data: recompute it after every edit instead of storing it.
type Metrics struct {
	TotalNodes           int
	TotalEdges           int
	MaxDepth             int
	CircularDependencies [][]string
	CycleGroups          [][]string
	IsolatedNodes        []string
	CriticalPath         []string
	NodesByStatus        map[dag.Status]int
	NodesByType          map[dag.NodeType]int
}

// HasCycles reports whether any circular dependency was found.
func (m Metrics) HasCycles() bool { return len(m.CircularDependencies) > 0 }

// Compute runs every analyzer over g. It is a pure function of the
// snapshot: calling it twice on an unchanged graph returns equal results.
// An empty graph yields zero counts and empty slices.
func Compute(g *dag.DAG) Metrics {
	path := CriticalPath(g)
	m := Metrics{
		TotalNodes:           g.NodeCount(),
		TotalEdges:           g.EdgeCount(),
		MaxDepth:             MaxDepth(g),
		CircularDependencies: DetectCycles(g),
		CycleGroups:          CycleGroups(g),
		IsolatedNodes:        Isolated(g),
		CriticalPath:         path,
		NodesByStatus:        make(map[dag.Status]int),
		NodesByType:          make(map[dag.NodeType]int),
	}
	for _, n := range g.Nodes() {
		m.NodesByStatus[n.Data.Status]++
		m.NodesByType[n.Data.Type]++
	}
	return m
}
