package analyze

import "github.com/matzehuels/roadmap/pkg/dag"

// Isolated returns the IDs of nodes that are neither the source nor the
// target of any edge, in insertion order. A node whose only edge is a
// self-loop is not isolated.
func Isolated(g *dag.DAG) []string {
	touched := make(map[string]bool, g.NodeCount())
	for _, e := range g.Edges() {
		touched[e.Source] = true
		touched[e.Target] = true
	}

	isolated := []string{}
	for _, id := range g.NodeIDList() {
		if !touched[id] {
			isolated = append(isolated, id)
		}
	}
	return isolated
}
