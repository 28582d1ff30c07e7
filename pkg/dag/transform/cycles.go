package transform

import "github.com/matzehuels/roadmap/pkg/dag"

// BreakCycles removes the back edges found by a depth-first search so that
// the graph becomes acyclic, and returns the removed edges.
//
// The search starts from source nodes first, then from any node left
// unvisited (nodes that only sit on cycles), both in insertion order. Every
// parallel copy of a back edge and every self-loop is removed. BreakCycles
// mutates g; the layout engine calls it on a working copy.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	out := make(map[string][]dag.Edge, g.NodeCount())
	for _, e := range g.Edges() {
		out[e.Source] = append(out[e.Source], e)
	}

	color := make(map[string]int, g.NodeCount())
	var backEdges []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, e := range out[node] {
			switch color[e.Target] {
			case white:
				dfs(e.Target)
			case gray:
				backEdges = append(backEdges, e)
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		_, _ = g.RemoveEdge(e.ID)
	}
	return backEdges
}
