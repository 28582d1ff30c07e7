package transform

import "github.com/matzehuels/roadmap/pkg/dag"

// AssignLayers assigns every node a row (rank) equal to the length of the
// longest path reaching it from a source node, and returns the number of
// rows used.
//
// Rows are computed with Kahn's algorithm: sources start at row 0 and each
// child is pushed to one below the deepest parent processed so far. This
// guarantees that for every edge s→t, row(s) < row(t).
//
// Parallel edges are counted once per copy in the in-degree and decremented
// once per copy, so a multigraph layers the same as its simple counterpart.
// Every node's previous row is overwritten.
//
// # Cycles
//
// AssignLayers assumes the graph is acyclic. Nodes on a cycle never reach
// zero in-degree and stay at row 0. Run [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) int {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		rows[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	maxRow := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
				maxRow = max(maxRow, row)
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
	return maxRow + 1
}
