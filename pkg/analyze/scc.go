package analyze

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/roadmap/pkg/dag"
)

// CycleGroups returns the strongly connected components of g that contain a
// cycle: components of two or more nodes, plus single nodes with a
// self-loop. Where [DetectCycles] lists individual cycles, a cycle group
// names every node that would have to be touched to untangle them.
//
// Members are listed in node insertion order and groups are ordered by
// their first member. An acyclic graph yields an empty slice.
func CycleGroups(g *dag.DAG) [][]string {
	ids := g.NodeIDList()
	index := dag.PosMap(ids)

	dg := simple.NewDirectedGraph()
	for i := range ids {
		dg.AddNode(simple.Node(int64(i)))
	}
	selfLoop := make(map[int]bool)
	for _, e := range g.Edges() {
		from, to := index[e.Source], index[e.Target]
		if from == to {
			// simple graphs reject self edges
			selfLoop[from] = true
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
	}

	groups := [][]string{}
	for _, comp := range topo.TarjanSCC(dg) {
		if len(comp) == 1 && !selfLoop[int(comp[0].ID())] {
			continue
		}
		members := make([]int, len(comp))
		for i, n := range comp {
			members[i] = int(n.ID())
		}
		slices.Sort(members)
		group := make([]string, len(members))
		for i, m := range members {
			group[i] = ids[m]
		}
		groups = append(groups, group)
	}
	slices.SortFunc(groups, func(a, b []string) int {
		return index[a[0]] - index[b[0]]
	})
	return groups
}
