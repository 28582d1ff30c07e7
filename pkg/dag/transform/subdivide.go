package transform

import (
	"fmt"

	"github.com/matzehuels/roadmap/pkg/dag"
)

// Subdivide breaks edges that span multiple rows into chains of single-row
// edges connected by synthetic subdivider nodes, and returns the set of
// synthetic node IDs mapped to the ID of the edge they replace.
//
// After Subdivide every edge connects consecutive rows, which is what the
// row-by-row crossing counter expects. For example:
//
//	Before: design (row 0) → launch (row 3)
//	After:  design → design_sub_1 → design_sub_2 → launch
//
// Subdivider IDs have the form "source_sub_row"; on collision a numeric
// suffix is appended ("design_sub_1__2"). Callers drop the synthetic nodes
// when copying positions back to the user's graph.
//
// Run [AssignLayers] first. Edges whose target is not below the source are
// left untouched.
func Subdivide(g *dag.DAG) map[string]string {
	gen := newIDGen(g.Nodes())
	synthetic := make(map[string]string)

	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.Source)
		dst, dstOK := g.Node(e.Target)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		if _, err := g.RemoveEdge(e.ID); err != nil {
			panic(err)
		}
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(src.ID, row)
			synthetic[id] = e.ID
			if err := g.AddNode(dag.Node{ID: id, Row: row}); err != nil {
				panic(err)
			}
			if err := g.AddEdge(dag.Edge{Source: prevID, Target: id, Data: e.Data}); err != nil {
				panic(err)
			}
			prevID = id
		}
		if err := g.AddEdge(dag.Edge{Source: prevID, Target: dst.ID, Data: e.Data}); err != nil {
			panic(err)
		}
	}

	return synthetic
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
