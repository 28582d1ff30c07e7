package dag

import (
	"fmt"

	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// BuildAdjacency maps each edge's source to the targets of its outgoing
// edges, in edge-list order. Entries are not deduplicated: parallel edges
// produce repeated targets. An empty edge list yields an empty map.
func BuildAdjacency(edges []Edge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// FromSlices builds a graph from a node and edge snapshot.
//
// Every invalid node and every edge that references a missing node (or is
// otherwise invalid) is collected into a single [errs.ValidationError], so
// the caller can report all offending items at once. No partial graph is
// returned when validation fails.
func FromSlices(nodes []Node, edges []Edge) (*DAG, error) {
	g := New()
	ve := &errs.ValidationError{}
	for i, n := range nodes {
		if err := g.AddNode(n); err != nil {
			ve.Add(subject("node", n.ID, i), "%v", err)
		}
	}
	for i, e := range edges {
		if err := g.AddEdge(e); err != nil {
			ve.Add(subject("edge", e.ID, i), "%v", err)
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func subject(kind, id string, idx int) string {
	if id == "" {
		return fmt.Sprintf("%ss[%d]", kind, idx)
	}
	return fmt.Sprintf("%s %q", kind, id)
}
