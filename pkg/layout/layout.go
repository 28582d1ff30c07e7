package layout

import (
	"context"
	"strings"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// Algorithm names a layout algorithm.
type Algorithm string

const (
	AlgorithmHierarchical  Algorithm = "hierarchical"
	AlgorithmForceDirected Algorithm = "force-directed"
)

// Algorithms lists the supported algorithms.
var Algorithms = []Algorithm{AlgorithmHierarchical, AlgorithmForceDirected}

// Parse converts a user-supplied name to an Algorithm. Matching ignores case
// and accepts "force" and "layered" as shorthands. An empty name selects
// the hierarchical layout.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hierarchical", "layered", "":
		return AlgorithmHierarchical, nil
	case "force-directed", "force", "forcedirected":
		return AlgorithmForceDirected, nil
	}
	return "", errs.New(errs.ErrCodeInvalidAlgorithm, "unknown layout algorithm %q (want hierarchical or force-directed)", name)
}

// Apply runs the chosen algorithm and returns a copy of g with new node
// positions. Every other node field and the edge set are unchanged; g
// itself is never modified.
func Apply(ctx context.Context, g *dag.DAG, alg Algorithm, opts Options) (*dag.DAG, error) {
	switch alg {
	case AlgorithmHierarchical:
		return Hierarchical(ctx, g, opts)
	case AlgorithmForceDirected:
		return ForceDirected(ctx, g, opts)
	}
	return nil, errs.New(errs.ErrCodeInvalidAlgorithm, "unknown layout algorithm %q", alg)
}

// Positions returns the position of every placed node, keyed by ID.
func Positions(g *dag.DAG) map[string]dag.Position {
	out := make(map[string]dag.Position, g.NodeCount())
	for _, n := range g.Nodes() {
		if n.Position != nil {
			out[n.ID] = *n.Position
		}
	}
	return out
}
