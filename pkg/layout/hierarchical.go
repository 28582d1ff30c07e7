package layout

import (
	"context"

	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/dag/transform"
)

// Hierarchical places nodes in top-to-bottom ranks.
//
// The work happens on a private copy of g:
//
//  1. Cycles are broken by removing depth-first back edges.
//  2. Ranks are assigned by longest path from the sources.
//  3. Edges spanning several ranks are split by synthetic nodes.
//  4. Each rank is ordered by barycenter sweeps, keeping the ordering with
//     the fewest edge crossings.
//  5. Ranks are laid out as rows of fixed-size boxes, each row centered
//     against the widest one.
//
// The returned graph is a clone of g whose nodes carry the top-left corner
// of their box. For every edge s→t of an acyclic g, s lies strictly above t.
// For cyclic input that ordering cannot hold for all edges and is not
// guaranteed for any particular one.
func Hierarchical(ctx context.Context, g *dag.DAG, opts Options) (*dag.DAG, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	work := g.Clone()
	transform.BreakCycles(work)
	transform.AssignLayers(work)
	synthetic := transform.Subdivide(work)

	orders, err := orderRows(ctx, work, opts.Sweeps)
	if err != nil {
		return nil, err
	}

	out := g.Clone()
	for id, p := range place(orders, synthetic, opts) {
		_ = out.SetPosition(id, p)
	}
	return out, nil
}

// place turns row orderings into box positions. Synthetic nodes take no
// width but keep the gap to their neighbours, so long edges get a lane.
func place(orders map[int][]string, synthetic map[string]string, opts Options) map[string]dag.Position {
	rowWidth := func(ids []string) float64 {
		w := 0.0
		for i, id := range ids {
			if i > 0 {
				w += opts.NodeSep
			}
			if _, ok := synthetic[id]; !ok {
				w += opts.NodeWidth
			}
		}
		return w
	}

	widest := 0.0
	for _, ids := range orders {
		widest = max(widest, rowWidth(ids))
	}

	positions := make(map[string]dag.Position)
	for r, ids := range orders {
		centerY := float64(r)*(opts.NodeHeight+opts.RankSep) + opts.NodeHeight/2
		x := (widest - rowWidth(ids)) / 2
		for i, id := range ids {
			if i > 0 {
				x += opts.NodeSep
			}
			if _, ok := synthetic[id]; ok {
				continue
			}
			centerX := x + opts.NodeWidth/2
			positions[id] = dag.Position{
				X: opts.Margin + centerX - opts.NodeWidth/2,
				Y: opts.Margin + centerY - opts.NodeHeight/2,
			}
			x += opts.NodeWidth
		}
	}
	return positions
}
