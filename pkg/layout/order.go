package layout

import (
	"context"
	"slices"

	"github.com/matzehuels/roadmap/pkg/dag"
)

// orderRows returns a left-to-right ordering of every row of a properly
// layered graph (edges only between consecutive rows).
//
// It starts from insertion order and alternates top-down and bottom-up
// barycenter sweeps, each followed by a transpose pass that swaps adjacent
// nodes while that lowers crossings. The ordering with the fewest crossings
// seen is returned. Cancellation is checked between sweeps; the best
// ordering so far is returned together with ctx.Err().
func orderRows(ctx context.Context, g *dag.DAG, sweeps int) (map[int][]string, error) {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	if len(rows) < 2 {
		return orders, nil
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		for j := 1; j < len(rows); j++ {
			sortByBarycenter(orders[rows[j]], orders[rows[j-1]], g.Parents)
		}
		transpose(g, rows, orders)
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}

		for j := len(rows) - 2; j >= 0; j-- {
			sortByBarycenter(orders[rows[j]], orders[rows[j+1]], g.Children)
		}
		transpose(g, rows, orders)
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best, nil
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbours in the fixed adjacent row. Nodes without neighbours there keep
// their current index as key, so they hold their place.
func sortByBarycenter(row, fixed []string, neighbours func(string) []string) {
	pos := dag.PosMap(fixed)
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = sum / float64(n)
	}
	slices.SortStableFunc(row, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

// transpose swaps adjacent nodes in each row while doing so reduces the
// crossings with both neighbouring rows.
func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for improved, rounds := true, 0; improved && rounds < 2*len(rows); rounds++ {
		improved = false
		for j, r := range rows {
			row := orders[r]
			var above, below map[string]int
			if j > 0 {
				above = dag.PosMap(orders[rows[j-1]])
			}
			if j < len(rows)-1 {
				below = dag.PosMap(orders[rows[j+1]])
			}
			for i := 0; i+1 < len(row); i++ {
				l, rt := row[i], row[i+1]
				before := pairCrossings(g, l, rt, above, below)
				after := pairCrossings(g, rt, l, above, below)
				if after < before {
					row[i], row[i+1] = rt, l
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
