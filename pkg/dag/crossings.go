package dag

import (
	"maps"
	"slices"
)

// CountCrossings sums the edge crossings between every pair of consecutive
// rows in orders. Each row lists node IDs left to right; a row index that is
// missing from the map counts as an empty row.
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		if next, ok := orders[r+1]; ok {
			total += CountLayerCrossings(g, orders[r], next)
		}
	}
	return total
}

// CountLayerCrossings counts crossings among the edges running from upper
// to lower. Edges (u1,v1) and (u2,v2) cross when u1 is left of u2 and v1 is
// right of v2, so the count is the number of inversions among target
// positions once edges are sorted by source position. Inversions are
// counted with a Fenwick tree in O(E log V).
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	col := PosMap(lower)

	// Edges come out grouped by source already; targets within one source
	// are sorted so parallel edges from a node never count as crossing.
	var targets []int
	for _, id := range upper {
		start := len(targets)
		for _, child := range g.Children(id) {
			if p, ok := col[child]; ok {
				targets = append(targets, p)
			}
		}
		slices.Sort(targets[start:])
	}
	if len(targets) < 2 {
		return 0
	}

	bit := newFenwick(len(lower))
	crossings := 0
	for seen, p := range targets {
		crossings += seen - bit.prefix(p)
		bit.inc(p)
	}
	return crossings
}

// CountPairCrossingsWithPos counts the crossings between the edges of left
// and right, two neighbours in one row, where left is placed before right.
// useParents selects the edges into the row above; otherwise the row below
// is used. adjPos maps node IDs of that adjacent row to their column.
//
// The transpose pass of the hierarchical layout compares this count for
// both orders of a pair before swapping them.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	neighbours := g.Children
	if useParents {
		neighbours = g.Parents
	}
	rs := neighbours(right)

	n := 0
	for _, l := range neighbours(left) {
		lp, ok := adjPos[l]
		if !ok {
			continue
		}
		for _, r := range rs {
			if rp, ok := adjPos[r]; ok && rp < lp {
				n++
			}
		}
	}
	return n
}

// fenwick is a binary indexed tree over column counts.
type fenwick []int

func newFenwick(n int) fenwick { return make(fenwick, n+1) }

// inc records one edge ending at column i.
func (f fenwick) inc(i int) {
	for i++; i < len(f); i += i & -i {
		f[i]++
	}
}

// prefix returns the number of recorded edges ending at columns <= i.
func (f fenwick) prefix(i int) int {
	s := 0
	for i++; i > 0; i -= i & -i {
		s += f[i]
	}
	return s
}
