// MaxDepth returns the number of edges on the longest dependency chain that
// starts at a root (a node with no incoming edges). A linear chain of k
// nodes has depth k-1. A graph without roots, such as a single big cycle,
// has depth 0.
//
// On an acyclic graph the depth is the longest path, computed once per node,
// and equals len(CriticalPath)-1. On a cyclic graph each root gets its own
// depth-first search with a fresh visited set and the deepest node reached
// wins. Every node is entered at most once per root, so the cost stays
// O(R·(V+E)) however dense the cycles are. That search may miss a longer
// chain that reaches a node through a later sibling, so on cyclic input the
// depth can be less than len(CriticalPath)-1.
func MaxDepth(g *dag.DAG) int {
	roots := g.Sources()
	if len(roots) == 0 {
		return 0
	}
	if g.IsAcyclic() {
		lengths := pathLengths(g)
		best := 0
		for _, r := range roots {
			best = max(best, lengths(r.ID))
		}
		return best - 1
	}
	best := 0
	for _, r := range roots {
		best = max(best, searchDepth(g, r.ID))
	}
	return best
}

// searchDepth is the depth of the deepest node a depth-first search from
// root reaches. A node is entered only the first time the search sees it.
func searchDepth(g *dag.DAG, root string) int {
	visited := make(map[string]bool, g.NodeCount())
	deepest := 0
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		visited[id] = true
		deepest = max(deepest, depth)
		for _, c := range g.Children(id) {
			if !visited[c] {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
	return deepest
}

// CriticalPath returns the longest simple path, by node count, that starts
// at a root. A path never revisits a node already on it. Ties go to the
// path found first when roots are tried in insertion order and children in
// edge order. Returns an empty slice when the graph has no roots.
//
// Acyclic graphs take linear time. On cyclic graphs the search enumerates
// simple paths, which grows exponentially with the density of the cycles.
func CriticalPath(g *dag.DAG) []string {
	roots := g.Sources()
	if len(roots) == 0 {
		return []string{}
	}
	if g.IsAcyclic() {
		return longestAcyclic(g, roots)
	}
	return longestSimple(g, roots)
}

// pathLengths returns a memoized function giving the number of nodes on the
// longest path starting at id. g must be acyclic.
func pathLengths(g *dag.DAG) func(id string) int {
	memo := make(map[string]int, g.NodeCount())
	var length func(id string) int
	length = func(id string) int {
		if l, ok := memo[id]; ok {
			return l
		}
		best := 0
		for _, c := range g.Children(id) {
			best = max(best, length(c))
		}
		memo[id] = best + 1
		return best + 1
	}
	return length
}

// longestAcyclic memoizes the longest path length (in nodes) from each node
// and rebuilds the path greedily: the first root, then the first child, that
// achieves the maximum. That is exactly the first maximal path a depth-first
// enumeration would find.
func longestAcyclic(g *dag.DAG, roots []*dag.Node) []string {
	length := pathLengths(g)

	start, best := "", 0
	for _, r := range roots {
		if l := length(r.ID); l > best {
			start, best = r.ID, l
		}
	}

	path := make([]string, 0, best)
	for id := start; ; {
		path = append(path, id)
		want := length(id) - 1
		if want == 0 {
			return path
		}
		for _, c := range g.Children(id) {
			if length(c) == want {
				id = c
				break
			}
		}
	}
}

// longestSimple enumerates simple paths from every root with a single
// shared path stack and keeps the first strictly longest one.
func longestSimple(g *dag.DAG, roots []*dag.Node) []string {
	var (
		best   []string
		path   []string
		onPath = make(map[string]bool, g.NodeCount())
	)

	var walk func(id string)
	walk = func(id string) {
		onPath[id] = true
		path = append(path, id)
		if len(path) > len(best) {
			best = slices.Clone(path)
		}
		for _, c := range g.Children(id) {
			if !onPath[c] {
				walk(c)
			}
		}
		path = path[:len(path)-1]
		onPath[id] = false
	}

	for _, r := range roots {
		walk(r.ID)
	}
	return best
}
