package analyze

import (
	"strings"

	"github.com/matzehuels/roadmap/pkg/dag"
)

// DetectCycles returns every circular dependency found by a depth-first
// search of g. Each cycle lists its nodes in order with the starting node
// repeated at the end, so a self-loop on a is reported as [a a].
//
// Searches start from each unvisited node in insertion order. When the
// search reaches a node that is already on the current path, the part of
// the path from that node onward is emitted as a cycle. Parallel edges would
// report the same sequence more than once; exact duplicates are dropped.
//
// Returns an empty slice for an acyclic graph.
func DetectCycles(g *dag.DAG) [][]string {
	f := newCycleFinder(g)
	for _, id := range g.NodeIDList() {
		if !f.visited[id] {
			f.visit(id)
		}
	}
	return f.cycles
}

// cycleFinder holds the state of one DetectCycles call. The path is a single
// shared stack; onPath maps each node on it to its index.
type cycleFinder struct {
	g       *dag.DAG
	visited map[string]bool
	onPath  map[string]int
	path    []string
	cycles  [][]string
	seen    map[string]struct{}
}

func newCycleFinder(g *dag.DAG) *cycleFinder {
	return &cycleFinder{
		g:       g,
		visited: make(map[string]bool, g.NodeCount()),
		onPath:  make(map[string]int),
		cycles:  [][]string{},
		seen:    make(map[string]struct{}),
	}
}

func (f *cycleFinder) visit(id string) {
	f.visited[id] = true
	f.onPath[id] = len(f.path)
	f.path = append(f.path, id)

	for _, next := range f.g.Children(id) {
		if !f.visited[next] {
			f.visit(next)
			continue
		}
		if idx, ok := f.onPath[next]; ok {
			f.emit(idx, next)
		}
	}

	f.path = f.path[:len(f.path)-1]
	delete(f.onPath, id)
}

func (f *cycleFinder) emit(from int, closing string) {
	cycle := make([]string, 0, len(f.path)-from+1)
	cycle = append(cycle, f.path[from:]...)
	cycle = append(cycle, closing)

	key := strings.Join(cycle, "\x00")
	if _, dup := f.seen[key]; dup {
		return
	}
	f.seen[key] = struct{}{}
	f.cycles = append(f.cycles, cycle)
}
