package analyze

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/roadmap/pkg/dag"
)

func build(t *testing.T, ids []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New()
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q) error = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{Source: e[0], Target: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v) error = %v", e, err)
		}
	}
	return g
}

func chain(t *testing.T, k int) *dag.DAG {
	t.Helper()
	ids := make([]string, k)
	var edges [][2]string
	for i := range k {
		ids[i] = fmt.Sprintf("n%d", i)
		if i > 0 {
			edges = append(edges, [2]string{ids[i-1], ids[i]})
		}
	}
	return build(t, ids, edges)
}

// acyclicByKahn is the reference check: a graph is acyclic iff a
// topological sort consumes every node.
func acyclicByKahn(g *dag.DAG) bool {
	in := make(map[string]int)
	var queue []string
	for _, n := range g.Nodes() {
		in[n.ID] = g.InDegree(n.ID)
		if in[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	seen := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		seen++
		for _, c := range g.Children(id) {
			in[c]--
			if in[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	return seen == g.NodeCount()
}

func randomGraph(t *testing.T, rng *rand.Rand, n, m int) *dag.DAG {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}
	edges := make([][2]string, m)
	for i := range edges {
		edges[i] = [2]string{ids[rng.IntN(n)], ids[rng.IntN(n)]}
	}
	return build(t, ids, edges)
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  [][]string
	}{
		{"empty", nil, nil, [][]string{}},
		{"chain", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, [][]string{}},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, [][]string{{"a", "a"}}},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, [][]string{{"a", "b", "c", "a"}}},
		{
			"tail into cycle",
			[]string{"x", "a", "b"},
			[][2]string{{"x", "a"}, {"a", "b"}, {"b", "a"}},
			[][]string{{"a", "b", "a"}},
		},
		{
			"two cycles through shared node",
			[]string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}},
			[][]string{{"a", "b", "a"}, {"a", "c", "a"}},
		},
		{
			"parallel edges reported once",
			[]string{"a", "b"},
			[][2]string{{"a", "b"}, {"b", "a"}, {"b", "a"}},
			[][]string{{"a", "b", "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCycles(build(t, tt.ids, tt.edges))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectCycles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectCyclesMatchesTopologicalSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))
	for i := range 200 {
		n := 1 + rng.IntN(8)
		m := rng.IntN(12)
		g := randomGraph(t, rng, n, m)

		cycles := DetectCycles(g)
		if acyclic := acyclicByKahn(g); acyclic != (len(cycles) == 0) {
			t.Fatalf("graph %d: acyclic = %v but DetectCycles() = %v (edges %v)", i, acyclic, cycles, g.Edges())
		}
		for _, c := range cycles {
			if len(c) < 2 || c[0] != c[len(c)-1] {
				t.Errorf("graph %d: cycle %v is not closed", i, c)
			}
		}
	}
}

func TestMaxDepth(t *testing.T) {
	for _, k := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("chain %d", k), func(t *testing.T) {
			if got := MaxDepth(chain(t, k)); got != k-1 {
				t.Errorf("MaxDepth() = %d, want %d", got, k-1)
			}
		})
	}

	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  int
	}{
		{"empty", nil, nil, 0},
		{"no roots", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 0},
		{"longest from any root", []string{"r1", "r2", "a", "b", "c"}, [][2]string{{"r1", "c"}, {"r2", "a"}, {"a", "b"}, {"b", "c"}}, 3},
		{"shortcut does not hide long chain", []string{"a", "b", "c", "d"}, [][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"c", "d"}}, 3},
		{"cycle below root", []string{"r", "a", "b"}, [][2]string{{"r", "a"}, {"a", "b"}, {"b", "a"}}, 2},
		{"cyclic graph counts first visit only", []string{"r", "a", "b", "c"}, [][2]string{{"r", "a"}, {"r", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxDepth(build(t, tt.ids, tt.edges)); got != tt.want {
				t.Errorf("MaxDepth() = %d, want %d", got, tt.want)
			}
		})
	}
}

// completeBelowRoot builds root -> v0 plus every edge vi -> vj, i != j.
func completeBelowRoot(t *testing.T, n int) *dag.DAG {
	t.Helper()
	ids := []string{"root"}
	for i := range n {
		ids = append(ids, fmt.Sprintf("v%d", i))
	}
	edges := [][2]string{{"root", "v0"}}
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if i != j {
				edges = append(edges, [2]string{ids[i], ids[j]})
			}
		}
	}
	return build(t, ids, edges)
}

func TestMaxDepthDenseCycle(t *testing.T) {
	g := completeBelowRoot(t, 40)

	done := make(chan int, 1)
	go func() { done <- MaxDepth(g) }()
	select {
	case got := <-done:
		if got != 40 {
			t.Errorf("MaxDepth() = %d, want 40", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("MaxDepth() did not finish on a dense cycle")
	}
}

func TestMaxDepthMatchesCriticalPathOnDAGs(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5^0xfeed))
	for i := 0; i < 200; i++ {
		n := 1 + rng.IntN(10)
		ids := make([]string, n)
		for j := range ids {
			ids[j] = fmt.Sprintf("v%d", j)
		}
		var edges [][2]string
		for range rng.IntN(20) {
			a, b := rng.IntN(n), rng.IntN(n)
			if a != b {
				edges = append(edges, [2]string{ids[min(a, b)], ids[max(a, b)]})
			}
		}
		g := build(t, ids, edges)
		if got, want := MaxDepth(g), len(CriticalPath(g))-1; got != want {
			t.Fatalf("graph %d: MaxDepth() = %d, len(CriticalPath())-1 = %d (edges %v)", i, got, want, edges)
		}
	}
}

func TestCriticalPath(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{"empty", nil, nil, []string{}},
		{"single", []string{"a"}, nil, []string{"a"}},
		{"diamond first found", []string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}}, []string{"A", "B", "D"}},
		{"diamond edge order decides", []string{"A", "B", "C", "D"}, [][2]string{{"A", "C"}, {"A", "B"}, {"B", "D"}, {"C", "D"}}, []string{"A", "C", "D"}},
		{"root order decides", []string{"x", "y", "p", "q"}, [][2]string{{"x", "p"}, {"y", "q"}}, []string{"x", "p"}},
		{"longer beats earlier", []string{"x", "y", "p", "q", "r"}, [][2]string{{"x", "p"}, {"y", "q"}, {"q", "r"}}, []string{"y", "q", "r"}},
		{"no roots", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, []string{}},
		{"cycle is not revisited", []string{"r", "a", "b", "c"}, [][2]string{{"r", "a"}, {"a", "b"}, {"b", "a"}, {"b", "c"}}, []string{"r", "a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CriticalPath(build(t, tt.ids, tt.edges))
			if !slices.Equal(got, tt.want) {
				t.Errorf("CriticalPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Acyclic graphs take the memoized route; forcing the enumeration on the
// same graph must give the same answer.
func TestCriticalPathStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11^0xdeadbeef))
	for i := 0; i < 200; i++ {
		n := 1 + rng.IntN(9)
		ids := make([]string, n)
		for j := range ids {
			ids[j] = fmt.Sprintf("v%d", j)
		}
		var edges [][2]string
		for range rng.IntN(15) {
			a, b := rng.IntN(n), rng.IntN(n)
			if a == b {
				continue
			}
			edges = append(edges, [2]string{ids[min(a, b)], ids[max(a, b)]})
		}
		g := build(t, ids, edges)
		roots := g.Sources()

		dp := longestAcyclic(g, roots)
		enum := longestSimple(g, roots)
		if !slices.Equal(dp, enum) {
			t.Fatalf("graph %d: longestAcyclic() = %v, longestSimple() = %v (edges %v)", i, dp, enum, edges)
		}
	}
}

func TestIsolated(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{"empty", nil, nil, []string{}},
		{"all isolated", []string{"a", "b"}, nil, []string{"a", "b"}},
		{"mixed", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}}, []string{"c", "d"}},
		{"self loop is not isolated", []string{"a", "b"}, [][2]string{{"a", "a"}}, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Isolated(build(t, tt.ids, tt.edges))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Isolated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsolatedDisjointFromEndpoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3^0xdeadbeef))
	for i := 0; i < 100; i++ {
		g := randomGraph(t, rng, 1+rng.IntN(10), rng.IntN(8))
		endpoints := make(map[string]bool)
		for _, e := range g.Edges() {
			endpoints[e.Source] = true
			endpoints[e.Target] = true
		}
		for _, id := range Isolated(g) {
			if endpoints[id] {
				t.Fatalf("graph %d: isolated node %s is an edge endpoint", i, id)
			}
		}
	}
}

func TestCompute(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Data: dag.NodeData{Status: dag.StatusCompleted, Type: dag.TypeEpic}})
	_ = g.AddNode(dag.Node{ID: "b", Data: dag.NodeData{Status: dag.StatusInProgress}})
	_ = g.AddNode(dag.Node{ID: "c"})
	_ = g.AddNode(dag.Node{ID: "d", Data: dag.NodeData{Type: dag.TypeMilestone}})
	_ = g.AddEdge(dag.Edge{Source: "a", Target: "b"})
	_ = g.AddEdge(dag.Edge{Source: "b", Target: "c"})

	m := Compute(g)

	if m.TotalNodes != 4 || m.TotalEdges != 2 {
		t.Errorf("totals = (%d, %d), want (4, 2)", m.TotalNodes, m.TotalEdges)
	}
	if m.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", m.MaxDepth)
	}
	if m.HasCycles() {
		t.Errorf("CircularDependencies = %v, want none", m.CircularDependencies)
	}
	if !slices.Equal(m.IsolatedNodes, []string{"d"}) {
		t.Errorf("IsolatedNodes = %v, want [d]", m.IsolatedNodes)
	}
	if !slices.Equal(m.CriticalPath, []string{"a", "b", "c"}) {
		t.Errorf("CriticalPath = %v, want [a b c]", m.CriticalPath)
	}
	wantStatus := map[dag.Status]int{dag.StatusCompleted: 1, dag.StatusInProgress: 1, dag.StatusPlanning: 2}
	if !reflect.DeepEqual(m.NodesByStatus, wantStatus) {
		t.Errorf("NodesByStatus = %v, want %v", m.NodesByStatus, wantStatus)
	}
	wantType := map[dag.NodeType]int{dag.TypeEpic: 1, dag.TypeTask: 2, dag.TypeMilestone: 1}
	if !reflect.DeepEqual(m.NodesByType, wantType) {
		t.Errorf("NodesByType = %v, want %v", m.NodesByType, wantType)
	}
}

func TestComputeIdempotent(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}, {"a", "c"}})
	if first, second := Compute(g), Compute(g); !reflect.DeepEqual(first, second) {
		t.Errorf("Compute() not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeEmpty(t *testing.T) {
	m := Compute(dag.New())
	if m.TotalNodes != 0 || m.TotalEdges != 0 || m.MaxDepth != 0 {
		t.Errorf("Compute(empty) = %+v", m)
	}
	if m.CircularDependencies == nil || m.IsolatedNodes == nil || m.CriticalPath == nil {
		t.Error("Compute(empty) returned nil slices, want empty")
	}
}

func TestTriangleScenario(t *testing.T) {
	g := build(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	m := Compute(g)

	if len(m.CircularDependencies) != 1 {
		t.Fatalf("CircularDependencies = %v, want one cycle", m.CircularDependencies)
	}
	cycle := m.CircularDependencies[0]
	for _, id := range []string{"A", "B", "C"} {
		if !slices.Contains(cycle, id) {
			t.Errorf("cycle %v missing %s", cycle, id)
		}
	}
	if len(m.IsolatedNodes) != 0 {
		t.Errorf("IsolatedNodes = %v, want []", m.IsolatedNodes)
	}
	if m.MaxDepth != 0 {
		t.Errorf("MaxDepth = %d, want 0", m.MaxDepth)
	}
}
