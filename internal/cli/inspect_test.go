package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/roadmap/pkg/analyze"
	"github.com/matzehuels/roadmap/pkg/dag"
)

func inspectGraph(t *testing.T) *dag.DAG {
	t.Helper()
	g, err := dag.FromSlices(
		[]dag.Node{
			{ID: "design", Data: dag.NodeData{Label: "Design", Owner: "ana"}},
			{ID: "build", Data: dag.NodeData{Label: "Build", Progress: dag.IntPtr(40)}},
			{ID: "launch", Data: dag.NodeData{Label: "Launch"}},
			{ID: "a"}, {ID: "b"},
		},
		[]dag.Edge{
			{Source: "design", Target: "build"},
			{Source: "build", Target: "launch"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m InspectModel, keys ...string) InspectModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(InspectModel)
	}
	return m
}

func TestInspectNavigation(t *testing.T) {
	g := inspectGraph(t)
	m := NewInspectModel(g, analyze.Compute(g))

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"start", nil, "design"},
		{"down", []string{"down"}, "build"},
		{"vim keys", []string{"j", "j", "k"}, "build"},
		{"clamped at top", []string{"up", "up"}, "design"},
		{"clamped at bottom", []string{"G", "down"}, "b"},
		{"home", []string{"G", "g"}, "design"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := press(m, tt.keys...).Selected().ID; got != tt.want {
				t.Errorf("Selected() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInspectScrollsList(t *testing.T) {
	g := inspectGraph(t)
	m := NewInspectModel(g, analyze.Compute(g))
	m.ListHeight = 2

	m = press(m, "down", "down", "down")
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
	m = press(m, "g")
	if m.Offset != 0 {
		t.Errorf("Offset after home = %d, want 0", m.Offset)
	}
}

func TestInspectView(t *testing.T) {
	g := inspectGraph(t)
	m := NewInspectModel(g, analyze.Compute(g))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(InspectModel)

	view := m.View()
	for _, want := range []string{"design", "Launch", "40%", "critical", "cycle", "depends", "Owner"} {
		if !strings.Contains(strings.ToLower(view), strings.ToLower(want)) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(m, "down")
	if view := m.View(); !strings.Contains(view, "Depends on") || !strings.Contains(view, "design") {
		t.Errorf("detail for build does not list its dependency:\n%s", view)
	}

	m = press(m, "tab")
	if !m.ShowSummary || !strings.Contains(m.View(), "Critical path") {
		t.Error("tab did not switch to the summary")
	}
}

func TestInspectQuit(t *testing.T) {
	g := inspectGraph(t)
	_, cmd := NewInspectModel(g, analyze.Compute(g)).Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestInspectEmptyGraph(t *testing.T) {
	m := NewInspectModel(dag.New(), analyze.Compute(dag.New()))
	if m.Selected() != nil {
		t.Error("Selected() on empty graph should be nil")
	}
	m = press(m, "down", "G")
	if !strings.Contains(m.View(), "empty graph") {
		t.Error("empty graph not reported")
	}
}
