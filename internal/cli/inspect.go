package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/analyze"
	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// inspectCommand creates the interactive graph browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Browse a roadmap graph and its metrics in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := pipeline.LoadGraph(args[0])
			if err != nil {
				return err
			}
			m := NewInspectModel(g, analyze.Compute(g))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tagCritical     = lipgloss.NewStyle().Foreground(colorYellow).Render("critical")
	tagCycle        = lipgloss.NewStyle().Foreground(colorRed).Render("cycle")
	tagIsolated     = lipgloss.NewStyle().Foreground(colorDim).Render("isolated")
)

// inspectChrome is the number of lines around the node table and detail pane.
const inspectChrome = 6

// =============================================================================
// InspectModel - Interactive graph browser
// =============================================================================

// InspectModel is the bubbletea model behind `roadmap inspect`: a scrolling
// node table on top and a detail pane for the selected node below. Tab
// switches the pane to the graph summary.
type InspectModel struct {
	g       *dag.DAG
	nodes   []*dag.Node
	metrics analyze.Metrics

	critical map[string]bool
	inCycle  map[string]bool
	isolated map[string]bool

	Cursor      int
	Offset      int
	ListHeight  int
	ShowSummary bool

	detail viewport.Model
	width  int
	ready  bool
}

// NewInspectModel creates a browser over g with precomputed metrics.
func NewInspectModel(g *dag.DAG, m analyze.Metrics) InspectModel {
	model := InspectModel{
		g:          g,
		nodes:      g.Nodes(),
		metrics:    m,
		critical:   toSet(m.CriticalPath),
		inCycle:    toSet(slices.Concat(m.CircularDependencies...)),
		isolated:   toSet(m.IsolatedNodes),
		ListHeight: 10,
		detail:     viewport.New(80, 10),
		width:      80,
	}
	model.refreshDetail()
	return model
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		avail := max(msg.Height-inspectChrome, 6)
		m.ListHeight = max(avail/2, 3)
		m.detail.Width = msg.Width
		m.detail.Height = avail - m.ListHeight
		m.ready = true
		m.clampOffset()
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.nodes)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.nodes)-1, 0)
		case "tab":
			m.ShowSummary = !m.ShowSummary
		case "pgdown", "ctrl+d":
			m.detail.HalfViewDown()
			return m, nil
		case "pgup", "ctrl+u":
			m.detail.HalfViewUp()
			return m, nil
		default:
			return m, nil
		}
		m.clampOffset()
		m.refreshDetail()
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// clampOffset keeps the cursor inside the visible window.
func (m *InspectModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.ListHeight {
		m.Offset = m.Cursor - m.ListHeight + 1
	}
}

// Selected returns the node under the cursor, or nil for an empty graph.
func (m InspectModel) Selected() *dag.Node {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.nodes[m.Cursor]
}

func (m *InspectModel) refreshDetail() {
	if m.ShowSummary {
		m.detail.SetContent(m.summaryView())
	} else {
		m.detail.SetContent(m.nodeView(m.Selected()))
	}
	m.detail.GotoTop()
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Roadmap"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %d edges · depth %d",
		m.metrics.TotalNodes, m.metrics.TotalEdges, m.metrics.MaxDepth)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab summary  pgup/pgdn scroll  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty graph)"))
		return b.String()
	}

	end := min(m.Offset+m.ListHeight, len(m.nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.ID, n.Data.Label, string(n.Data.Type), string(n.Data.Status), progressText(n.Data.Progress), m.tags(n.ID)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Label", "Type", "Status", "Progress", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = statusStyle(m.nodes[idx].Data.Status)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.nodes))))
	return b.String()
}

func (m InspectModel) tags(id string) string {
	var tags []string
	if m.critical[id] {
		tags = append(tags, tagCritical)
	}
	if m.inCycle[id] {
		tags = append(tags, tagCycle)
	}
	if m.isolated[id] {
		tags = append(tags, tagIsolated)
	}
	return strings.Join(tags, " ")
}

func progressText(p *int) string {
	if p == nil {
		return "—"
	}
	return fmt.Sprintf("%d%%", *p)
}

// nodeView describes one node and its neighborhood.
func (m InspectModel) nodeView(n *dag.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	line := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s %s\n", lipgloss.NewStyle().Foreground(colorGray).Width(14).Render(k), v)
		}
	}
	line("Node", StyleValue.Render(n.ID))
	line("Label", n.Data.Label)
	line("Owner", n.Data.Owner)
	line("Dates", strings.Trim(n.Data.StartDate+" → "+n.Data.EndDate, " →"))
	line("Description", n.Data.Description)
	line("Depends on", formatList(m.g.Parents(n.ID)))
	line("Blocks", formatList(m.g.Children(n.ID)))
	if n.Position != nil {
		line("Position", fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y))
	}
	for _, c := range m.metrics.CircularDependencies {
		if slices.Contains(c, n.ID) {
			line("Cycle", formatCycle(c))
		}
	}
	return b.String()
}

// summaryView lists graph-wide metrics.
func (m InspectModel) summaryView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Critical path  %s\n", formatPath(m.metrics.CriticalPath))
	fmt.Fprintf(&b, "Isolated       %s\n", formatList(m.metrics.IsolatedNodes))
	fmt.Fprintf(&b, "Cycles         %d\n", len(m.metrics.CircularDependencies))
	for _, c := range m.metrics.CircularDependencies {
		fmt.Fprintf(&b, "  %s\n", formatCycle(c))
	}
	for _, s := range dag.Statuses {
		if n := m.metrics.NodesByStatus[s]; n > 0 {
			fmt.Fprintf(&b, "%-14s %d\n", s, n)
		}
	}
	return b.String()
}
