package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
	colorPurple = lipgloss.Color("141") // Lavender - on hold
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusStyles colors a node by its status.
var statusStyles = map[dag.Status]lipgloss.Style{
	dag.StatusPlanning:   lipgloss.NewStyle().Foreground(colorGray),
	dag.StatusInProgress: lipgloss.NewStyle().Foreground(colorBlue),
	dag.StatusCompleted:  lipgloss.NewStyle().Foreground(colorGreen),
	dag.StatusBlocked:    lipgloss.NewStyle().Foreground(colorRed),
	dag.StatusOnHold:     lipgloss.NewStyle().Foreground(colorPurple),
}

func statusStyle(s dag.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return StyleValue
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(16)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints graph statistics on a single line.
func printStats(nodeCount, edgeCount int, cached bool) {
	fmt.Println(statsLine(nodeCount, edgeCount, cached))
}

func statsLine(nodeCount, edgeCount int, cached bool) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Metrics
// =============================================================================

// printMetrics prints an analysis summary.
func printMetrics(m graph.Metrics) {
	printKeyValue("Nodes", StyleNumber.Render(fmt.Sprint(m.TotalNodes)))
	printKeyValue("Edges", StyleNumber.Render(fmt.Sprint(m.TotalEdges)))
	printKeyValue("Max depth", StyleNumber.Render(fmt.Sprint(m.MaxDepth)))
	printKeyValue("Critical path", formatPath(m.CriticalPath))
	printKeyValue("Isolated", formatList(m.IsolatedNodes))
	if len(m.NodesByStatus) > 0 {
		printKeyValue("By status", formatCounts(m.NodesByStatus))
	}

	if len(m.CircularDependencies) == 0 {
		printSuccess("No circular dependencies")
		return
	}
	printWarning("%d circular %s", len(m.CircularDependencies), plural(len(m.CircularDependencies), "dependency", "dependencies"))
	for _, c := range m.CircularDependencies {
		printDetail("%s", formatCycle(c))
	}
}

// formatPath joins a path with arrows; an empty path is shown as a dash.
func formatPath(ids []string) string {
	if len(ids) == 0 {
		return "—"
	}
	return strings.Join(ids, " "+iconArrow+" ")
}

// formatCycle closes the loop back to its first node.
func formatCycle(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return formatPath(append(append([]string(nil), ids...), ids[0]))
}

func formatList(ids []string) string {
	if len(ids) == 0 {
		return "—"
	}
	return strings.Join(ids, ", ")
}

// formatCounts renders counts in status order, then any unknown keys.
func formatCounts(counts map[string]int) string {
	var parts []string
	seen := make(map[string]bool)
	for _, s := range dag.Statuses {
		if n := counts[string(s)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", statusStyle(s).Render(string(s)), n))
			seen[string(s)] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		if n := counts[k]; !seen[k] && n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", k, n))
		}
	}
	return strings.Join(parts, "  ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
