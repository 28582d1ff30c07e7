package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		output string
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [graph.json]",
		Short: "Report cycles, depth, critical path and isolated items",
		Long: `Analyze a roadmap graph.

Reports circular dependencies, the longest dependency chain (critical path),
its depth, items with no dependencies in either direction, and counts by
status and type. Use "-" to read the graph from stdin. Metrics are always
computed from the graph as it is now; they are never cached.

With --strict the command fails when the graph has circular dependencies,
which makes it usable as a CI check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), args[0], output, asJSON, strict)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write metrics JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error if the graph has cycles")
	return cmd
}

// errCyclesFound is returned by analyze --strict.
type errCyclesFound int

func (e errCyclesFound) Error() string {
	return fmt.Sprintf("found %d circular %s", int(e), plural(int(e), "dependency", "dependencies"))
}

func (c *CLI) runAnalyze(ctx context.Context, input, output string, asJSON, strict bool) error {
	g, err := pipeline.LoadGraph(input)
	if err != nil {
		return err
	}

	m, err := pipeline.Analyze(ctx, g)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	switch {
	case output != "":
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Analysis complete")
		printFile(output)
		printStats(m.TotalNodes, m.TotalEdges, false)
	case asJSON:
		fmt.Println(string(data))
	default:
		fmt.Println(StyleTitle.Render("Roadmap analysis"))
		printMetrics(m)
		printStats(m.TotalNodes, m.TotalEdges, false)
	}

	if strict && len(m.CircularDependencies) > 0 {
		return errCyclesFound(len(m.CircularDependencies))
	}
	return nil
}
