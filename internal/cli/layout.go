package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/graph"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/watch"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		follow  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions for a roadmap graph",
		Long: `Compute node positions for a roadmap graph.

The hierarchical algorithm places each item below everything it depends on
and reduces edge crossings; force-directed spreads the graph with a seeded
spring simulation. The output is a layout.json file that 'render' draws.

With --watch the layout is recomputed every time the input file changes.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = outputPath(args[0], ".layout.json")
			}
			if follow && args[0] == "-" {
				return fmt.Errorf("--watch needs a file, not stdin")
			}
			if err := c.runLayout(cmd.Context(), args[0], output, noCache); err != nil {
				if !follow {
					return err
				}
				printError("%v", err)
			}
			if !follow {
				printNewline()
				printNextStep("Render", "roadmap render "+output)
				return nil
			}
			return c.watchLayout(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "recompute when the input changes")
	addLayoutFlags(cmd)
	addCacheFlags(cmd, &noCache)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool) error {
	prog := newProgress(loggerFromContext(ctx))

	g, err := pipeline.LoadGraph(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Algorithm))
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	m, err := runner.Analyze(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	l.Metrics = &m

	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	prog.done("Layout written")
	return nil
}

// watchLayout reruns the layout on every change to input until ctx ends.
func (c *CLI) watchLayout(ctx context.Context, input, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	printInfo("Watching %s (ctrl+c to stop)", input)
	return watch.File(ctx, input, watch.Options{Logger: logger}, func(ev watch.Event) {
		if ev.Removed {
			printWarning("%s was removed; waiting for it to come back", input)
			return
		}
		logger.Debug("input changed", "path", ev.Path, "events", ev.Count)
		if err := c.runLayout(ctx, input, output, noCache); err != nil {
			printError("%v", err)
		}
	})
}
