package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/render"
)

// renderCommand creates the render command for drawing a layout.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw a layout as SVG, DOT, PNG, PDF or JSON",
		Long: `Draw a layout produced by 'roadmap layout'.

Nodes are drawn where the layout placed them, filled by status; edge style
follows the dependency type and edge width its strength. A plain graph file
without positions is handed to Graphviz to place.

PNG and PDF output need rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, formats, detailed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show owner, progress and dates in node labels")
	addCacheFlags(cmd, &noCache)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, formats []string, detailed, noCache bool) error {
	l, err := pipeline.LoadLayout(input)
	if err != nil {
		return err
	}
	for _, f := range formats {
		if (f == pipeline.FormatPNG || f == pipeline.FormatPDF) && !render.Available() {
			return fmt.Errorf("%s output needs rsvg-convert on PATH", f)
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	opts.Formats = formats
	opts.Detailed = detailed

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths := artifactPaths(input, output, formats)
	printSuccess("Rendered %d %s", len(formats), plural(len(formats), "file", "files"))
	for _, f := range formats {
		if err := os.WriteFile(paths[f], artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
		printFile(paths[f])
	}
	printStats(len(l.Nodes), len(l.Edges), cacheHit)
	return nil
}

// artifactPaths picks a file per format. A single format with an explicit
// output uses it as-is; otherwise output (or the input name) is a base path
// that gets the format as extension. The input file is never overwritten.
func artifactPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = input
	}
	for _, f := range formats {
		p := outputPath(base, "."+f)
		if p == input {
			p = outputPath(base, ".render."+f)
		}
		paths[f] = p
	}
	return paths
}
