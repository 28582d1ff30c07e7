package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/layout"
)

// pointsPerInch converts layout units, treated as points, to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds status, type, owner and progress lines to node labels.
	// When false, only the label (or ID) is shown.
	Detailed bool

	// NodeWidth and NodeHeight are the box size used for pinned layouts.
	// Default: the layout engine's node size.
	NodeWidth  float64
	NodeHeight float64
}

func (o Options) withDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = layout.DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = layout.DefaultNodeHeight
	}
	return o
}

var statusFill = map[dag.Status]string{
	dag.StatusPlanning:   "#e2e8f0",
	dag.StatusInProgress: "#bfdbfe",
	dag.StatusCompleted:  "#bbf7d0",
	dag.StatusBlocked:    "#fecaca",
	dag.StatusOnHold:     "#fde68a",
}

var dependencyStyle = map[dag.DependencyType]string{
	dag.DependencyBlocks:    "solid",
	dag.DependencyRequires:  "dashed",
	dag.DependencyRelatesTo: "dotted",
}

var strengthWidth = map[dag.Strength]string{
	dag.StrengthWeak:   "1",
	dag.StrengthMedium: "2",
	dag.StrengthStrong: "3",
}

// Positioned reports whether every node of a non-empty g has a position.
func Positioned(g *dag.DAG) bool {
	if g.NodeCount() == 0 {
		return false
	}
	for _, n := range g.Nodes() {
		if n.Position == nil {
			return false
		}
	}
	return true
}

// ToDOT converts a roadmap graph to Graphviz DOT. Nodes and edges appear in
// insertion order, so the output is deterministic.
func ToDOT(g *dag.DAG, opts Options) string {
	opts = opts.withDefaults()
	pinned := Positioned(g)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if pinned {
		buf.WriteString("  splines=true;\n")
		buf.WriteString("  overlap=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := nodeAttrs(*n, opts)
		if pinned {
			attrs = append(attrs, pinAttrs(*n.Position, opts)...)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	label := n.Data.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{label, fmt.Sprintf("%s · %s", n.Data.Type, n.Data.Status)}
	if n.Data.Owner != "" {
		parts = append(parts, "owner: "+n.Data.Owner)
	}
	if n.Data.Progress != nil {
		parts = append(parts, fmt.Sprintf("progress: %d%%", *n.Data.Progress))
	}
	if n.Data.StartDate != "" || n.Data.EndDate != "" {
		parts = append(parts, fmt.Sprintf("%s → %s", n.Data.StartDate, n.Data.EndDate))
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(n dag.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("fillcolor=%q", statusFill[n.Data.Status]),
	}
	if n.Data.Type == dag.TypeMilestone {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

// pinAttrs fixes a node's box at its layout position. Graphviz positions
// the node center and its y axis points up.
func pinAttrs(p dag.Position, opts Options) []string {
	cx := p.X + opts.NodeWidth/2
	cy := p.Y + opts.NodeHeight/2
	return []string{
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(cx), fmtFloat(-cy)),
		fmt.Sprintf("width=%s", fmtFloat(opts.NodeWidth/pointsPerInch)),
		fmt.Sprintf("height=%s", fmtFloat(opts.NodeHeight/pointsPerInch)),
		"fixedsize=true",
	}
}

func edgeAttrs(e dag.Edge) []string {
	attrs := []string{fmt.Sprintf("style=%s", dependencyStyle[e.Data.DependencyType])}
	if w, ok := strengthWidth[e.Data.Strength]; ok {
		attrs = append(attrs, "penwidth="+w)
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG draws g as SVG using Graphviz. Fully positioned graphs keep
// their layout; others are laid out by the dot engine.
func RenderSVG(ctx context.Context, g *dag.DAG, opts Options) ([]byte, error) {
	engine := graphviz.DOT
	if Positioned(g) {
		engine = graphviz.NEATO
	}
	return RenderDOT(ctx, ToDOT(g, opts), engine)
}

// RenderDOT renders DOT source to SVG with the given Graphviz engine.
func RenderDOT(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with a plain one whose size
// matches the viewBox, so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
