// Package render turns laid-out roadmap graphs into images.
//
// # Overview
//
// The [nodelink] subpackage draws a graph as boxes and arrows through
// Graphviz. When every node carries a position from the layout engine the
// boxes are pinned where the layout put them; otherwise Graphviz lays the
// graph out itself.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, g, nodelink.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/roadmap/pkg/render/nodelink
package render
