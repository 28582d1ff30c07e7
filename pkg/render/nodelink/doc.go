// Package nodelink renders roadmap graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as boxes filled by status and connected by arrows styled by
// dependency type:
//
//   - blocks: solid
//   - requires: dashed
//   - relates-to: dotted
//
// Edge strength sets the pen width.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, g, nodelink.Options{Detailed: true})
//
// # Positions
//
// If every node has a position, [ToDOT] pins each box at the layout
// coordinates (pos="x,y!") and [RenderSVG] runs the neato engine, which
// honors pinned nodes and only routes the edges. Layout coordinates grow
// downwards while Graphviz's grow upwards, so y is negated. Graphs without
// positions are laid out top to bottom by the dot engine.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through the parent render package.
package nodelink
