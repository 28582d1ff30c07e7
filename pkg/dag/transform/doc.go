// Package transform provides the graph transformations used by the
// hierarchical layout to turn an arbitrary roadmap graph into a proper
// layered graph.
//
// # Overview
//
// The hierarchical layout needs a graph where:
//
//   - There are no directed cycles
//   - Every node has a row (rank) with parents strictly above children
//   - Edges connect only consecutive rows
//
// The transformations below establish those properties in order. All of them
// mutate the graph they are given, so callers work on a [dag.DAG.Clone].
//
// # Cycle Breaking
//
// [BreakCycles] removes the back edges of a depth-first search started from
// the source nodes. Self-loops are back edges and are always removed. The
// removed edges are returned so that callers can log or report them.
//
// # Layer Assignment
//
// [AssignLayers] computes a longest-path layering with Kahn's algorithm:
// sources sit at row 0, every other node one row below its deepest parent.
//
// # Edge Subdivision
//
// [Subdivide] replaces each edge spanning more than one row with a chain of
// synthetic nodes, one per intermediate row, so that crossing counts between
// adjacent rows see every edge.
//
// [dag.DAG.Clone]: github.com/matzehuels/roadmap/pkg/dag.DAG.Clone
package transform
