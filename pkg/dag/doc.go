// Package dag provides the roadmap dependency graph: typed nodes and edges
// plus an insertion-ordered container with validation at the mutation
// boundary.
//
// # Overview
//
// A roadmap is a set of work items (projects, epics, features, tasks,
// milestones) connected by dependency edges. Each [Node] carries a status,
// type, owner and optional progress and dates; each [Edge] carries a
// [DependencyType] and an optional [Strength].
//
// Although the package is called dag, the graph is not required to be
// acyclic. Users create cycles by mistake and the analyzers in the analyze
// package are there to report them. Self-loops and parallel edges are
// accepted.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "design", Data: dag.NodeData{Label: "Design"}})
//	g.AddNode(dag.Node{ID: "build", Data: dag.NodeData{Label: "Build"}})
//	g.AddEdge(dag.Edge{Source: "design", Target: "build"})
//
// To load a whole snapshot use [FromSlices], which reports every invalid
// node and every dangling edge in a single validation error.
//
// # Ordering
//
// [DAG.Nodes] returns nodes in insertion order and [DAG.Children] returns
// targets in edge insertion order. Traversals in the analyze package rely on
// this: root order and child order decide which of several equally long
// critical paths is reported.
//
// # Adjacency
//
// [BuildAdjacency] turns a raw edge list into a source to targets map. The
// DAG keeps the same adjacency internally, so [DAG.Children] agrees with
// BuildAdjacency over [DAG.Edges].
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time. The hierarchical
// layout uses them to compare candidate orderings within each row.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph. Use
// [DAG.Clone] to hand a private copy to another goroutine.
//
// # Related Packages
//
// The [transform] subpackage provides the cycle breaking and layer
// assignment used by the hierarchical layout.
//
// [transform]: github.com/matzehuels/roadmap/pkg/dag/transform
package dag
