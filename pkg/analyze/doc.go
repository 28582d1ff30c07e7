// Package analyze computes the derived metrics of a roadmap graph.
//
// # Overview
//
// Every edit to a roadmap triggers a metrics pass over the current snapshot.
// The pass answers four questions:
//
//   - Are there circular dependencies? ([DetectCycles])
//   - How deep is the longest dependency chain? ([MaxDepth])
//   - Which chain is it? ([CriticalPath])
//   - Which items are not connected to anything? ([Isolated])
//
// [Compute] runs all of them and adds per-status and per-type counts.
//
// All functions are pure: they never mutate the graph and return the same
// result for the same snapshot. The graph is validated when it is built
// (see dag.FromSlices), so no function here has to cope with edges that
// point at missing nodes.
//
// # Cycles
//
// Cycles are tolerated everywhere. The cycle detector reports them. On a
// cyclic graph the depth search enters each node once per root, and the
// critical path search never revisits a node already on the current path,
// so both terminate on any input. Only the critical path search can grow
// exponentially, because it enumerates simple paths.
//
// # Ordering
//
// Roots are taken in node insertion order and children in edge insertion
// order. When several critical paths have the same length, the first one
// found in that depth-first order is returned.
package analyze
