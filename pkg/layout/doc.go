// Package layout computes 2D positions for the nodes of a roadmap graph.
//
// # Overview
//
// Two interchangeable algorithms are provided:
//
//   - [Hierarchical]: a Sugiyama-style layered layout. Nodes are ranked by
//     longest path from the sources and drawn top to bottom in fixed-size
//     boxes, with rank order chosen to reduce edge crossings.
//   - [ForceDirected]: a spring-embedder simulation. Linked nodes attract,
//     all nodes repel, and the result is shifted into positive space.
//
// Select one by name with [Parse] and run it with [Apply]. Both return a
// clone of the input with new positions; node data, edges and the input
// graph are untouched.
//
// # Coordinates
//
// A node position is the top-left corner of its box. The hierarchical
// layout computes box centers and subtracts half the box size; the force
// layout treats the simulated point as the corner directly.
//
// # Configuration
//
// [Options] carries every tunable constant: box size and separations for
// the layered layout, iteration count, spring length, cooling, damping and
// seed for the simulation. Its zero value means "all defaults".
//
// # Incremental Simulation
//
// For interactive use, [NewSimulation] and [Simulation.Step] let a caller
// advance the force layout a step at a time, for example once per frame,
// instead of blocking for all iterations.
//
// # Determinism
//
// The hierarchical layout is deterministic. The force layout is
// deterministic for a given [Options.Seed] and input positions; nodes that
// already have positions start from them.
package layout
