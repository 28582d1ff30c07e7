// Package editor implements a roadmap editing session.
//
// An [Editor] owns the active graph, its undo/redo [history.History] and a
// [events.Publisher]. Every successful mutation:
//
//   - pushes the state it replaced onto the history
//   - recomputes the analytics ([analyze.Metrics])
//   - publishes one change event followed by a metrics event
//
// Failed mutations leave the graph, the history and the metrics untouched.
//
// # Usage
//
//	ed := editor.New(g, editor.Options{Publisher: broker, Logger: logger})
//	n, err := ed.AddNode(ctx, dag.Node{Data: dag.NodeData{Label: "Design"}})
//	_, err = ed.AddEdge(ctx, dag.Edge{Source: n.ID, Target: "build"})
//	err = ed.ApplyLayout(ctx, layout.AlgorithmHierarchical)
//	err = ed.Undo(ctx)
//
// Nodes and edges added without an ID get a generated one (see idgen).
//
// # Concurrency
//
// Editor is safe for concurrent use. Mutations are serialized; readers get
// private copies of the graph.
package editor
