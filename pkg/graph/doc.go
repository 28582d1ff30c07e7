// Package graph provides the serialization types for roadmap graphs,
// analysis metrics and layouts.
//
// This package defines the wire format used for files, HTTP bodies, events
// and cache entries. It sits at the boundary between the in-memory graph
// model (pkg/dag) and the outside world:
//
//   - [Graph], [Node], [Edge]: the node/edge snapshot
//   - [Metrics]: the result of pkg/analyze
//   - [Layout]: a positioned graph with its frame size
//
// Use [FromDAG] and [ToDAG] to convert. ToDAG validates: dangling edges and
// invalid statuses are collected into one validation error rather than
// silently dropped.
//
// # Graph Serialization
//
// Graphs use a node-link format with camelCase attribute names:
//
//	{
//	  "nodes": [
//	    {"id": "api", "data": {"label": "API", "status": "in-progress"}},
//	    {"id": "ui", "data": {"label": "UI"}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "api", "target": "ui", "data": {"dependencyType": "blocks"}}
//	  ]
//	}
//
// Files ending in .yaml or .yml are read and written as YAML with the same
// field names; everything else is JSON.
//
//	g, _ := graph.ReadGraphFile("roadmap.yaml")   // File → DAG
//	graph.WriteGraphFile(g, "roadmap.json")       // DAG → File
//	data, _ := graph.MarshalGraph(g)              // DAG → []byte
//
// # Ordering
//
// Node and edge order survive a round trip. The analyzers break ties by
// insertion order, so reordering a file can change which of two equally
// long critical paths is reported.
package graph
