// Package pkg holds the libraries behind the roadmap CLI and server.
//
// # Overview
//
// A roadmap is a graph of work items (projects, epics, features, tasks,
// milestones) joined by dependency edges. The libraries fall into four
// groups:
//
//  1. Model: [dag] (graph container and sentinel errors), [graph] (JSON and
//     YAML wire types and file I/O)
//  2. Analysis and layout: [analyze] (cycles, depth, critical path,
//     isolated items), [layout] (hierarchical and force-directed placement)
//  3. Editing: [editor] (concurrency-safe session with undo and redo),
//     [history], [events] (in-process broker, NATS publisher), [idgen]
//  4. Plumbing: [pipeline] (analyze → layout → render with caching),
//     [cache], [render], [config], [watch], [observability], [telemetry]
//
// # Architecture
//
//	graph.json / graph.yaml
//	         ↓
//	    [graph] → [dag]
//	         ↓
//	    [analyze]   [layout]
//	         ↓         ↓
//	      [pipeline] ([cache])
//	         ↓
//	    [render] → SVG / DOT / PNG / PDF / JSON
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("roadmap.json")
//	m := analyze.Compute(g)
//	fmt.Println("critical path:", m.CriticalPath)
//
//	positioned, _ := layout.Apply(ctx, g, layout.AlgorithmHierarchical, layout.Options{})
//	svg, _ := nodelink.RenderSVG(ctx, positioned, nodelink.Options{})
//
// [dag]: github.com/matzehuels/roadmap/pkg/dag
// [graph]: github.com/matzehuels/roadmap/pkg/graph
// [analyze]: github.com/matzehuels/roadmap/pkg/analyze
// [layout]: github.com/matzehuels/roadmap/pkg/layout
// [editor]: github.com/matzehuels/roadmap/pkg/editor
// [history]: github.com/matzehuels/roadmap/pkg/history
// [events]: github.com/matzehuels/roadmap/pkg/events
// [idgen]: github.com/matzehuels/roadmap/pkg/idgen
// [pipeline]: github.com/matzehuels/roadmap/pkg/pipeline
// [cache]: github.com/matzehuels/roadmap/pkg/cache
// [render]: github.com/matzehuels/roadmap/pkg/render
// [config]: github.com/matzehuels/roadmap/pkg/config
// [watch]: github.com/matzehuels/roadmap/pkg/watch
// [observability]: github.com/matzehuels/roadmap/pkg/observability
// [telemetry]: github.com/matzehuels/roadmap/pkg/telemetry
package pkg
