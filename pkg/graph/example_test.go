package graph_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/graph"
)

func ExampleWriteGraph() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "api", Data: dag.NodeData{Label: "API"}})
	_ = g.AddNode(dag.Node{ID: "ui", Data: dag.NodeData{Label: "UI", Status: dag.StatusBlocked}})
	_ = g.AddEdge(dag.Edge{ID: "e1", Source: "api", Target: "ui"})

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "api",
	//       "data": {
	//         "label": "API",
	//         "status": "planning",
	//         "type": "task"
	//       }
	//     },
	//     {
	//       "id": "ui",
	//       "data": {
	//         "label": "UI",
	//         "status": "blocked",
	//         "type": "task"
	//       }
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "id": "e1",
	//       "source": "api",
	//       "target": "ui",
	//       "data": {
	//         "dependencyType": "blocks"
	//       }
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	input := `{
		"nodes": [
			{"id": "design", "data": {"label": "Design", "type": "epic"}},
			{"id": "build", "data": {"label": "Build", "progress": 40}}
		],
		"edges": [
			{"source": "design", "target": "build"}
		]
	}`

	g, err := graph.ReadGraph(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	n, _ := g.Node("build")
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Order:", dag.NodeIDs(g.Nodes()))
	fmt.Println("Progress:", *n.Data.Progress)
	// Output:
	// Nodes: 2
	// Order: [design build]
	// Progress: 40
}

func ExampleReadGraph_danglingEdges() {
	input := `{
		"nodes": [{"id": "a"}],
		"edges": [
			{"id": "e1", "source": "a", "target": "ghost"},
			{"id": "e2", "source": "phantom", "target": "a"}
		]
	}`

	_, err := graph.ReadGraph(strings.NewReader(input))
	fmt.Println(err)
	// Output:
	// validation failed: edge "e1": unknown target node: "ghost"; edge "e2": unknown source node: "phantom"
}

func ExampleReadGraphFile() {
	dir, _ := os.MkdirTemp("", "roadmap-example")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "roadmap.yaml")
	content := `nodes:
  - id: launch
    data:
      label: Launch
      type: milestone
edges: []
`
	_ = os.WriteFile(path, []byte(content), 0644)

	g, err := graph.ReadGraphFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	n, _ := g.Node("launch")
	fmt.Println(n.Data.Label, n.Data.Type)
	// Output:
	// Launch milestone
}
