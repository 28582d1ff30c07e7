package pipeline

import (
	"fmt"
	"os"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/graph"
)

// LoadGraph reads a roadmap graph from a JSON or YAML file. A path of "-"
// reads JSON from standard input.
func LoadGraph(path string) (*dag.DAG, error) {
	if path == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "graph path is required")
	}
	if path == "-" {
		g, err := graph.ReadGraph(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return g, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "graph file %s", path)
	}
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// LoadLayout reads a layout written by the layout stage.
func LoadLayout(path string) (graph.Layout, error) {
	if _, err := os.Stat(path); err != nil {
		return graph.Layout{}, errs.Wrap(errs.ErrCodeNotFound, err, "layout file %s", path)
	}
	return graph.ReadLayoutFile(path)
}
