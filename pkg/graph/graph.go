package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/roadmap/pkg/dag"
	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// Format is a graph file encoding.
type Format string

// Supported file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
// Anything other than .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a DAG to indented JSON bytes.
func MarshalGraph(g *dag.DAG) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(FromDAG(g), &buf, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph without validating it.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph")
	}
	return g, nil
}

// WriteGraph writes a DAG as JSON to an io.Writer.
func WriteGraph(g *dag.DAG, w io.Writer) error {
	return encode(FromDAG(g), w, FormatJSON)
}

// WriteGraphFile writes a DAG to path. The encoding follows the extension.
func WriteGraphFile(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(FromDAG(g), f, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadGraph decodes a JSON graph from an io.Reader into a DAG.
func ReadGraph(r io.Reader) (*dag.DAG, error) {
	return ReadGraphFormat(r, FormatJSON)
}

// ReadGraphFormat decodes a graph in the given format and validates it.
func ReadGraphFormat(r io.Reader, format Format) (*dag.DAG, error) {
	gj, err := decode(r, format)
	if err != nil {
		return nil, err
	}
	return ToDAG(gj)
}

// ReadGraphFile reads a JSON or YAML file and returns the decoded DAG.
// Returns validation errors for malformed graphs and dangling edges.
func ReadGraphFile(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraphFormat(f, FormatFromPath(path))
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(v any, w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

func decode(r io.Reader, format Format) (Graph, error) {
	var gj Graph
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&gj)
		if err == io.EOF {
			err = nil
		}
	default:
		err = json.NewDecoder(r).Decode(&gj)
	}
	if err != nil {
		return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph")
	}
	return gj, nil
}
