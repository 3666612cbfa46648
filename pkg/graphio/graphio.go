// Package graphio serializes layout graphs: JSON for programmatic
// consumers and Graphviz DOT/SVG for visual output.
//
// The JSON format is the canonical interchange shape for layout results
// and is designed for round-trip fidelity: write → read produces an
// identical graph.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kintreehq/kintree/pkg/layout"
)

// MarshalGraph converts a layout graph to indented JSON bytes.
func MarshalGraph(g *layout.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a layout graph as JSON to w.
func WriteGraph(g *layout.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// WriteGraphFile writes a layout graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *layout.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (*layout.Graph, error) {
	var g layout.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []*layout.Node{}
	}
	if g.Edges == nil {
		g.Edges = []*layout.Edge{}
	}
	return &g, nil
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (*layout.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
