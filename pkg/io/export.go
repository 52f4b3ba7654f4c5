package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/secassess/pkg/dag"
)

type wireDiagram struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	ExportedAt  string `json:"exportedAt,omitempty"`
}

// Node is the wire form of a diagram stage.
type Node struct {
	ID    string       `json:"id"`
	Label string       `json:"label,omitempty"`
	Type  string       `json:"type,omitempty"`
	Sub   string       `json:"sub,omitempty"`
	Meta  dag.Metadata `json:"meta,omitempty"`
}

// Edge is the wire form of a diagram connection.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a diagram and stamps it with the export time.
// The output can be read back with [ReadJSON].
func WriteJSON(d *Diagram, w io.Writer) error {
	out := wireDiagram{
		Name:        d.Name,
		Description: d.Description,
		Nodes:       make([]Node, 0, d.Graph.NodeCount()),
		Edges:       make([]Edge, 0, d.Graph.EdgeCount()),
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, n := range d.Graph.Nodes() {
		nd := Node{ID: n.ID, Label: n.Label, Type: string(n.Type), Sub: n.Sub}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range d.Graph.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a diagram to a JSON file at path.
func ExportJSON(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
