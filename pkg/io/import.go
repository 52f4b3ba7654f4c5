package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/secassess/pkg/dag"
)

// Diagram is a named graph as stored by the diagram builders.
type Diagram struct {
	Name        string
	Description string
	Graph       *dag.DAG
}

// ReadJSON decodes a diagram from r.
//
// The input is a JSON object with "nodes" and "edges" arrays and optional
// "name" and "description":
//
//	{
//	  "name": "Build & Ship",
//	  "nodes": [{"id": "s", "label": "Checkout", "type": "source"}],
//	  "edges": [{"from": "s", "to": "b"}]
//	}
//
// ReadJSON is strict: duplicate node IDs and edges that reference unknown
// nodes are errors. Use [Build] with lenient set to accept the dangling
// edges that older exports contain.
func ReadJSON(r io.Reader) (*Diagram, error) {
	var data wireDiagram
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g, err := Build(data.Nodes, data.Edges, false)
	if err != nil {
		return nil, err
	}
	return &Diagram{Name: data.Name, Description: data.Description, Graph: g}, nil
}

// Build assembles a DAG from wire nodes and edges. When lenient is true,
// edges with a missing endpoint are skipped instead of failing, matching
// how the diagram editors themselves ignore them.
func Build(nodes []Node, edges []Edge, lenient bool) (*dag.DAG, error) {
	g := dag.New(nil)
	for _, n := range nodes {
		nd := dag.Node{ID: n.ID, Label: n.Label, Type: dag.NodeType(n.Type), Sub: n.Sub, Meta: n.Meta}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			if lenient {
				continue
			}
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a diagram file at path.
func ImportJSON(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
