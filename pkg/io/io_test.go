package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/secassess/pkg/dag"
)

const sample = `{
  "name": "Ship",
  "description": "main",
  "nodes": [
    {"id": "g", "label": "Policy", "type": "gate"},
    {"id": "s", "label": "Checkout", "type": "source", "sub": "git"},
    {"id": "d", "label": "Deploy", "type": "deploy"}
  ],
  "edges": [{"from": "g", "to": "s"}, {"from": "s", "to": "d"}]
}`

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if d.Name != "Ship" || d.Description != "main" {
		t.Errorf("name/description = %q/%q", d.Name, d.Description)
	}
	if got := dag.NodeIDs(d.Graph.Nodes()); !slices.Equal(got, []string{"g", "s", "d"}) {
		t.Errorf("node order = %v", got)
	}
	n, _ := d.Graph.Node("s")
	if n.Type != dag.TypeSource || n.Sub != "git" || n.Label != "Checkout" {
		t.Errorf("node s = %+v", n)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "dangling edge", input: `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"x"}]}`, wantErr: dag.ErrUnknownTargetNode},
		{name: "duplicate node", input: `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, wantErr: dag.ErrDuplicateNodeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON(malformed) should fail")
	}
}

func TestBuildLenient(t *testing.T) {
	g, err := Build([]Node{{ID: "a"}, {ID: "b"}}, []Edge{{From: "a", To: "b"}, {From: "a", To: "gone"}}, true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if back.Graph.NodeCount() != 3 || back.Graph.EdgeCount() != 2 {
		t.Errorf("round trip lost data: %d nodes, %d edges", back.Graph.NodeCount(), back.Graph.EdgeCount())
	}

	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"exportedAt"`) {
		t.Error("WriteJSON() should stamp exportedAt")
	}
}
