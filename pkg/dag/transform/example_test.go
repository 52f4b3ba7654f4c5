package transform_test

import (
	"fmt"

	"github.com/matzehuels/secassess/pkg/dag"
	"github.com/matzehuels/secassess/pkg/dag/transform"
)

func ExampleAssignColumns() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "gate", Type: dag.TypeGate})
	_ = g.AddNode(dag.Node{ID: "build", Type: dag.TypeBuild})
	_ = g.AddNode(dag.Node{ID: "test", Type: dag.TypeTest})
	_ = g.AddNode(dag.Node{ID: "scan", Type: dag.TypeScan})
	_ = g.AddEdge(dag.Edge{From: "gate", To: "build"})
	_ = g.AddEdge(dag.Edge{From: "build", To: "test"})
	_ = g.AddEdge(dag.Edge{From: "build", To: "scan"})

	cols, _ := transform.AssignColumns(g, transform.CycleReject)
	for _, n := range g.Nodes() {
		fmt.Println(n.ID, cols[n.ID])
	}
	// Output:
	// gate 0
	// build 1
	// test 2
	// scan 2
}

func ExampleBreakCycles() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	for _, e := range transform.BreakCycles(g) {
		fmt.Printf("removed: %s -> %s\n", e.From, e.To)
	}
	fmt.Println("edges:", g.EdgeCount())
	// Output:
	// removed: b -> a
	// edges: 1
}
