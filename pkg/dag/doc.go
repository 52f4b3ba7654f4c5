// Package dag provides the directed graph behind pipeline-style diagrams:
// CI/CD pipelines, git flows, deployment strategies, promotion workflows
// and versioning schemes.
//
// # Overview
//
// A diagram is an ordered list of stages ([Node]) joined by directed
// [Edge] values. Stages carry a [NodeType] (gate, source, build, deploy,
// ...) that only affects styling. The graph keeps nodes in insertion order
// because the layout engine uses that order to stack stages that share a
// column.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "src", Label: "Checkout", Type: dag.TypeSource})
//	g.AddNode(dag.Node{ID: "bld", Label: "Compile", Type: dag.TypeBuild})
//	g.AddEdge(dag.Edge{From: "src", To: "bld"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. Diagrams may be disconnected.
//
// # Cycles
//
// Diagrams are authored by hand, so nothing prevents a user from drawing a
// loop. [DAG.Validate] reports [ErrGraphHasCycle] and [DAG.FindCycle]
// returns the offending path. The transform package can either reject such
// graphs or remove back edges before layout.
package dag
