package transform

import "github.com/matzehuels/secassess/pkg/dag"

// BreakCycles deletes the edges that close a loop and returns them in the
// order they were found. Stages are walked in diagram order, entry stages
// first, so the edge dropped from a loop is the one pointing back towards
// the start of the pipeline. Afterwards g has no cycles.
func BreakCycles(g *dag.DAG) []dag.Edge {
	type frame struct {
		id   string
		next int // index into g.Children(id) still to visit
	}

	done := make(map[string]bool, g.NodeCount())
	onPath := make(map[string]bool)
	var loops []dag.Edge

	walk := func(start string) {
		stack := []frame{{id: start}}
		onPath[start] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				onPath[top.id] = false
				done[top.id] = true
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch {
			case onPath[child]:
				loops = append(loops, dag.Edge{From: top.id, To: child})
			case !done[child]:
				onPath[child] = true
				stack = append(stack, frame{id: child})
			}
		}
	}

	starts := append(g.Sources(), g.Nodes()...)
	for _, n := range starts {
		if !done[n.ID] {
			walk(n.ID)
		}
	}

	for _, e := range loops {
		g.RemoveEdge(e.From, e.To)
	}
	return loops
}
