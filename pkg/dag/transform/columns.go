package transform

import (
	"fmt"
	"strings"

	"github.com/matzehuels/secassess/pkg/dag"
)

// CyclePolicy selects how [AssignColumns] treats a graph with a directed
// cycle.
type CyclePolicy int

const (
	// CycleReject fails with [dag.ErrGraphHasCycle].
	CycleReject CyclePolicy = iota
	// CycleBreak removes back edges with [BreakCycles] and lays out the rest.
	CycleBreak
)

// ParseCyclePolicy maps "reject" and "break" to a policy.
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return CycleReject, nil
	case "break":
		return CycleBreak, nil
	}
	return CycleReject, fmt.Errorf("unknown cycle policy %q (want reject or break)", s)
}

func (p CyclePolicy) String() string {
	if p == CycleBreak {
		return "break"
	}
	return "reject"
}

// AssignColumns computes the longest-path column of every node:
// a node without predecessors sits in column 0, any other node sits one
// column to the right of its right-most predecessor. Every edge therefore
// points strictly rightward.
//
// Columns are computed by a memoized depth-first walk over predecessors.
// A predecessor that is still on the walk stack is a back edge; with
// CycleReject the walk stops and the error wraps [dag.ErrGraphHasCycle]
// and names the cycle. With CycleBreak the graph is mutated by
// [BreakCycles] first.
func AssignColumns(g *dag.DAG, policy CyclePolicy) (map[string]int, error) {
	if policy == CycleBreak {
		BreakCycles(g)
	}

	const (
		white = iota
		gray
		black
	)

	col := make(map[string]int, g.NodeCount())
	color := make(map[string]int, g.NodeCount())
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return cycleError(append(path, id))
		}
		color[id] = gray
		path = append(path, id)

		c := 0
		for _, p := range g.Parents(id) {
			if err := visit(p); err != nil {
				return err
			}
			if pc := col[p] + 1; pc > c {
				c = pc
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		col[id] = c
		return nil
	}

	for _, n := range g.Nodes() {
		if err := visit(n.ID); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// cycleError reports a predecessor walk that looped back. The walk runs
// against edge direction, so the path is reversed to read as edges.
func cycleError(walk []string) error {
	start := 0
	last := walk[len(walk)-1]
	for i, id := range walk {
		if id == last {
			start = i
			break
		}
	}
	loop := walk[start:]
	ids := make([]string, len(loop))
	for i, id := range loop {
		ids[len(loop)-1-i] = id
	}
	return fmt.Errorf("%w: %s", dag.ErrGraphHasCycle, strings.Join(ids, " -> "))
}
