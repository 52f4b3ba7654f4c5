// Package transform computes column placement for diagram graphs and
// repairs graphs that cannot be placed.
//
// # Column Assignment
//
// [AssignColumns] gives every node its longest-path column: sources sit in
// column 0 and every other node sits one column right of its furthest
// predecessor. The result guarantees every edge points strictly rightward,
// which is what the layout engine needs to draw left-to-right pipelines.
//
// # Cycles
//
// Hand-drawn diagrams can contain loops. [AssignColumns] detects them with
// white/gray/black coloring during its predecessor walk instead of
// recursing forever. The [CyclePolicy] decides what happens next:
//
//   - [CycleReject]: return an error wrapping dag.ErrGraphHasCycle that
//     names the loop.
//   - [CycleBreak]: drop DFS back edges with [BreakCycles] and continue.
package transform
