// Package layout positions pipeline-style diagrams on a column/row grid.
//
// # Algorithm
//
// Every node gets the longest-path column computed by
// [transform.AssignColumns], so all edges point strictly rightward. Nodes
// sharing a column are stacked in insertion order and each column is
// centered vertically against the tallest one:
//
//	startY = PadTop + (maxRows*NodeSpacingY - len(col)*NodeSpacingY) / 2
//	x      = PadLeft + col*NodeSpacingX
//	y      = startY + row*NodeSpacingY
//
// Edges leave a node at its right rim and enter the next at its left rim.
// When the endpoints differ vertically by more than [CurveThreshold] the
// edge becomes a cubic curve with control points at 40% and 60% of the
// horizontal distance.
//
// Gate stages occupying the leading columns are wrapped in a dashed band.
// The band is omitted when a gate also appears after a non-gate column.
//
// # Sinks
//
// [RenderSVG] draws a [Layout]; [Layout.MarshalJSON] exposes positions for
// external tools. [ToDOT] and [RenderDOTSVG] produce a Graphviz view of the
// same graph.
//
// # Cycles
//
// Cyclic graphs fail with [dag.ErrGraphHasCycle] unless
// [WithCyclePolicy] selects [transform.CycleBreak].
package layout
