package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/secassess/pkg/dag"
	"github.com/matzehuels/secassess/pkg/dag/transform"
)

// Grid geometry in SVG user units.
const (
	NodeSpacingX = 150.0
	NodeSpacingY = 110.0
	PadLeft      = 40.0
	PadTop       = 60.0
	NodeRadius   = 32.0

	MinWidth     = 400.0
	MinHeight    = 220.0
	WidthMargin  = 80.0
	HeightMargin = 120.0
)

// Edge geometry.
const (
	EdgeStartGap   = 4.0
	EdgeEndGap     = 6.0
	CurveThreshold = 10.0
	CurveNear      = 0.4
	CurveFar       = 0.6
)

// Gate band geometry.
const (
	GateBandX     = 20.0
	GateBandY     = 12.0
	GateBandInset = 24.0
)

// Position is the pixel center of a node together with its grid cell.
type Position struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Col int     `json:"col"`
	Row int     `json:"row"`
}

// EdgePath is a routed edge. Curved edges are cubic Béziers whose control
// points share the endpoints' y coordinates.
type EdgePath struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Curved bool    `json:"curved"`
	C1     float64 `json:"c1,omitempty"`
	C2     float64 `json:"c2,omitempty"`
}

// D returns the SVG path data for the edge.
func (e EdgePath) D() string {
	if !e.Curved {
		return fmt.Sprintf("M%s,%s L%s,%s", num(e.X1), num(e.Y1), num(e.X2), num(e.Y2))
	}
	return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
		num(e.X1), num(e.Y1), num(e.C1), num(e.Y1), num(e.C2), num(e.Y2), num(e.X2), num(e.Y2))
}

// Band is the background region that groups the leading gate columns.
type Band struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Columns int     `json:"columns"`
}

// Layout is the computed placement of a diagram.
type Layout struct {
	Columns   [][]*dag.Node
	Positions map[string]Position
	Width     float64
	Height    float64
	Edges     []EdgePath
	GateBand  *Band
}

// MaxRows returns the height of the tallest column.
func (l Layout) MaxRows() int {
	m := 0
	for _, c := range l.Columns {
		m = max(m, len(c))
	}
	return m
}

type options struct {
	policy transform.CyclePolicy
}

// Option configures [Compute].
type Option func(*options)

// WithCyclePolicy selects how cyclic graphs are handled. The default is
// [transform.CycleReject].
func WithCyclePolicy(p transform.CyclePolicy) Option {
	return func(o *options) { o.policy = p }
}

// Compute places every node of g on a column/row grid and routes its edges.
//
// Columns come from [transform.AssignColumns]. Within a column, rows follow
// node insertion order and each column is centered against the tallest
// one. With [transform.CycleBreak] the layout is computed on a copy of g
// with back edges removed; the caller's graph is never modified.
//
// An empty graph yields no columns, no positions and the minimum canvas.
func Compute(g *dag.DAG, opts ...Option) (Layout, error) {
	o := options{policy: transform.CycleReject}
	for _, opt := range opts {
		opt(&o)
	}

	work := g
	if o.policy == transform.CycleBreak {
		work = g.Clone()
	}

	cols, err := transform.AssignColumns(work, o.policy)
	if err != nil {
		return Layout{}, err
	}

	l := Layout{Positions: make(map[string]Position, work.NodeCount())}
	for _, n := range work.Nodes() {
		c := cols[n.ID]
		for len(l.Columns) <= c {
			l.Columns = append(l.Columns, nil)
		}
		l.Columns[c] = append(l.Columns[c], n)
	}

	maxRows := l.MaxRows()
	for ci, col := range l.Columns {
		startY := PadTop + (float64(maxRows)*NodeSpacingY-float64(len(col))*NodeSpacingY)/2
		for ri, n := range col {
			l.Positions[n.ID] = Position{
				X:   PadLeft + float64(ci)*NodeSpacingX,
				Y:   startY + float64(ri)*NodeSpacingY,
				Col: ci,
				Row: ri,
			}
		}
	}

	l.Width = math.Max(float64(len(l.Columns))*NodeSpacingX+WidthMargin, MinWidth)
	l.Height = math.Max(float64(maxRows)*NodeSpacingY+HeightMargin, MinHeight)

	for _, e := range work.Edges() {
		if p, ok := routeEdge(l.Positions, e); ok {
			l.Edges = append(l.Edges, p)
		}
	}

	l.GateBand = gateBand(l)
	return l, nil
}

func routeEdge(pos map[string]Position, e dag.Edge) (EdgePath, bool) {
	from, ok := pos[e.From]
	if !ok {
		return EdgePath{}, false
	}
	to, ok := pos[e.To]
	if !ok {
		return EdgePath{}, false
	}

	p := EdgePath{
		From: e.From,
		To:   e.To,
		X1:   from.X + NodeRadius + EdgeStartGap,
		Y1:   from.Y,
		X2:   to.X - NodeRadius - EdgeEndGap,
		Y2:   to.Y,
	}
	if math.Abs(p.Y1-p.Y2) > CurveThreshold {
		dx := p.X2 - p.X1
		p.Curved = true
		p.C1 = p.X1 + dx*CurveNear
		p.C2 = p.X1 + dx*CurveFar
	}
	return p, true
}

// gateBand returns the band around the leading gate-only columns, or nil
// when there are none or a gate also appears further right.
func gateBand(l Layout) *Band {
	lead := 0
	for _, col := range l.Columns {
		if !allGates(col) {
			break
		}
		lead++
	}
	if lead == 0 {
		return nil
	}
	for _, col := range l.Columns[lead:] {
		for _, n := range col {
			if n.IsGate() {
				return nil
			}
		}
	}
	return &Band{
		X:       GateBandX,
		Y:       GateBandY,
		Width:   float64(lead) * NodeSpacingX,
		Height:  l.Height - GateBandInset,
		Columns: lead,
	}
}

func allGates(col []*dag.Node) bool {
	for _, n := range col {
		if !n.IsGate() {
			return false
		}
	}
	return len(col) > 0
}

// num formats a coordinate rounded to two decimals without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
