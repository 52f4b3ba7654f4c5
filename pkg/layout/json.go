package layout

import "encoding/json"

type layoutJSON struct {
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Columns   [][]string          `json:"columns"`
	Positions map[string]Position `json:"positions"`
	Edges     []EdgePath          `json:"edges"`
	GateBand  *Band               `json:"gateBand,omitempty"`
}

// MarshalJSON encodes columns as node ID lists alongside positions and
// routed edges.
func (l Layout) MarshalJSON() ([]byte, error) {
	cols := make([][]string, len(l.Columns))
	for i, c := range l.Columns {
		cols[i] = make([]string, len(c))
		for j, n := range c {
			cols[i][j] = n.ID
		}
	}
	edges := l.Edges
	if edges == nil {
		edges = []EdgePath{}
	}
	pos := l.Positions
	if pos == nil {
		pos = map[string]Position{}
	}
	return json.Marshal(layoutJSON{
		Width:     l.Width,
		Height:    l.Height,
		Columns:   cols,
		Positions: pos,
		Edges:     edges,
		GateBand:  l.GateBand,
	})
}

// RenderJSON returns the indented JSON form of l.
func RenderJSON(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}
