package layout

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/secassess/pkg/dag"
)

// StageColors maps node types to their stroke color.
var StageColors = map[dag.NodeType]string{
	dag.TypeGate:     "#ff3b5c",
	dag.TypeSource:   "#a29bfe",
	dag.TypeBuild:    "#6c5ce7",
	dag.TypeTest:     "#ffd166",
	dag.TypeScan:     "#fd79a8",
	dag.TypeArtifact: "#ff8c42",
	dag.TypeDeploy:   "#00cec9",
	dag.TypeApprove:  "#e17055",
	dag.TypeMonitor:  "#55efc4",
	dag.TypeRelease:  "#74b9ff",
	dag.TypeBranch:   "#6c5ce7",
	dag.TypeCommit:   "#ffd166",
	dag.TypeMerge:    "#00cec9",
	dag.TypeTag:      "#ff8c42",
	dag.TypeCustom:   "#636e72",
}

// StageColor returns the color for t, falling back to the custom color.
func StageColor(t dag.NodeType) string {
	if c, ok := StageColors[t]; ok {
		return c
	}
	return StageColors[dag.TypeCustom]
}

const (
	gateHalf      = 26.0
	labelMaxLen   = 16
	subMaxLen     = 22
	labelOffset   = NodeRadius + 16
	subOffset     = NodeRadius + 28
	gateLabelOff  = 40.0
	gateSubOff    = 52.0
	labelFontSize = 10
	subFontSize   = 8
	edgeColor     = "#8b88a2"
	textColor     = "#e8e6f0"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	section    string
	background string
	text       string
	muted      string
}

// WithTitle sets the diagram name, emitted as a <title> and a
// data-diagram-name attribute.
func WithTitle(name string) SVGOption { return func(r *svgRenderer) { r.title = name } }

// WithSection tags the root element with a data-section attribute so
// captured images can be routed to their report section.
func WithSection(id string) SVGOption { return func(r *svgRenderer) { r.section = id } }

// WithBackground fills the canvas with a solid color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTextColors overrides the label and muted text colors.
func WithTextColors(text, muted string) SVGOption {
	return func(r *svgRenderer) { r.text, r.muted = text, muted }
}

// RenderSVG draws a computed layout: gate band, edges with arrowheads, then
// nodes with their labels. Gates are diamonds, other stages circles.
func RenderSVG(l Layout, opts ...SVGOption) []byte {
	r := svgRenderer{text: textColor, muted: edgeColor}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s"`,
		num(l.Width), num(l.Height), num(l.Width), num(l.Height))
	if r.section != "" {
		fmt.Fprintf(&buf, ` data-section="%s"`, escapeXML(r.section))
	}
	if r.title != "" {
		fmt.Fprintf(&buf, ` data-diagram-name="%s"`, escapeXML(r.title))
	}
	buf.WriteString(">\n")

	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	fmt.Fprintf(&buf, `  <defs><marker id="ah" markerWidth="8" markerHeight="6" refX="8" refY="3" orient="auto"><polygon points="0 0, 8 3, 0 6" fill="%s"/></marker></defs>`+"\n", r.muted)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	if b := l.GateBand; b != nil {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="12" fill="rgba(255,59,92,0.04)" stroke="rgba(255,59,92,0.18)" stroke-dasharray="6 3"/>`+"\n",
			num(b.X), num(b.Y), num(b.Width), num(b.Height))
		fmt.Fprintf(&buf, `  <text x="%s" y="28" font-size="9" fill="%s" font-family="monospace" text-anchor="middle" letter-spacing="1.5">GATES</text>`+"\n",
			num(b.X+b.Width/2), StageColors[dag.TypeGate])
	}

	for _, e := range l.Edges {
		fmt.Fprintf(&buf, `  <path d="%s" fill="none" stroke="%s" stroke-width="1.5" marker-end="url(#ah)" opacity=".7"/>`+"\n", e.D(), r.muted)
	}

	for _, col := range l.Columns {
		for _, n := range col {
			r.renderNode(&buf, n, l.Positions[n.ID])
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderNode(buf *bytes.Buffer, n *dag.Node, p Position) {
	c := StageColor(n.Type)
	fmt.Fprintf(buf, `  <g id="node-%s">`+"\n", escapeXML(n.ID))
	if n.IsGate() {
		fmt.Fprintf(buf, `    <polygon points="%s,%s %s,%s %s,%s %s,%s" fill="%s14" stroke="%s" stroke-width="2"/>`+"\n",
			num(p.X), num(p.Y-gateHalf), num(p.X+gateHalf), num(p.Y),
			num(p.X), num(p.Y+gateHalf), num(p.X-gateHalf), num(p.Y), c, c)
	} else {
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s14" stroke="%s" stroke-width="2"/>`+"\n",
			num(p.X), num(p.Y), num(NodeRadius), c, c)
	}

	ly, sy := p.Y+labelOffset, p.Y+subOffset
	if n.IsGate() {
		ly, sy = p.Y+gateLabelOff, p.Y+gateSubOff
	}
	fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" font-size="%d" fill="%s" font-weight="600">%s</text>`+"\n",
		num(p.X), num(ly), labelFontSize, r.text, escapeXML(Ellipsis(n.DisplayLabel(), labelMaxLen)))
	if n.Sub != "" {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" font-size="%d" fill="%s" font-family="monospace">%s</text>`+"\n",
			num(p.X), num(sy), subFontSize, r.muted, escapeXML(Ellipsis(n.Sub, subMaxLen)))
	}
	buf.WriteString("  </g>\n")
}

// Ellipsis shortens s to n runes, replacing the tail with "…".
func Ellipsis(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n || n < 1 {
		return s
	}
	return string(rs[:n-1]) + "…"
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
