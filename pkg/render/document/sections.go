package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/secassess/pkg/report"
)

const keyColumnWidth = 160.0

// column is a table column: header text and width in points.
type column struct {
	title string
	width float64
}

// cell is one rendered table cell.
type cell struct {
	text  string
	color string
}

func (r *renderer) section(s report.Section, imgs []report.Image) {
	r.startSection(s.Title)
	switch b := s.Body.(type) {
	case report.KeyValue:
		r.keyValues(b)
	case report.Table:
		r.responses(b)
	case report.FlowList:
		r.flows(b)
	case report.Gantt:
		r.gantt(b)
	case report.Workplan:
		r.workplan(b)
	}
	if isDiagramSection(s.ID) {
		r.images(report.ImagesFor(imgs, s.ID))
	}
}

func isDiagramSection(id report.SectionID) bool {
	for _, d := range report.DiagramSections {
		if d == id {
			return true
		}
	}
	return false
}

// =============================================================================
// Key-value and flow sections
// =============================================================================

func (r *renderer) keyValues(kv report.KeyValue) {
	lh := lineHeight(SizeBody)
	for _, it := range kv.Items {
		value := r.wrap(report.Clean(it.Value), SizeBody, UsableWidth-keyColumnWidth)
		y := r.place(max(26, float64(len(value))*lh))
		r.text(Margin, y, keyColumnWidth, SizeBody, report.Palette.Accent, report.Clean(it.Key)+":", "L")
		for i, line := range value {
			r.text(Margin+keyColumnWidth, y+float64(i)*lh, UsableWidth-keyColumnWidth, SizeBody, report.Palette.Text, line, "L")
		}
		r.moveDown(float64(len(value)) * lh)
		r.lines(0.55, SizeBody)
	}
	if len(kv.Phases) > 0 {
		r.subhead("Project Phases", 0.4)
		for _, p := range kv.Phases {
			y := r.place(22)
			r.text(Margin+14, y, UsableWidth-14, SizeBody, report.Palette.Text, "•  "+p.Label(), "L")
			r.lines(1.35, SizeBody)
		}
	}
}

func (r *renderer) flows(fl report.FlowList) {
	const sep = "    "
	lh := lineHeight(SizeBody)
	width := UsableWidth - 12
	for _, f := range fl.Flows {
		names := r.wrap("•  "+report.Clean(f.Name), SizeBody, width)
		detail := strings.Join(flowParts(f, fl.Registries), "  ·  ")

		// Details share the line with a name that fits on one line.
		inline := detail != "" && len(names) == 1 && r.width(names[0]+sep+detail) <= width
		var details []string
		if detail != "" && !inline {
			details = r.wrap(detail, SizeBody, width)
		}
		h := float64(len(names)+len(details)) * lh

		y := r.place(max(24, h))
		for i, line := range names {
			r.text(Margin+12, y+float64(i)*lh, width, SizeBody, report.Palette.Text, line, "L")
		}
		if inline {
			nw := r.width(names[0])
			r.text(Margin+12+nw, y, width-nw, SizeBody, report.Palette.Muted, sep+detail, "L")
		}
		for i, line := range details {
			r.text(Margin+12, y+float64(len(names)+i)*lh, width, SizeBody, report.Palette.Muted, line, "L")
		}
		r.moveDown(h)
		r.lines(0.45, SizeBody)
	}
}

// flowParts lists the bullet details: category, stage or repository count
// and a shortened description.
func flowParts(f report.Flow, registries bool) []string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, "["+report.Clean(f.Category)+"]")
	}
	if registries {
		parts = append(parts, fmt.Sprintf("%d repos", f.Repos))
	} else {
		parts = append(parts, fmt.Sprintf("%d stages", f.Stages))
	}
	if f.Description != "" {
		parts = append(parts, report.Truncate(report.Clean(f.Description), 70))
	}
	return parts
}

// =============================================================================
// Tables
// =============================================================================

// header draws a table header of height h and moves below it.
func (r *renderer) header(cols []column, h float64) {
	y := r.place(h+4) + 4
	r.rect(Margin, y, UsableWidth, h, report.Palette.HeaderBg)
	x := Margin + 8
	for _, c := range cols {
		r.text(x, y+(h-SizeTable)/2-1, c.width, SizeTable, report.Palette.Accent, c.title, "L")
		x += c.width
	}
	r.moveTo(y + h + 2)
}

// row draws one banded table row and moves below it.
func (r *renderer) row(idx int, cols []column, cells []cell) {
	y := r.place(RowHeight)
	if idx%2 == 0 {
		r.rect(Margin, y, UsableWidth, RowHeight-1, report.Palette.RowAlt)
	}
	x := Margin + 8
	for i, c := range cells {
		r.text(x, y+5, cols[i].width, SizeTable, c.color, c.text, "L")
		x += cols[i].width
	}
	r.moveTo(y + RowHeight)
}

func (r *renderer) responses(t report.Table) {
	cols := []column{{"Control ID", 130}, {"Status", 85}, {"Notes", UsableWidth - 225}}
	r.header(cols, HeaderRowHeight)
	for i, row := range t.Rows {
		if i == MaxTableRows {
			break
		}
		status := row[1]
		r.row(i, cols, []cell{
			{report.Truncate(row[0], 24), report.Palette.Muted},
			{strings.ToUpper(status), report.StatusColor(status)},
			{report.Truncate(row[2], 90), report.Palette.Text},
		})
	}
	if n := len(t.Rows) - MaxTableRows; n > 0 {
		y := r.place(RowHeight)
		r.text(Margin, y, UsableWidth, SizeSmall, report.Palette.Muted, fmt.Sprintf("… and %d more controls not shown", n), "L")
		r.moveDown(RowHeight)
	}
}

func (r *renderer) gantt(g report.Gantt) {
	if len(g.Tasks) == 0 {
		r.placeholder("(no tasks configured)")
		return
	}
	cols := []column{{"Task", UsableWidth - 260}, {"Category", 75}, {"Start", 55}, {"Duration", 60}, {"Deps", 70}}
	r.header(cols, HeaderRowHeight)
	for i, t := range g.Tasks {
		deps := strings.Join(t.Deps, ",")
		if deps == "" {
			deps = report.Dash
		}
		r.row(i, cols, []cell{
			{report.Truncate(orDash(t.Name), 45), report.Palette.Text},
			{orDash(t.Category), report.Palette.Muted},
			{t.StartLabel(), report.Palette.Muted},
			{t.DurationLabel(), report.Palette.Muted},
			{deps, report.Palette.Muted},
		})
	}
}

func (r *renderer) workplan(w report.Workplan) {
	if w.Empty() {
		r.placeholder("(none configured)")
		return
	}

	if len(w.Milestones) > 0 {
		r.subhead("Milestones", 0.5)
		cols := []column{{"Milestone", UsableWidth - 245}, {"Target", 70}, {"Owner", 90}, {"Status", 85}}
		r.header(cols, SubHeaderHeight)
		for i, m := range w.Milestones {
			r.row(i, cols, []cell{
				{report.Truncate(orDash(m.Name), 40), report.Palette.Text},
				{report.Truncate(orDash(m.Target), 14), report.Palette.Muted},
				{report.Truncate(orDash(m.Owner), 20), report.Palette.Muted},
				{orDash(m.Status), report.Palette.Muted},
			})
		}
	}

	if len(w.Roles) > 0 {
		r.subhead("Team Roles", 0.6)
		cols := []column{{"", keyColumnWidth}, {"", UsableWidth - keyColumnWidth - 8}}
		for i, role := range w.Roles {
			r.row(i, cols, []cell{
				{report.Clean(role.Role) + " (x" + strconv.Itoa(role.Count) + ")", report.Palette.Text},
				{report.Truncate(role.Responsibilities, 80), report.Palette.Muted},
			})
		}
	}

	if len(w.Risks) > 0 {
		r.subhead("Risk Register", 0.6)
		cols := []column{{"Risk", UsableWidth - 175}, {"Impact", 55}, {"Mitigation", 120}}
		r.header(cols, SubHeaderHeight)
		for i, risk := range w.Risks {
			r.row(i, cols, []cell{
				{report.Truncate(orDash(risk.Risk), 55), report.Palette.Text},
				{orDash(risk.Impact), report.ImpactColor(risk.Impact)},
				{report.Truncate(orDash(risk.Mitigation), 55), report.Palette.Muted},
			})
		}
	}
}

// subhead draws an accent subheading after a gap of before lines.
func (r *renderer) subhead(title string, before float64) {
	r.lines(before, SizeBody)
	y := r.place(lineHeight(SizeSubhead) + RowHeight)
	r.text(Margin, y, UsableWidth, SizeSubhead, report.Palette.Accent, title, "L")
	r.moveDown(lineHeight(SizeSubhead))
	r.lines(0.3, SizeBody)
}

func (r *renderer) placeholder(s string) {
	y := r.place(lineHeight(SizeBody))
	r.text(Margin, y, UsableWidth, SizeBody, report.Palette.Muted, s, "L")
	r.moveDown(lineHeight(SizeBody))
}

func orDash(s string) string {
	if s == "" {
		return report.Dash
	}
	return s
}
