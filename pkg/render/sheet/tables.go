package sheet

import (
	"strings"

	"github.com/matzehuels/secassess/pkg/report"
)

// flowSheet describes the table of a diagram section.
type flowSheet struct {
	cols   []column
	banner string
	row    func(f report.Flow) []any
}

var flowSheets = map[report.SectionID]flowSheet{
	report.SectionCICD: {
		cols: []column{
			{"Workflow", ColumnWidthUnits * 2},
			{"Pipeline", ColumnWidthUnits * 2.5},
			{"Stages", ColumnWidthUnits},
			{"Desc", ColumnWidthUnits * 4},
		},
		banner: "CI/CD Workflow Diagrams",
		row:    func(f report.Flow) []any { return []any{f.Group, f.Name, f.Stages, f.Description} },
	},
	report.SectionGitFlow: {
		cols:   []column{{"Flow", ColumnWidthUnits * 3}, {"Nodes", ColumnWidthUnits}, {"Desc", ColumnWidthUnits * 6}},
		banner: "Git Flow Diagrams",
		row:    func(f report.Flow) []any { return []any{f.Name, f.Stages, f.Description} },
	},
	report.SectionDeploy: {
		cols: []column{
			{"Strategy", ColumnWidthUnits * 3},
			{"Category", ColumnWidthUnits * 1.5},
			{"Stages", ColumnWidthUnits},
			{"Desc", ColumnWidthUnits * 4},
		},
		banner: "Deployment Strategy Diagrams",
		row:    func(f report.Flow) []any { return []any{f.Name, f.Category, f.Stages, f.Description} },
	},
	report.SectionPromotion: {
		cols: []column{
			{"Workflow", ColumnWidthUnits * 3},
			{"Category", ColumnWidthUnits * 1.5},
			{"Stages", ColumnWidthUnits},
			{"Desc", ColumnWidthUnits * 4},
		},
		banner: "Promotion Workflow Diagrams",
		row:    func(f report.Flow) []any { return []any{f.Name, f.Category, f.Stages, f.Description} },
	},
	report.SectionVersioning: {
		cols:   []column{{"Scheme", ColumnWidthUnits * 3}, {"Nodes", ColumnWidthUnits}, {"Desc", ColumnWidthUnits * 6}},
		banner: "Versioning Diagrams",
		row:    func(f report.Flow) []any { return []any{f.Name, f.Stages, f.Description} },
	},
}

func (w *writer) keyValues(sheet string, kv report.KeyValue) {
	w.table(sheet, []column{{"Field", 28}, {"Value", 55}})
	for i, it := range kv.Items {
		w.set(sheet, 1, i+2, it.Key)
		w.set(sheet, 2, i+2, it.Value)
	}
}

func (w *writer) responses(sheet string, rs []report.Response) {
	w.table(sheet, []column{{"Control ID", 18}, {"Status", 14}, {"Notes", 60}})
	for i, r := range rs {
		row := i + 2
		w.set(sheet, 1, row, r.ControlID)
		w.set(sheet, 2, row, r.Status)
		w.set(sheet, 3, row, r.Notes)
		w.band(sheet, row, 3, i)

		status := styleSpec{color: report.StatusColor(r.Status), bold: true}
		if i%2 == 0 {
			status.fill = report.Palette.SheetAlt
		}
		w.paint(sheet, row, 2, 2, status)
	}
}

func (w *writer) pricing(sheet string, p *report.Pricing) {
	if p == nil {
		return
	}
	w.table(sheet, []column{{"Field", 32}, {"Value", 28}})
	rows := [][2]any{
		{"Engineers", p.Engineers},
		{"Duration", report.FormatNumber(p.Duration) + " months"},
		{"Hourly Rate", report.FormatMoney(p.Currency, p.HourlyRate)},
		{"Currency", p.Currency},
		{"Estimation Mode", p.Mode},
		{"Total Cost", report.FormatMoney(p.Currency, p.Total)},
	}
	row := 2
	for _, r := range rows {
		w.set(sheet, 1, row, r[0])
		w.set(sheet, 2, row, r[1])
		row++
	}
	if len(p.Phases) == 0 {
		return
	}
	row++
	w.set(sheet, 1, row, "Phase")
	w.set(sheet, 2, row, "Allocation")
	for _, ph := range p.Phases {
		row++
		w.set(sheet, 1, row, ph.Name)
		w.set(sheet, 2, row, report.FormatNumber(ph.Percentage)+"%")
	}
}

func (w *writer) flows(sheet string, s report.Section, imgs []report.Image) {
	spec, ok := flowSheets[s.ID]
	if !ok {
		return
	}
	fl := s.Body.(report.FlowList)
	w.imageColumns(sheet)
	w.table(sheet, spec.cols)
	for i, f := range fl.Flows {
		for c, v := range spec.row(f) {
			w.set(sheet, c+1, i+2, v)
		}
	}
	if len(imgs) == 0 {
		return
	}
	row := w.banner(sheet, spec.banner, len(fl.Flows)+3) + 1
	w.images(sheet, imgs, row)
}

func (w *writer) registries(sheet string, fl report.FlowList) {
	w.table(sheet, []column{{"Registry", 26}, {"Type", 16}, {"Repo", 26}, {"Class", 14}, {"Pkg", 14}})
	for i, r := range fl.Repos {
		for c, v := range []string{r.Registry, r.Type, r.Repo, r.Class, r.Pkg} {
			w.set(sheet, c+1, i+2, v)
		}
	}
}

func (w *writer) gantt(sheet string, g report.Gantt) {
	w.table(sheet, []column{{"Task", 38}, {"Category", 16}, {"Start Week", 14}, {"Duration (wks)", 16}, {"Dependencies", 20}})
	for i, t := range g.Tasks {
		row := i + 2
		var start any = ""
		if t.Start != nil {
			start = *t.Start + 1
		}
		for c, v := range []any{t.Name, t.Category, start, t.Duration, strings.Join(t.Deps, ", ")} {
			w.set(sheet, c+1, row, v)
		}
		w.band(sheet, row, 5, i)
	}
}

func (w *writer) workplan(sheet string, wp report.Workplan) {
	for c, units := range []float64{36, 18, 22, 14, 40} {
		w.width(sheet, c+1, units)
	}
	if wp.Empty() {
		w.set(sheet, 1, 1, "(none configured)")
		return
	}

	row := 1
	if len(wp.Milestones) > 0 {
		row = w.banner(sheet, "Milestones", row)
		w.headerRow(sheet, row, "Milestone", "Target", "Owner", "Status", "Deliverables")
		row++
		for i, m := range wp.Milestones {
			for c, v := range []string{m.Name, m.Target, m.Owner, m.Status, m.Deliverables} {
				w.set(sheet, c+1, row, v)
			}
			w.band(sheet, row, 5, i)
			row++
		}
		row++
	}

	if len(wp.Roles) > 0 {
		row = w.banner(sheet, "Team Roles", row)
		w.headerRow(sheet, row, "Role", "Count", "Responsibilities")
		row++
		for i, r := range wp.Roles {
			w.set(sheet, 1, row, r.Role)
			w.set(sheet, 2, row, r.Count)
			w.set(sheet, 3, row, r.Responsibilities)
			w.band(sheet, row, 3, i)
			row++
		}
		row++
	}

	if len(wp.Risks) > 0 {
		row = w.banner(sheet, "Risk Register", row)
		w.headerRow(sheet, row, "Risk", "Impact", "Mitigation")
		row++
		for i, r := range wp.Risks {
			w.set(sheet, 1, row, r.Risk)
			w.set(sheet, 2, row, r.Impact)
			w.set(sheet, 3, row, r.Mitigation)
			w.band(sheet, row, 3, i)

			impact := styleSpec{color: report.ImpactColor(r.Impact), bold: true}
			if i%2 == 0 {
				impact.fill = report.Palette.SheetAlt
			}
			w.paint(sheet, row, 2, 2, impact)
			row++
		}
	}
}

// allDiagrams writes every image grouped under its section title.
func (w *writer) allDiagrams(m *report.Model, imgs []report.Image) {
	w.imageColumns(DiagramsSheet)
	w.set(DiagramsSheet, 1, 1, "All Workflow Diagrams")
	w.paint(DiagramsSheet, 1, 1, ImageColumns, titleStyle)
	w.merge(DiagramsSheet, 1, 1, ImageColumns)
	w.height(DiagramsSheet, 1, titleHeight)

	row := 3
	for _, id := range report.DiagramSections {
		group := report.ImagesFor(imgs, id)
		if len(group) == 0 {
			continue
		}
		title := string(id)
		if s, ok := m.Section(id); ok {
			title = s.Title
		}
		row = w.banner(DiagramsSheet, title, row) + 1
		row = w.images(DiagramsSheet, group, row) + 1
	}
}
