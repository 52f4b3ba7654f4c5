package html

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/report"
)

//go:embed report.html.tmpl
var pageTemplate string

var tmpl = template.Must(template.New("report").Parse(pageTemplate))

// Option configures HTML rendering.
type Option func(*renderer)

// WithTime sets the generation date printed under the title. It defaults
// to the current time.
func WithTime(t time.Time) Option {
	return func(r *renderer) { r.now = t }
}

type renderer struct {
	now time.Time
}

// =============================================================================
// View model
// =============================================================================

type page struct {
	Title     string
	Generated string
	Footer    string
	Sections  []sectionView
}

type sectionView struct {
	ID          string
	Title       string
	Items       []report.Item
	Phases      []string
	Tables      []tableView
	Placeholder string
	Images      []imageView
}

type tableView struct {
	Title   string
	Headers []string
	Rows    [][]cellView
}

type cellView struct {
	Text  string
	Badge string
}

type imageView struct {
	Caption     string
	Src         template.URL
	Placeholder string
}

// Render produces a standalone dark-theme HTML report of the sections sel
// makes visible, with each diagram section's images inlined as PNG data
// URLs.
func Render(m *report.Model, imgs []report.Image, sel report.Selector, opts ...Option) ([]byte, error) {
	r := &renderer{now: time.Now()}
	for _, opt := range opts {
		opt(r)
	}

	p := page{
		Title:     "SecAssess Report " + report.Dash + " " + m.Meta.Org,
		Generated: r.now.Format("1/2/2006"),
		Footer:    report.ProductLabel() + " " + report.Dash + " " + m.Meta.Org,
	}
	for _, s := range m.Visible(sel) {
		v := section(s)
		for _, img := range report.ImagesFor(imgs, s.ID) {
			v.Images = append(v.Images, imageOf(img))
		}
		p.Sections = append(p.Sections, v)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render html")
	}
	return buf.Bytes(), nil
}

func section(s report.Section) sectionView {
	v := sectionView{ID: string(s.ID), Title: s.Title}
	switch b := s.Body.(type) {
	case report.KeyValue:
		v.Items = b.Items
		for _, ph := range b.Phases {
			v.Phases = append(v.Phases, ph.Label())
		}
	case report.Table:
		t := tableView{Headers: b.Headers}
		for _, row := range b.Rows {
			t.Rows = append(t.Rows, []cellView{
				{Text: row[0]},
				{Text: row[1], Badge: badge(row[1])},
				{Text: row[2]},
			})
		}
		v.Tables = []tableView{t}
	case report.FlowList:
		v.Tables = []tableView{flowTable(s.ID, b)}
	case report.Gantt:
		if len(b.Tasks) == 0 {
			v.Placeholder = "(no tasks configured)"
			break
		}
		t := tableView{Headers: []string{"Task", "Category", "Start Week", "Duration", "Dependencies"}}
		for _, task := range b.Tasks {
			t.Rows = append(t.Rows, texts(task.Name, task.Category, task.StartLabel(), task.DurationLabel(), strings.Join(task.Deps, ", ")))
		}
		v.Tables = []tableView{t}
	case report.Workplan:
		v.Tables, v.Placeholder = workplanTables(b)
	}
	return v
}

func flowTable(id report.SectionID, fl report.FlowList) tableView {
	var t tableView
	switch {
	case fl.Registries:
		t.Headers = []string{"Registry", "Type", "Repo", "Class", "Pkg"}
		for _, r := range fl.Repos {
			t.Rows = append(t.Rows, texts(r.Registry, r.Type, r.Repo, r.Class, r.Pkg))
		}
	case id == report.SectionCICD:
		t.Headers = []string{"Workflow", "Pipeline", "Stages", "Description"}
		for _, f := range fl.Flows {
			t.Rows = append(t.Rows, texts(f.Group, f.Name, strconv.Itoa(f.Stages), f.Description))
		}
	case id == report.SectionDeploy || id == report.SectionPromotion:
		t.Headers = []string{"Name", "Category", "Stages", "Description"}
		for _, f := range fl.Flows {
			t.Rows = append(t.Rows, texts(f.Name, f.Category, strconv.Itoa(f.Stages), f.Description))
		}
	default:
		t.Headers = []string{"Name", "Stages", "Description"}
		for _, f := range fl.Flows {
			t.Rows = append(t.Rows, texts(f.Name, strconv.Itoa(f.Stages), f.Description))
		}
	}
	return t
}

func workplanTables(w report.Workplan) ([]tableView, string) {
	if w.Empty() {
		return nil, "(none configured)"
	}
	var out []tableView
	if len(w.Milestones) > 0 {
		t := tableView{Title: "Milestones", Headers: []string{"Milestone", "Target", "Owner", "Status", "Deliverables"}}
		for _, m := range w.Milestones {
			t.Rows = append(t.Rows, texts(m.Name, m.Target, m.Owner, m.Status, m.Deliverables))
		}
		out = append(out, t)
	}
	if len(w.Roles) > 0 {
		t := tableView{Title: "Team Roles", Headers: []string{"Role", "Count", "Responsibilities"}}
		for _, r := range w.Roles {
			t.Rows = append(t.Rows, texts(r.Role, strconv.Itoa(r.Count), r.Responsibilities))
		}
		out = append(out, t)
	}
	if len(w.Risks) > 0 {
		t := tableView{Title: "Risk Register", Headers: []string{"Risk", "Impact", "Mitigation"}}
		for _, r := range w.Risks {
			t.Rows = append(t.Rows, []cellView{
				{Text: orDash(r.Risk)},
				{Text: orDash(r.Impact), Badge: impactBadge(r.Impact)},
				{Text: orDash(r.Mitigation)},
			})
		}
		out = append(out, t)
	}
	return out, ""
}

func imageOf(img report.Image) imageView {
	v := imageView{Caption: img.Caption()}
	data, err := report.NormalizePNG(img.Data)
	if err != nil {
		v.Placeholder = img.Placeholder()
		return v
	}
	v.Src = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
	return v
}

// badge returns the status badge class suffix; unknown statuses share the
// "u" badge.
func badge(status string) string {
	switch s := strings.ToLower(status); s {
	case report.StatusPass, report.StatusFail, report.StatusPartial, report.StatusNA:
		return s
	}
	return "u"
}

func impactBadge(impact string) string {
	switch strings.ToLower(impact) {
	case "high":
		return report.StatusFail
	case "medium":
		return report.StatusPartial
	case "low":
		return report.StatusPass
	}
	return "u"
}

func texts(ss ...string) []cellView {
	out := make([]cellView, len(ss))
	for i, s := range ss {
		out[i] = cellView{Text: orDash(s)}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return report.Dash
	}
	return s
}
