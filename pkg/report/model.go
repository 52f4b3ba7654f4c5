package report

import (
	"strconv"

	"github.com/matzehuels/secassess/pkg/record"
)

// =============================================================================
// Section identity
// =============================================================================

// SectionID identifies a report section in selectors and file layouts.
type SectionID string

const (
	SectionConfig     SectionID = "config"
	SectionAssessment SectionID = "assessment"
	SectionCICD       SectionID = "cicd"
	SectionGitFlow    SectionID = "gitflow"
	SectionDeploy     SectionID = "deploy"
	SectionPromotion  SectionID = "promotion"
	SectionVersioning SectionID = "versioning"
	SectionArtifacts  SectionID = "artifacts"
	SectionPricing    SectionID = "pricing"
	SectionGantt      SectionID = "gantt"
	SectionWorkplan   SectionID = "workplan"
)

// SectionIDs lists every section in report order.
var SectionIDs = []SectionID{
	SectionConfig,
	SectionAssessment,
	SectionCICD,
	SectionGitFlow,
	SectionDeploy,
	SectionPromotion,
	SectionVersioning,
	SectionArtifacts,
	SectionPricing,
	SectionGantt,
	SectionWorkplan,
}

// DiagramSections are the sections that carry captured diagram images.
var DiagramSections = []SectionID{
	SectionCICD,
	SectionGitFlow,
	SectionDeploy,
	SectionPromotion,
	SectionVersioning,
}

// =============================================================================
// Model
// =============================================================================

// Meta is the record header shown on covers and summaries.
type Meta struct {
	Org         string
	Assessor    string
	Date        string
	Environment string
	Score       int
	Status      string
}

// Response is one assessed control. Status and Notes are empty when the
// record has no value.
type Response struct {
	ControlID string
	Status    string
	Notes     string
}

// Model is the renderer-agnostic report built once per export. Every
// derived figure lives here so all output formats print the same numbers.
type Model struct {
	Meta      Meta
	Sections  []Section
	Responses []Response
	Pricing   *Pricing
	Stats     Stats
}

// Section is a titled block of report content. Body holds one of
// [KeyValue], [Table], [FlowList], [Gantt] or [Workplan].
type Section struct {
	ID    SectionID
	Title string
	Body  Body
}

// Body is the content of a section.
type Body interface {
	// HasContent reports whether the section has anything to show.
	HasContent() bool
}

// Item is a labelled value.
type Item struct {
	Key   string
	Value string
}

// KeyValue is a list of labelled values, optionally followed by project
// phases.
type KeyValue struct {
	Items  []Item
	Phases []Phase
}

func (KeyValue) HasContent() bool { return true }

// Table is a grid with a header row.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) HasContent() bool { return len(t.Rows) > 0 }

// Flow summarizes one diagram or registry. Stages is the node count of a
// diagram; Repos is the repository count of a registry. Group names the
// enclosing CI/CD workflow.
type Flow struct {
	Name        string
	Group       string
	Category    string
	Type        string
	Stages      int
	Repos       int
	Description string
}

// RepoRow is one repository of an artifact registry.
type RepoRow struct {
	Registry string
	Type     string
	Repo     string
	Class    string
	Pkg      string
}

// FlowList summarizes a diagram collection. Registries is set for the
// artifacts section, whose flows count repositories instead of stages.
type FlowList struct {
	Flows      []Flow
	Registries bool
	Repos      []RepoRow
}

func (f FlowList) HasContent() bool { return len(f.Flows) > 0 }

// Task is a Gantt chart row. Start is a zero-based week; nil means
// unscheduled.
type Task struct {
	Name     string
	Category string
	Start    *int
	Duration float64
	Deps     []string
}

// StartLabel formats the start week as "Wk n", one-based.
func (t Task) StartLabel() string {
	if t.Start == nil {
		return Dash
	}
	return "Wk " + strconv.Itoa(*t.Start+1)
}

// DurationLabel formats the duration as "n wk".
func (t Task) DurationLabel() string {
	if t.Duration == 0 {
		return Dash + " wk"
	}
	return formatFloat(t.Duration) + " wk"
}

// Gantt is the task schedule. It is always present, possibly empty.
type Gantt struct {
	Tasks []Task
}

func (Gantt) HasContent() bool { return true }

// Milestone is a workplan checkpoint.
type Milestone struct {
	Name         string
	Target       string
	Owner        string
	Status       string
	Deliverables string
}

// Role is a staffed team role.
type Role struct {
	Role             string
	Count            int
	Responsibilities string
}

// Risk is a risk register entry.
type Risk struct {
	Risk       string
	Impact     string
	Mitigation string
}

// Workplan holds milestones, team roles and risks. It is always present,
// possibly empty.
type Workplan struct {
	Milestones []Milestone
	Roles      []Role
	Risks      []Risk
}

func (Workplan) HasContent() bool { return true }

// Empty reports whether the workplan has no entries at all.
func (w Workplan) Empty() bool {
	return len(w.Milestones) == 0 && len(w.Roles) == 0 && len(w.Risks) == 0
}

// Section returns the section with the given id.
func (m *Model) Section(id SectionID) (Section, bool) {
	for _, s := range m.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Visible returns the sections, in model order, that sel includes and that
// have content. Every renderer derives its table of contents, pages,
// sheets and HTML blocks from this list.
func (m *Model) Visible(sel Selector) []Section {
	var out []Section
	for _, s := range m.Sections {
		if sel.Includes(s.ID) && s.Body != nil && s.Body.HasContent() {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// Build
// =============================================================================

// Build normalizes a record into a report model. It performs no I/O and
// computes every derived figure exactly once.
func Build(rec *record.Assessment) *Model {
	m := &Model{
		Meta: Meta{
			Org:         rec.OrgName,
			Assessor:    rec.AssessorName,
			Date:        rec.AssessmentDate,
			Environment: rec.Environment,
			Score:       rec.Score,
			Status:      rec.Status,
		},
	}

	for _, id := range rec.ControlIDs() {
		r := rec.Responses[id]
		m.Responses = append(m.Responses, Response{ControlID: id, Status: string(r.Status), Notes: string(r.Notes)})
	}
	m.Stats = ComputeStats(m.Responses)

	m.Sections = append(m.Sections,
		Section{ID: SectionConfig, Title: "Configuration", Body: configBody(m.Meta)},
		Section{ID: SectionAssessment, Title: "Assessment Responses", Body: responseTable(m.Responses)},
		Section{ID: SectionCICD, Title: "CI/CD Workflows", Body: cicdFlows(rec.CICD)},
		Section{ID: SectionGitFlow, Title: "Git Flow", Body: diagramFlows(rec.GitFlow.Flows)},
		Section{ID: SectionDeploy, Title: "Deployment Strategies", Body: diagramFlows(rec.Deploy.Strategies)},
		Section{ID: SectionPromotion, Title: "Promotion Workflows", Body: diagramFlows(rec.Promotion.Workflows)},
		Section{ID: SectionVersioning, Title: "Versioning", Body: diagramFlows(rec.Versioning.Flows)},
		Section{ID: SectionArtifacts, Title: "Artifact Registries", Body: registryFlows(rec.Artifacts)},
	)

	if p, ok := ComputePricing(rec.Pricing); ok {
		m.Pricing = &p
		m.Sections = append(m.Sections, Section{ID: SectionPricing, Title: "Pricing", Body: pricingBody(p)})
	}

	m.Sections = append(m.Sections,
		Section{ID: SectionGantt, Title: "Gantt Chart", Body: ganttBody(rec.Gantt)},
		Section{ID: SectionWorkplan, Title: "Work Plan", Body: workplanBody(rec.Workplan)},
	)
	return m
}

func configBody(meta Meta) KeyValue {
	return KeyValue{Items: []Item{
		{"Organization", meta.Org},
		{"Assessor", meta.Assessor},
		{"Date", meta.Date},
		{"Environment", meta.Environment},
		{"Score", strconv.Itoa(meta.Score) + "%"},
		{"Status", meta.Status},
	}}
}

func responseTable(rs []Response) Table {
	t := Table{Headers: []string{"Control ID", "Status", "Notes"}}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{r.ControlID, orDash(r.Status), orDash(r.Notes)})
	}
	return t
}

func cicdFlows(c record.CICD) FlowList {
	var fl FlowList
	for _, w := range c.Workflows {
		for _, p := range w.Pipelines {
			fl.Flows = append(fl.Flows, Flow{
				Name:        string(p.Name),
				Group:       string(w.Name),
				Stages:      len(p.Nodes),
				Description: string(p.Description),
			})
		}
	}
	return fl
}

func diagramFlows(ds []record.Diagram) FlowList {
	var fl FlowList
	for _, d := range ds {
		fl.Flows = append(fl.Flows, Flow{
			Name:        string(d.Name),
			Category:    string(d.Cat),
			Stages:      len(d.Nodes),
			Description: string(d.Description),
		})
	}
	return fl
}

func registryFlows(a record.Artifacts) FlowList {
	fl := FlowList{Registries: true}
	for _, r := range a.Registries {
		fl.Flows = append(fl.Flows, Flow{
			Name:  string(r.Name),
			Type:  string(r.RegistryType),
			Repos: len(r.Repos),
		})
		for _, rp := range r.Repos {
			fl.Repos = append(fl.Repos, RepoRow{
				Registry: string(r.Name),
				Type:     string(r.RegistryType),
				Repo:     string(rp.Name),
				Class:    string(rp.RepoClass),
				Pkg:      string(rp.PkgType),
			})
		}
	}
	return fl
}

func pricingBody(p Pricing) KeyValue {
	return KeyValue{
		Items: []Item{
			{"Engineers", formatFloat(p.Engineers)},
			{"Duration", formatFloat(p.Duration) + " months"},
			{"Hourly Rate", FormatMoney(p.Currency, p.HourlyRate)},
			{"Estimation Mode", p.Mode},
			{"Total Cost", FormatMoney(p.Currency, p.Total)},
		},
		Phases: p.Phases,
	}
}

func ganttBody(g record.Gantt) Gantt {
	var out Gantt
	for _, t := range g.Tasks {
		task := Task{
			Name:     string(t.Name),
			Category: string(t.Category),
			Duration: t.Duration.Float(),
		}
		if t.Start != nil {
			s := t.Start.Int()
			task.Start = &s
		}
		for _, d := range t.Deps {
			task.Deps = append(task.Deps, string(d))
		}
		out.Tasks = append(out.Tasks, task)
	}
	return out
}

func workplanBody(w record.Workplan) Workplan {
	var out Workplan
	for _, m := range w.Milestones {
		out.Milestones = append(out.Milestones, Milestone{
			Name:         string(m.Name),
			Target:       string(m.Target),
			Owner:        string(m.Owner),
			Status:       string(m.Status),
			Deliverables: string(m.Deliverables),
		})
	}
	for _, r := range w.TeamRoles {
		n := r.Count.Int()
		if n <= 0 {
			n = 1
		}
		out.Roles = append(out.Roles, Role{Role: string(r.Role), Count: n, Responsibilities: string(r.Responsibilities)})
	}
	for _, r := range w.RiskItems {
		out.Risks = append(out.Risks, Risk{
			Risk:       string(r.Risk),
			Impact:     string(r.Impact),
			Mitigation: string(r.Mitigation),
		})
	}
	return out
}
