package sheet

import (
	"bytes"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/report"
)

// Sheet names per section, in workbook order.
var sheetOrder = []struct {
	id   report.SectionID
	name string
}{
	{report.SectionConfig, "Summary"},
	{report.SectionAssessment, "Assessment"},
	{report.SectionPricing, "Pricing"},
	{report.SectionCICD, "CI-CD"},
	{report.SectionGitFlow, "GitFlow"},
	{report.SectionDeploy, "Deploy"},
	{report.SectionPromotion, "Promotion"},
	{report.SectionVersioning, "Versioning"},
	{report.SectionArtifacts, "Artifacts"},
	{report.SectionGantt, "Gantt"},
	{report.SectionWorkplan, "WorkPlan"},
}

// SheetName returns the worksheet a section is written to, or "" when
// the section has no sheet of its own.
func SheetName(id report.SectionID) string {
	for _, entry := range sheetOrder {
		if entry.id == id {
			return entry.name
		}
	}
	return ""
}

// DiagramsSheet collects every selected diagram image.
const DiagramsSheet = "All_Diagrams"

const defaultSheet = "Sheet1"

// Option configures spreadsheet rendering.
type Option func(*writer)

// WithTime sets the workbook creation time. It defaults to the current
// time.
func WithTime(t time.Time) Option {
	return func(w *writer) { w.now = t }
}

// Render produces the XLSX workbook for the sections sel makes visible:
// one sheet per section, diagram images anchored under their section's
// table, and an All_Diagrams sheet when any selected section has images.
// On failure no bytes are returned.
func Render(m *report.Model, imgs []report.Image, sel report.Selector, opts ...Option) ([]byte, error) {
	f, err := build(m, imgs, sel, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "write workbook")
	}
	return bytes.Clone(buf.Bytes()), nil
}

func build(m *report.Model, imgs []report.Image, sel report.Selector, opts ...Option) (*excelize.File, error) {
	w := &writer{f: excelize.NewFile(), styles: map[styleSpec]int{}, now: time.Now()}
	for _, opt := range opts {
		opt(w)
	}

	w.check(w.f.SetDocProps(&excelize.DocProperties{
		Creator:        report.ProductLabel(),
		LastModifiedBy: report.ProductLabel(),
		Title:          "SecAssess Report " + report.Dash + " " + m.Meta.Org,
		Created:        w.now.UTC().Format(time.RFC3339),
		Modified:       w.now.UTC().Format(time.RFC3339),
	}))

	visible := map[report.SectionID]report.Section{}
	for _, s := range m.Visible(sel) {
		visible[s.ID] = s
	}
	for _, entry := range sheetOrder {
		s, ok := visible[entry.id]
		if !ok {
			continue
		}
		w.addSheet(entry.name)
		w.section(entry.name, m, s, report.ImagesFor(imgs, s.ID))
	}

	var diagrams []report.Image
	for _, id := range report.DiagramSections {
		if sel.Includes(id) {
			diagrams = append(diagrams, report.ImagesFor(imgs, id)...)
		}
	}
	if len(diagrams) > 0 {
		w.addSheet(DiagramsSheet)
		w.allDiagrams(m, diagrams)
	}

	if w.err != nil {
		_ = w.f.Close()
		return nil, errors.Wrap(errors.ErrCodeRender, w.err, "render workbook")
	}
	return w.f, nil
}

func (w *writer) section(name string, m *report.Model, s report.Section, imgs []report.Image) {
	switch s.ID {
	case report.SectionConfig:
		w.keyValues(name, s.Body.(report.KeyValue))
	case report.SectionAssessment:
		w.responses(name, m.Responses)
	case report.SectionPricing:
		w.pricing(name, m.Pricing)
	case report.SectionArtifacts:
		w.registries(name, s.Body.(report.FlowList))
	case report.SectionGantt:
		w.gantt(name, s.Body.(report.Gantt))
	case report.SectionWorkplan:
		w.workplan(name, s.Body.(report.Workplan))
	default:
		w.flows(name, s, imgs)
	}
}
