package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
)

func buildModel(t *testing.T, doc string) *report.Model {
	t.Helper()
	var rec record.Assessment
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return report.Build(&rec)
}

const fullRecord = `{
	"org_name": "Acme",
	"assessor_name": "Dana",
	"score": 81,
	"responses": {"c1": {"status": "pass"}, "c2": {"status": "partial", "notes": "needs review"}},
	"pricing": {"engineers": 1, "duration": 2, "hourlyRate": 90, "phases": [{"name": "Build", "percentage": 100, "months": 2}]},
	"gantt": {"tasks": [{"name": "Kickoff", "start": 0, "duration": 1}]},
	"workplan": {"milestones": [{"name": "M1"}], "teamRoles": [{"role": "Lead", "count": 2}], "riskItems": [{"risk": "R", "impact": "low"}]},
	"cicd_diagrams": {"workflows": [{"name": "Main", "pipelines": [{"name": "Build", "description": "compile and test", "nodes": [{"id": "a"}]}]}]},
	"deployment_strategies": {"strategies": [{"name": "Blue/Green", "cat": "release"}]}
}`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCursorPlace(t *testing.T) {
	tests := []struct {
		name string
		c    Cursor
		h    float64
		want Cursor
	}{
		{"fits", Cursor{Page: 1, Y: 100}, 100, Cursor{Page: 1, Y: 100}},
		{"exactly at bottom", Cursor{Page: 1, Y: Bottom - 20}, 20, Cursor{Page: 1, Y: Bottom - 20}},
		{"overflows", Cursor{Page: 3, Y: 700}, 100, Cursor{Page: 4, Y: Margin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.c
			if diff := cmp.Diff(tt.want, tt.c.Place(tt.h)); diff != "" {
				t.Errorf("Place() mismatch (-want +got):\n%s", diff)
			}
			if tt.c != before {
				t.Error("Place() modified the receiver")
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	if UsableWidth != 491 || UsableHeight != 738 || Bottom != 790 {
		t.Errorf("usable area = %vx%v bottom %v", UsableWidth, UsableHeight, Bottom)
	}
}

func TestRender(t *testing.T) {
	m := buildModel(t, fullRecord)
	imgs := []report.Image{
		{Name: "CI/CD: Build", Data: pngBytes(t, 1200, 400), Width: 1200, Height: 400, Section: report.SectionCICD},
		{Name: "broken", Data: []byte("nope"), Section: report.SectionCICD},
		{Name: "Deploy: BG", Data: pngBytes(t, 10, 10), Section: report.SectionDeploy},
	}

	out, err := Render(m, imgs, report.All(), WithTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestRenderPageCount(t *testing.T) {
	m := buildModel(t, fullRecord)

	tests := []struct {
		name     string
		sections string
		want     int
	}{
		{"config only", "config", 4},
		{"two sections", "config,gantt", 5},
		{"empty section skipped", "config,gitflow", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := report.ParseSelector(tt.sections)
			if err != nil {
				t.Fatal(err)
			}
			pdf, err := build(m, nil, sel)
			if err != nil {
				t.Fatal(err)
			}
			if got := pdf.PageCount(); got != tt.want {
				t.Errorf("PageCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Content streams
// =============================================================================

// drawnText is a text run as written to a page: its left edge and bytes.
type drawnText struct {
	X float64
	S string
}

// drawnImage is an image placement in points.
type drawnImage struct {
	X, W, H float64
}

type pageContent struct {
	texts  []drawnText
	images []drawnImage
}

var (
	streamRe = regexp.MustCompile(`/Length (\d+)>>\nstream\n`)
	textRe   = regexp.MustCompile(`BT ([\d.-]+) [\d.-]+ Td \((.*)\)Tj ET`)
	imageRe  = regexp.MustCompile(`q ([\d.]+) 0 0 ([\d.]+) ([\d.-]+) [\d.-]+ cm /I\S+ Do Q`)
	unescape = strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`)
)

// pages writes pdf uncompressed and returns what each page draws, in
// page order.
func pages(t *testing.T, pdf *fpdf.Fpdf) []pageContent {
	t.Helper()
	n := pdf.PageCount()
	pdf.SetCompression(false)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	data := buf.Bytes()

	var out []pageContent
	for _, loc := range streamRe.FindAllSubmatchIndex(data, -1) {
		if len(out) == n {
			break
		}
		size, err := strconv.Atoi(string(data[loc[2]:loc[3]]))
		if err != nil || loc[1]+size > len(data) {
			continue
		}
		var pc pageContent
		for _, line := range strings.Split(string(data[loc[1]:loc[1]+size]), "\n") {
			if m := textRe.FindStringSubmatch(line); m != nil {
				x, _ := strconv.ParseFloat(m[1], 64)
				pc.texts = append(pc.texts, drawnText{X: x, S: unescape.Replace(m[2])})
			}
			if m := imageRe.FindStringSubmatch(line); m != nil {
				w, _ := strconv.ParseFloat(m[1], 64)
				h, _ := strconv.ParseFloat(m[2], 64)
				x, _ := strconv.ParseFloat(m[3], 64)
				pc.images = append(pc.images, drawnImage{X: x, W: w, H: h})
			}
		}
		out = append(out, pc)
	}
	if len(out) != n {
		t.Fatalf("found %d page streams, want %d", len(out), n)
	}
	return out
}

func responsesModel(t *testing.T, n int) *report.Model {
	t.Helper()
	var entries []string
	for i := range n {
		entries = append(entries, fmt.Sprintf(`"c%03d": {"status": "fail"}`, i))
	}
	return buildModel(t, `{"responses": {`+strings.Join(entries, ",")+`}}`)
}

func TestRenderLongTableCapsRows(t *testing.T) {
	controlRe := regexp.MustCompile(`^c\d{3}$`)
	sel, _ := report.Select("assessment")

	tests := []struct {
		controls int
		rows     int
		notice   string
		minPages int
	}{
		{controls: 12, rows: 12, minPages: 4},
		{controls: 300, rows: 300, minPages: 11},
		// 300 rows at 20pt need eight or more pages of body.
		{controls: 350, rows: 300, notice: "and 50 more controls not shown", minPages: 11},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.controls), func(t *testing.T) {
			pdf, err := build(responsesModel(t, tt.controls), nil, sel)
			if err != nil {
				t.Fatal(err)
			}
			if got := pdf.PageCount(); got < tt.minPages {
				t.Errorf("PageCount() = %d, want at least %d", got, tt.minPages)
			}

			var rows int
			var notices []string
			for _, p := range pages(t, pdf) {
				for _, txt := range p.texts {
					if controlRe.MatchString(txt.S) {
						rows++
					}
					if strings.Contains(txt.S, "more controls not shown") {
						notices = append(notices, txt.S)
					}
				}
			}
			if rows != tt.rows {
				t.Errorf("control rows = %d, want %d", rows, tt.rows)
			}
			switch {
			case tt.notice == "" && len(notices) != 0:
				t.Errorf("notices = %q, want none", notices)
			case tt.notice != "" && (len(notices) != 1 || !strings.HasSuffix(notices[0], tt.notice)):
				t.Errorf("notices = %q, want one ending in %q", notices, tt.notice)
			}
		})
	}
}

func TestRenderImagePlacement(t *testing.T) {
	m := buildModel(t, fullRecord)
	sel, _ := report.Select("cicd")
	imgs := []report.Image{
		{Name: "wide", Data: pngBytes(t, 1200, 400), Width: 1200, Height: 400, Section: report.SectionCICD},
		{Name: "tall", Data: pngBytes(t, 300, 1000), Width: 300, Height: 1000, Section: report.SectionCICD},
		{Name: "small", Data: pngBytes(t, 100, 50), Width: 100, Height: 50, Section: report.SectionCICD},
		{Name: "elsewhere", Data: pngBytes(t, 10, 10), Width: 10, Height: 10, Section: report.SectionDeploy},
	}

	pdf, err := build(m, imgs, sel)
	if err != nil {
		t.Fatal(err)
	}
	var got []drawnImage
	for _, p := range pages(t, pdf) {
		got = append(got, p.images...)
	}

	// Images scale down to the usable width or 58% of the usable height,
	// never up, and are centered: x = 52 + round((491 - w) / 2).
	want := []drawnImage{
		{X: 52, W: 491, H: 164},
		{X: 234, W: 128, H: 428},
		{X: 248, W: 100, H: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("image placements mismatch (-want +got):\n%s", diff)
	}
	for _, img := range got {
		if img.H > UsableHeight*ImageHeightShare {
			t.Errorf("image height %v exceeds %v", img.H, UsableHeight*ImageHeightShare)
		}
	}
}

func TestRenderContentsMatchSections(t *testing.T) {
	m := buildModel(t, fullRecord)
	titles := map[string]bool{}
	for _, s := range m.Sections {
		titles[s.Title] = true
	}
	entryRe := regexp.MustCompile(`^\d+\.  (.+)$`)

	for _, sections := range []string{"", "config,gantt", "assessment,pricing,workplan", "gitflow,deploy"} {
		t.Run(sections, func(t *testing.T) {
			sel, err := report.ParseSelector(sections)
			if err != nil {
				t.Fatal(err)
			}
			var want []string
			for _, s := range m.Visible(sel) {
				want = append(want, s.Title)
			}

			pdf, err := build(m, nil, sel)
			if err != nil {
				t.Fatal(err)
			}
			ps := pages(t, pdf)

			var toc []string
			for _, txt := range ps[1].texts {
				if e := entryRe.FindStringSubmatch(txt.S); e != nil {
					toc = append(toc, e[1])
				}
			}
			var body []string
			for _, p := range ps[2 : len(ps)-1] {
				if len(p.texts) > 0 && titles[p.texts[0].S] {
					body = append(body, p.texts[0].S)
				}
			}
			if diff := cmp.Diff(want, toc); diff != "" {
				t.Errorf("contents mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want, body); diff != "" {
				t.Errorf("section pages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderLongFlowNamesWrap(t *testing.T) {
	long := strings.Repeat("deploy-to-production-cluster-", 8) + "canary"
	m := buildModel(t, `{"cicd_diagrams": {"workflows": [{"name": "Main", "pipelines": [
		{"name": "`+long+`", "description": "ships it", "nodes": [{"id": "a"}]},
		{"name": "Release the quarterly platform images to every regional mirror and verify checksums", "nodes": []}
	]}]}}`)
	sel, _ := report.Select("cicd")
	pdf, err := build(m, nil, sel)
	if err != nil {
		t.Fatal(err)
	}

	measure := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: PageWidth, Ht: PageHeight}})
	measure.SetFont(fontFamily, "", SizeBody)
	right := Margin + UsableWidth
	var lines int
	for _, p := range pages(t, pdf)[2:] {
		for _, txt := range p.texts {
			if strings.Contains(txt.S, "deploy-to") {
				lines++
			}
			// Text starts inside a cell padding of under 3pt.
			if end := txt.X + measure.GetStringWidth(txt.S); end > right+3 {
				t.Errorf("text %q ends at %.1f, past the margin at %.1f", txt.S, end, right)
			}
		}
	}
	if lines < 2 {
		t.Errorf("long flow name drawn on %d lines, want it wrapped", lines)
	}
}

func TestWrap(t *testing.T) {
	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: PageWidth, Ht: PageHeight}})
	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	tests := []struct {
		name  string
		in    string
		width float64
		lines int // 0 means wrapped onto two or more lines
	}{
		{"fits", "short text", 200, 1},
		{"words", "alpha beta gamma delta epsilon zeta eta theta", 100, 0},
		{"one long word", strings.Repeat("x", 120), 100, 0},
		{"paragraphs", "one\ntwo", 200, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.wrap(tt.in, SizeBody, tt.width)
			if tt.lines > 0 && len(got) != tt.lines {
				t.Errorf("wrap() = %q, want %d lines", got, tt.lines)
			}
			if tt.lines == 0 && len(got) < 2 {
				t.Errorf("wrap() = %q, want it wrapped", got)
			}
			for _, line := range got {
				if w := r.width(line); w > tt.width {
					t.Errorf("line %q is %.1f wide, limit %.1f", line, w, tt.width)
				}
			}
			if joined := strings.Join(strings.Fields(strings.Join(got, "")), ""); joined != strings.Join(strings.Fields(tt.in), "") {
				t.Errorf("wrap() lost text: %q", got)
			}
		})
	}
}

func TestTint(t *testing.T) {
	tests := []struct {
		hex   string
		alpha float64
		want  string
	}{
		{"#000000", 0, "#ffffff"},
		{"#ff0000", 1, "#ff0000"},
		{"#000000", 0.5, "#808080"},
	}
	for _, tt := range tests {
		if got := tint(tt.hex, tt.alpha); got != tt.want {
			t.Errorf("tint(%s, %v) = %s, want %s", tt.hex, tt.alpha, got, tt.want)
		}
	}
}
