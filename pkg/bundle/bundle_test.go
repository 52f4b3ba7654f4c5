package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"go.uber.org/goleak"

	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/report"
)

const sampleRecord = `{
	"id": "a1",
	"org_name": "Acme/Corp",
	"assessor_name": "Dana",
	"assessment_date": "2024-05-01",
	"environment": "production",
	"score": 72,
	"status": "in_progress",
	"responses": {"AC-1": {"status": "pass", "notes": "ok"}, "AC-2": {"status": "fail"}},
	"gitflow_diagrams": {"flows": [{"name": "Trunk", "nodes": [{"id": "a", "label": "main"}], "edges": []}]},
	"gantt": {"tasks": [{"name": "Kickoff", "start": 0, "duration": 1}]}
}`

func sample(t *testing.T) *record.Assessment {
	t.Helper()
	var rec record.Assessment
	if err := json.Unmarshal([]byte(sampleRecord), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return &rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 0x6c, G: 0x5c, B: 0xe7, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readArchive(t *testing.T, data []byte) (names []string, files map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files = make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		files[f.Name] = b
	}
	return names, files
}

func TestPackage(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	imgs := []report.Image{
		{Name: "Git Flow: Trunk", Data: pngBytes(t), Width: 4, Height: 2, Section: report.SectionGitFlow},
		{Name: "Git Flow: Trunk", Data: []byte("not an image"), Section: report.SectionGitFlow},
		{Name: "empty", Section: report.SectionCICD},
	}

	data, err := Package(context.Background(), sample(t), imgs, report.All(),
		WithTime(now), WithIDFunc(func() string { return "fixed-id" }))
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	names, files := readArchive(t, data)
	want := []string{
		"Acme_Corp.pdf",
		"Acme_Corp.xlsx",
		"Acme_Corp.json",
		"Acme_Corp.sql",
		"Acme_Corp.xml",
		"Acme_Corp-report.html",
		"images/Git Flow_ Trunk.png",
		"images/Git Flow_ Trunk-2.png",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	if !bytes.HasPrefix(files["Acme_Corp.pdf"], []byte("%PDF")) {
		t.Error("pdf entry is not a PDF")
	}
	if !bytes.HasPrefix(files["Acme_Corp.xlsx"], []byte("PK")) {
		t.Error("xlsx entry is not a zip container")
	}
	if !strings.Contains(string(files["Acme_Corp.sql"]), "VALUES ('fixed-id', ") {
		t.Errorf("sql entry does not use the injected id:\n%s", files["Acme_Corp.sql"])
	}
	if !strings.Contains(string(files["Acme_Corp-report.html"]), "Acme/Corp") {
		t.Error("html report is missing the organization")
	}
	if _, err := png.Decode(bytes.NewReader(files["images/Git Flow_ Trunk.png"])); err != nil {
		t.Errorf("image entry is not a PNG: %v", err)
	}
	if got := string(files["images/Git Flow_ Trunk-2.png"]); got != "not an image" {
		t.Errorf("undecodable image stored as %q, want raw bytes", got)
	}
}

func TestPackageHonorsSelector(t *testing.T) {
	defer goleak.VerifyNone(t)

	sel, err := report.Select("config")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := Entries(context.Background(), sample(t), nil, sel, WithTime(time.Unix(0, 0)))
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("entries = %d, want 6 without images", len(entries))
	}
	page := string(entries[5].Data)
	if strings.Contains(page, "Assessment Responses") {
		t.Error("html report includes an unselected section")
	}
	if !strings.Contains(page, "Configuration") {
		t.Error("html report is missing the selected section")
	}
	// Data dumps ignore the selector.
	if !strings.Contains(string(entries[2].Data), `"AC-1"`) {
		t.Error("json dump lost the responses")
	}
}

func TestPackageCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Package(ctx, sample(t), nil, report.All()); err == nil {
		t.Fatal("Package() with a canceled context should fail")
	}
}

func TestWrite(t *testing.T) {
	modified := time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)
	data, err := Write([]Entry{{Name: "a.txt", Data: []byte("alpha")}, {Name: "b/c.txt", Data: nil}}, modified)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("files = %d, want 2", len(zr.File))
	}
	f := zr.File[0]
	if f.Method != zip.Deflate {
		t.Errorf("method = %d, want deflate", f.Method)
	}
	if !f.Modified.Equal(modified) {
		t.Errorf("modified = %v, want %v", f.Modified, modified)
	}
}
