package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/secassess/pkg/cache"
	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/observability"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/render/dump"
	"github.com/matzehuels/secassess/pkg/report"
	"github.com/matzehuels/secassess/pkg/store"
)

const sampleRecord = `{
	"id": "a1",
	"org_name": "Acme Corp",
	"assessor_name": "Dana",
	"assessment_date": "2024-05-01",
	"score": 72,
	"status": "in_progress",
	"responses": {"AC-1": {"status": "pass"}},
	"updated_at": "2024-05-01T12:00:00Z"
}`

func sample(t *testing.T) *record.Assessment {
	t.Helper()
	var rec record.Assessment
	if err := json.Unmarshal([]byte(sampleRecord), &rec); err != nil {
		t.Fatal(err)
	}
	return &rec
}

type memStore struct {
	recs map[string]*record.Assessment
	gets int
}

func (s *memStore) Get(_ context.Context, id string) (*record.Assessment, error) {
	s.gets++
	rec, ok := s.recs[id]
	if !ok {
		return nil, store.NotFound(id)
	}
	return rec, nil
}

func (s *memStore) List(context.Context) ([]store.Summary, error) { return nil, nil }
func (s *memStore) Ping(context.Context) error                   { return nil }
func (s *memStore) Close() error                                 { return nil }

type exportCall struct {
	id, format string
	size       int
	failed     bool
}

type recordingHooks struct {
	mu       sync.Mutex
	started  []string
	finished []exportCall
}

func (h *recordingHooks) OnExportStart(_ context.Context, id, format string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, id+"/"+format)
}

func (h *recordingHooks) OnExportComplete(_ context.Context, id, format string, size int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, exportCall{id: id, format: format, size: size, failed: err != nil})
}

func newTestRunner(t *testing.T, s store.Store, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(s, c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{"excel", FormatXLSX, false},
		{" XLSX ", FormatXLSX, false},
		{"zip", FormatZip, false},
		{"htm", FormatHTML, false},
		{"svg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error code = %v, want INVALID_FORMAT", tt.in, errors.GetCode(err))
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		org, format, want string
	}{
		{"Acme Corp", FormatPDF, "Acme Corp.pdf"},
		{"Acme Corp", FormatXLSX, "Acme Corp.xlsx"},
		{"Acme Corp", FormatHTML, "Acme Corp-report.html"},
		{"a/b", FormatZip, "a_b.zip"},
		{"", FormatSQL, "assessment.sql"},
	}
	for _, tt := range tests {
		if got := FileName(tt.org, tt.format); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.org, tt.format, got, tt.want)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := Options{RecordID: "a1"}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		if opts.Format != DefaultFormat || opts.Now.IsZero() || opts.Logger == nil {
			t.Errorf("defaults not applied: %+v", opts)
		}
	})
	t.Run("missing record", func(t *testing.T) {
		opts := Options{Format: FormatPDF}
		if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
	t.Run("traversal id", func(t *testing.T) {
		opts := Options{RecordID: "../etc/passwd"}
		if err := opts.ValidateAndSetDefaults(); err == nil {
			t.Error("expected error for traversal id")
		}
	})
	t.Run("in-memory record", func(t *testing.T) {
		opts := Options{Record: sample(t), Format: FormatXML}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestArtifactKeyOpts(t *testing.T) {
	base := Options{Format: FormatPDF}
	if got := base.ArtifactKeyOpts(); got.ImagesHash != "" || got.Sections != "all" {
		t.Errorf("ArtifactKeyOpts() = %+v, want no images and all sections", got)
	}

	sel, _ := report.Select("gantt", "config")
	withImages := Options{
		Format:   FormatPDF,
		Sections: sel,
		Images:   []report.Image{{Name: "a", Data: []byte{1}, Section: report.SectionCICD}},
	}
	resized := withImages
	resized.Images = []report.Image{{Name: "a", Data: []byte{1}, Width: 10, Section: report.SectionCICD}}

	a, b := withImages.ArtifactKeyOpts(), resized.ArtifactKeyOpts()
	if a.Sections != "config,gantt" {
		t.Errorf("Sections = %q, want report order", a.Sections)
	}
	if a.ImagesHash == "" || a.ImagesHash == b.ImagesHash {
		t.Errorf("image hashes should be set and differ by size: %q %q", a.ImagesHash, b.ImagesHash)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := &memStore{recs: map[string]*record.Assessment{"a1": sample(t)}}
	r := newTestRunner(t, st, c)

	first, err := r.Execute(ctx, Options{RecordID: "a1", Format: FormatJSON})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want, _ := dump.JSON(sample(t))
	if !bytes.Equal(first.Artifact, want) {
		t.Errorf("artifact mismatch:\n%s", first.Artifact)
	}
	if diff := cmp.Diff(CacheInfo{}, first.CacheInfo); diff != "" {
		t.Errorf("first run CacheInfo (-want +got):\n%s", diff)
	}
	if first.FileName != "Acme Corp.json" || first.ContentType != "application/json" {
		t.Errorf("delivery = %q %q", first.FileName, first.ContentType)
	}
	if first.RecordHash == "" || first.Stats.Size != len(first.Artifact) {
		t.Errorf("result missing hash or size: %+v", first.Stats)
	}

	second, err := r.Execute(ctx, Options{RecordID: "a1", Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(CacheInfo{LoadHit: true, RenderHit: true}, second.CacheInfo); diff != "" {
		t.Errorf("second run CacheInfo (-want +got):\n%s", diff)
	}
	if st.gets != 1 {
		t.Errorf("store reads = %d, want 1", st.gets)
	}

	refreshed, err := r.Execute(ctx, Options{RecordID: "a1", Format: FormatJSON, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LoadHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh hit the cache: %+v", refreshed.CacheInfo)
	}
	if st.gets != 2 {
		t.Errorf("store reads after refresh = %d, want 2", st.gets)
	}
}

func TestExecuteSQLIsNotCached(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, nil, c)
	rec := sample(t)

	a, err := r.Execute(context.Background(), Options{Record: rec, Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), Options{Record: rec, Format: FormatSQL})
	if err != nil {
		t.Fatal(err)
	}
	if b.CacheInfo.RenderHit {
		t.Error("sql export came from cache")
	}
	if bytes.Equal(a.Artifact, b.Artifact) {
		t.Error("sql exports should carry fresh ids")
	}
}

func TestExecuteFormats(t *testing.T) {
	r := newTestRunner(t, nil, nil)
	tests := []struct {
		format string
		prefix string
	}{
		{FormatPDF, "%PDF"},
		{FormatXLSX, "PK"},
		{FormatZip, "PK"},
		{FormatHTML, "<!DOCTYPE html>"},
		{FormatXML, "<?xml"},
		{FormatSQL, "-- SecAssess v21"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			res, err := r.Execute(context.Background(), Options{
				Record: sample(t),
				Format: tt.format,
				Now:    time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !bytes.HasPrefix(res.Artifact, []byte(tt.prefix)) {
				t.Errorf("artifact starts with %q, want %q", res.Artifact[:min(len(res.Artifact), 16)], tt.prefix)
			}
			if res.ContentType == "" {
				t.Error("ContentType is empty")
			}
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	r := newTestRunner(t, &memStore{recs: map[string]*record.Assessment{}}, nil)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"not found", Options{RecordID: "missing", Format: FormatPDF}, errors.ErrCodeNotFound},
		{"bad format", Options{RecordID: "a1", Format: "svg"}, errors.ErrCodeInvalidFormat},
		{"bad id", Options{RecordID: "a/b", Format: FormatPDF}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}

	noStore := newTestRunner(t, nil, nil)
	if _, err := noStore.Execute(context.Background(), Options{RecordID: "a1"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Execute() without store error = %v, want INVALID_INPUT", err)
	}
}

func TestExecuteReportsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetExportHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newTestRunner(t, &memStore{recs: map[string]*record.Assessment{"a1": sample(t)}}, nil)
	if _, err := r.Execute(context.Background(), Options{RecordID: "a1", Format: FormatXML}); err != nil {
		t.Fatal(err)
	}
	_, _ = r.Execute(context.Background(), Options{RecordID: "nope", Format: FormatXML})

	if diff := cmp.Diff([]string{"a1/xml", "nope/xml"}, hooks.started); diff != "" {
		t.Errorf("started mismatch (-want +got):\n%s", diff)
	}
	if len(hooks.finished) != 2 {
		t.Fatalf("finished = %d calls, want 2", len(hooks.finished))
	}
	if ok := hooks.finished[0]; ok.failed || ok.size == 0 {
		t.Errorf("successful export reported as %+v", ok)
	}
	if bad := hooks.finished[1]; !bad.failed || bad.size != 0 {
		t.Errorf("failed export reported as %+v", bad)
	}
}
