package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/secassess/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const yamlRecord = `
org_name: Acme Corp
assessor_name: Dana
assessment_date: 2026-03-01
score: "85"
status: complete
updated_at: 2026-03-02T08:00:00Z
responses:
  AC-1: {status: pass, notes: ok}
gantt:
  tasks:
    - {name: Discovery, start: 0, duration: 2}
    - just a string
`

const jsonRecord = `{
	"id": "j1",
	"org_name": "Beta",
	"score": 10,
	"updated_at": "2026-01-01T00:00:00Z",
	"pricing": "{\"engineers\": 3, \"duration\": 2, \"hourlyRate\": 100}"
}`

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		rec, err := Load(writeFile(t, dir, "acme.yaml", yamlRecord))
		if err != nil {
			t.Fatal(err)
		}
		if rec.OrgName != "Acme Corp" || rec.Score != 85 || rec.AssessmentDate != "2026-03-01" {
			t.Errorf("scalars = %q %d %q", rec.OrgName, rec.Score, rec.AssessmentDate)
		}
		if want := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC); !rec.UpdatedAt.Equal(want) {
			t.Errorf("updated_at = %v, want %v", rec.UpdatedAt, want)
		}
		if rec.Responses["AC-1"].Status != "pass" {
			t.Errorf("responses = %+v", rec.Responses)
		}
		if len(rec.Gantt.Tasks) != 1 || rec.Gantt.Tasks[0].Name != "Discovery" {
			t.Errorf("gantt tasks = %+v", rec.Gantt.Tasks)
		}
	})

	t.Run("json string column", func(t *testing.T) {
		rec, err := Load(writeFile(t, dir, "beta.json", jsonRecord))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Pricing.Engineers != 3 || rec.Pricing.HourlyRate != 100 {
			t.Errorf("pricing = %+v", rec.Pricing)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("error = %v, want FILE_NOT_FOUND", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeFile(t, dir, "bad.json", "{"))
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "acme.yml", yamlRecord)
	writeFile(t, dir, "j1.json", jsonRecord)
	writeFile(t, dir, "broken.json", "not json")
	writeFile(t, dir, "notes.txt", "ignored")

	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	rec, err := s.Get(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "acme" {
		t.Errorf("ID = %q, want file stem", rec.ID)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(traversal) error = %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("List() = %d records, want 2", len(list))
	}
	if list[0].ID != "acme" || list[1].ID != "j1" {
		t.Errorf("List() order = %s, %s; want newest first", list[0].ID, list[1].ID)
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestNewRequiresDirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.json", "{}")
	if _, err := New(path); err == nil {
		t.Error("New(file) should fail")
	}
	if _, err := New(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("New(missing) should fail")
	}
}
