package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func recordRowColumns() []string {
	cols := []string{"id"}
	cols = append(cols, record.ScalarFields...)
	cols = append(cols, record.JSONBFields...)
	return append(cols, "created_at", "updated_at")
}

func TestQueryGet(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	values := []driver.Value{"a1", "Acme", "Dana", "2026-03-01", "production", nil, "full", int64(85), "complete"}
	for _, f := range record.JSONBFields {
		switch f {
		case "responses":
			values = append(values, []byte(`{"AC-1":{"status":"pass"}}`))
		case "pricing":
			values = append(values, []byte(`{"engineers":2,"duration":3,"hourlyRate":100}`))
		case "gantt":
			values = append(values, []byte(`not json`))
		default:
			values = append(values, nil)
		}
	}
	values = append(values, now, nil)

	mock.ExpectQuery("SELECT id, org_name, .+ FROM assessments WHERE id = \\$1").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(recordRowColumns()).AddRow(values...))

	rec, err := queryGet(context.Background(), db, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OrgName != "Acme" || rec.Score != 85 || rec.Scope != "" || rec.Status != "complete" {
		t.Errorf("scalars = %+v", rec)
	}
	if rec.Responses["AC-1"].Status != "pass" {
		t.Errorf("responses = %+v", rec.Responses)
	}
	if rec.Pricing.Engineers != 2 {
		t.Errorf("pricing = %+v", rec.Pricing)
	}
	if len(rec.Gantt.Tasks) != 0 {
		t.Errorf("malformed gantt should decode empty, got %+v", rec.Gantt)
	}
	if got := string(rec.Column("custom_templates")); got != "[]" {
		t.Errorf("NULL custom_templates = %s, want []", got)
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.IsZero() {
		t.Errorf("timestamps = %v, %v", rec.CreatedAt, rec.UpdatedAt)
	}
}

func TestQueryGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM assessments WHERE id = \\$1").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := queryGet(context.Background(), db, "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestQueryGet_StorageError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM assessments WHERE id = \\$1").WithArgs("x").WillReturnError(sql.ErrConnDone)

	_, err := queryGet(context.Background(), db, "x")
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("expected STORAGE, got %v", err)
	}
}

func TestQueryList(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "org_name", "assessor_name", "assessment_date", "environment", "template", "score", "status", "created_at", "updated_at",
	}).
		AddRow("b", "Beta", "Lee", "2026-02-01", "staging", "full", int64(40), "draft", now, now).
		AddRow("a", nil, nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT .+ FROM assessments ORDER BY updated_at DESC").WillReturnRows(rows)

	list, err := queryList(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d summaries", len(list))
	}
	if list[0].OrgName != "Beta" || list[0].Score != 40 {
		t.Errorf("first = %+v", list[0])
	}
	if list[1].ID != "a" || list[1].OrgName != "" {
		t.Errorf("NULL columns should be empty: %+v", list[1])
	}
}

func TestStoreGetValidatesID(t *testing.T) {
	db, _ := newMockDB(t)
	s := New(db)
	if _, err := s.Get(context.Background(), "../x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestStorePing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectPing()
	if err := New(db).Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
