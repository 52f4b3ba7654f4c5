package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/store"
)

// executor is satisfied by *sql.DB and *sql.Tx.
type executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var recordColumns = func() string {
	cols := []string{"id"}
	cols = append(cols, record.ScalarFields...)
	cols = append(cols, record.JSONBFields...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}()

const summaryColumns = "id, org_name, assessor_name, assessment_date, environment, template, score, status, created_at, updated_at"

func queryGet(ctx context.Context, db executor, id string) (*record.Assessment, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM assessments WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load assessment %s", id)
	}
	return rec, nil
}

func queryList(ctx context.Context, db executor) ([]store.Summary, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM assessments ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list assessments")
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan assessment")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list assessments")
	}
	return out, nil
}
