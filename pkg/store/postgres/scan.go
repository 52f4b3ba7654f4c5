package postgres

import (
	"database/sql"

	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/store"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a row selected with recordColumns. Nullable text
// columns become empty strings and NULL JSONB columns are left unset so
// the record reports their empty default.
func scanRecord(row scanner) (*record.Assessment, error) {
	var (
		id               string
		created, updated sql.NullTime
	)
	scalars := make([]sql.NullString, len(record.ScalarFields))
	columns := make([][]byte, len(record.JSONBFields))

	dest := []any{&id}
	for i := range scalars {
		dest = append(dest, &scalars[i])
	}
	for i := range columns {
		dest = append(dest, &columns[i])
	}
	dest = append(dest, &created, &updated)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec := &record.Assessment{ID: id, Responses: map[string]record.Response{}}
	for i, name := range record.ScalarFields {
		setScalar(rec, name, scalars[i].String)
	}
	for i, name := range record.JSONBFields {
		if columns[i] != nil {
			_ = rec.SetColumn(name, columns[i])
		}
	}
	rec.CreatedAt = created.Time
	rec.UpdatedAt = updated.Time
	return rec, nil
}

func setScalar(rec *record.Assessment, name, v string) {
	switch name {
	case "org_name":
		rec.OrgName = v
	case "assessor_name":
		rec.AssessorName = v
	case "assessment_date":
		rec.AssessmentDate = v
	case "environment":
		rec.Environment = v
	case "scope":
		rec.Scope = v
	case "template":
		rec.Template = v
	case "score":
		rec.Score = record.ParseScore(v)
	case "status":
		rec.Status = v
	}
}

func scanSummary(row scanner) (store.Summary, error) {
	var (
		s                                      store.Summary
		org, assessor, date, env, tmpl, status sql.NullString
		score                                  sql.NullInt64
		created, updated                       sql.NullTime
	)
	err := row.Scan(&s.ID, &org, &assessor, &date, &env, &tmpl, &score, &status, &created, &updated)
	if err != nil {
		return s, err
	}
	s.OrgName = org.String
	s.AssessorName = assessor.String
	s.AssessmentDate = date.String
	s.Environment = env.String
	s.Template = tmpl.String
	s.Score = int(score.Int64)
	s.Status = status.String
	s.CreatedAt = created.Time
	s.UpdatedAt = updated.Time
	return s, nil
}
