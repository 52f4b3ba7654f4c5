// Package store reads assessment records from persistent storage.
//
// Records are written by the assessment application; this package only
// needs the read path used by exports. Backends live in subpackages:
// [file] for record files on disk, [postgres] for the assessments table
// and [mongo] for a document collection.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/observability"
	"github.com/matzehuels/secassess/pkg/record"
)

// Store loads assessment records.
type Store interface {
	// Get returns the record with the given id. A missing record is an
	// error with code errors.ErrCodeNotFound.
	Get(ctx context.Context, id string) (*record.Assessment, error)
	// List returns record summaries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Summary is the listing view of a record.
type Summary struct {
	ID             string    `json:"id"`
	OrgName        string    `json:"org_name"`
	AssessorName   string    `json:"assessor_name"`
	AssessmentDate string    `json:"assessment_date"`
	Environment    string    `json:"environment"`
	Template       string    `json:"template"`
	Score          int       `json:"score"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Summarize returns the listing view of rec.
func Summarize(rec *record.Assessment) Summary {
	return Summary{
		ID:             rec.ID,
		OrgName:        rec.OrgName,
		AssessorName:   rec.AssessorName,
		AssessmentDate: rec.AssessmentDate,
		Environment:    rec.Environment,
		Template:       rec.Template,
		Score:          rec.Score,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// NotFound returns the error backends report for a missing record.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "assessment %q not found", id)
}

// Observed wraps s so every Get is reported to the registered
// observability store hooks under backend.
func Observed(s Store, backend string) Store {
	return &observed{Store: s, backend: backend}
}

type observed struct {
	Store
	backend string
}

func (o *observed) Get(ctx context.Context, id string) (*record.Assessment, error) {
	start := time.Now()
	rec, err := o.Store.Get(ctx, id)
	observability.Store().OnLoad(ctx, o.backend, id, time.Since(start), err)
	return rec, err
}
