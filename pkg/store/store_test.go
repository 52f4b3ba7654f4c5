package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/observability"
	"github.com/matzehuels/secassess/pkg/record"
)

type memStore struct{ recs map[string]*record.Assessment }

func (m memStore) Get(_ context.Context, id string) (*record.Assessment, error) {
	if rec, ok := m.recs[id]; ok {
		return rec, nil
	}
	return nil, NotFound(id)
}

func (m memStore) List(context.Context) ([]Summary, error) { return nil, nil }
func (m memStore) Ping(context.Context) error              { return nil }
func (m memStore) Close() error                            { return nil }

type loadHooks struct {
	observability.NoopStoreHooks
	loads []string
	errs  int
}

func (h *loadHooks) OnLoad(_ context.Context, backend, id string, _ time.Duration, err error) {
	h.loads = append(h.loads, backend+"/"+id)
	if err != nil {
		h.errs++
	}
}

func TestObserved(t *testing.T) {
	hooks := &loadHooks{}
	observability.SetStoreHooks(hooks)
	t.Cleanup(observability.Reset)

	s := Observed(memStore{recs: map[string]*record.Assessment{"a": {ID: "a"}}}, "mem")

	if rec, err := s.Get(context.Background(), "a"); err != nil || rec.ID != "a" {
		t.Fatalf("Get(a) = %v, %v", rec, err)
	}
	_, err := s.Get(context.Background(), "b")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(b) error = %v, want NOT_FOUND", err)
	}
	if len(hooks.loads) != 2 || hooks.loads[0] != "mem/a" || hooks.errs != 1 {
		t.Errorf("hooks saw %v with %d errors", hooks.loads, hooks.errs)
	}
}

func TestSummarize(t *testing.T) {
	rec := &record.Assessment{ID: "x", OrgName: "Acme", Score: 40, Status: "draft"}
	s := Summarize(rec)
	if s.ID != "x" || s.OrgName != "Acme" || s.Score != 40 || s.Status != "draft" {
		t.Errorf("Summarize = %+v", s)
	}
}
