package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/secassess/pkg/store"
)

func TestRunList(t *testing.T) {
	c, _ := testCLI(t)

	var buf bytes.Buffer
	if err := c.runList(context.Background(), &buf, true); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	var got []store.Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if len(got) != 1 || got[0].ID != "acme" || got[0].OrgName != "Acme Corp" || got[0].Score != 72 {
		t.Errorf("runList() = %+v", got)
	}

	buf.Reset()
	if err := c.runList(context.Background(), &buf, false); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	for _, want := range []string{"Organization", "Acme Corp", "72%", "production"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "—"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-50 * time.Hour), "2d ago"},
		{"older", time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC), "Jan 2, 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t, now); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
