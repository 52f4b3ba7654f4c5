package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/secassess/pkg/dag"
)

func TestAssignColumns(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name: "isolated nodes",
			ids:  []string{"a", "b"},
			want: map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "chain",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "longest path wins",
			ids:   []string{"gate", "src", "build", "deploy"},
			edges: [][2]string{{"gate", "src"}, {"src", "build"}, {"build", "deploy"}, {"gate", "deploy"}},
			want:  map[string]int{"gate": 0, "src": 1, "build": 2, "deploy": 3},
		},
		{
			name:  "order independent",
			ids:   []string{"deploy", "build", "src"},
			edges: [][2]string{{"src", "build"}, {"build", "deploy"}},
			want:  map[string]int{"src": 0, "build": 1, "deploy": 2},
		},
		{
			name:  "disconnected",
			ids:   []string{"a", "b", "x", "y"},
			edges: [][2]string{{"a", "b"}, {"x", "y"}},
			want:  map[string]int{"a": 0, "b": 1, "x": 0, "y": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.ids, tt.edges)
			got, err := AssignColumns(g, CycleReject)
			if err != nil {
				t.Fatalf("AssignColumns() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AssignColumns() mismatch (-want +got):\n%s", diff)
			}
			for _, e := range g.Edges() {
				if got[e.To] <= got[e.From] {
					t.Errorf("edge %s->%s does not point rightward", e.From, e.To)
				}
			}
		})
	}
}

func TestAssignColumnsRejectsCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}})

	_, err := AssignColumns(g, CycleReject)
	if !errors.Is(err, dag.ErrGraphHasCycle) {
		t.Fatalf("AssignColumns() error = %v, want ErrGraphHasCycle", err)
	}
	if !strings.Contains(err.Error(), "b") || !strings.Contains(err.Error(), "c") {
		t.Errorf("error %q should name the cycle", err)
	}
}

func TestAssignColumnsBreaksCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	got, err := AssignColumns(g, CycleBreak)
	if err != nil {
		t.Fatalf("AssignColumns() error = %v", err)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AssignColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCyclePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CyclePolicy
		wantErr bool
	}{
		{"", CycleReject, false},
		{"reject", CycleReject, false},
		{"BREAK", CycleBreak, false},
		{"clamp", CycleReject, true},
	}
	for _, tt := range tests {
		got, err := ParseCyclePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCyclePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
