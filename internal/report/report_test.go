package report

import (
	"testing"

	"github.com/raphi011/rbee/internal/plug"
)

func TestOverall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup []plug.Result
		units [][]plug.Result
		want  plug.Status
	}{
		{"empty report", nil, nil, plug.Success},
		{"unit without results", nil, [][]plug.Result{{}}, plug.Success},
		{
			name:  "all success",
			units: [][]plug.Result{{plug.Succeeded("javac", "ok")}, {plug.Succeeded("javac", "ok")}},
			want:  plug.Success,
		},
		{
			name:  "warning beats success",
			units: [][]plug.Result{{plug.Succeeded("javac", "ok")}, {plug.Warned("javac", "no .java files found")}},
			want:  plug.Warning,
		},
		{
			name:  "error beats warning",
			units: [][]plug.Result{{plug.Warned("a", "w"), plug.Failed("b", "e")}, {plug.Succeeded("a", "ok")}},
			want:  plug.Error,
		},
		{
			name:  "setup error counts",
			setup: []plug.Result{plug.Failed("javac", "configuration failed")},
			units: [][]plug.Result{{plug.Succeeded("javac", "ok")}},
			want:  plug.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New("check")
			r.AddSetup(tt.setup...)
			for i, results := range tt.units {
				r.AddUnit(string(rune('a'+i)), results)
			}
			if got := r.Overall(); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
			wantExit := 0
			if tt.want == plug.Error {
				wantExit = 1
			}
			if got := r.ExitCode(); got != wantExit {
				t.Errorf("ExitCode() = %d, want %d", got, wantExit)
			}
		})
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	r := New("clone")
	r.AddSetup(plug.Warned("setup", "not a git repository"))
	r.AddUnit("repo-1", []plug.Result{plug.Succeeded("javac", "ok"), plug.Failed("lint", "bad")})
	r.AddUnit("repo-2", []plug.Result{plug.Succeeded("javac", "ok"), plug.Succeeded("lint", "ok")})

	got := r.Counts()
	want := Counts{Success: 3, Warning: 1, Error: 1}
	if got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
	if got.Total() != 5 {
		t.Errorf("Total() = %d, want 5", got.Total())
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	t.Parallel()

	a, b := New("check"), New("check")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
}
