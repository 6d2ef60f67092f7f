//go:build integration

package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/raphi011/rbee/internal/ext/filebatch"
	"github.com/raphi011/rbee/internal/plug"
)

// initOrigin creates a repository with one commit to clone from.
func initOrigin(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "assignment-1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	for _, args := range [][]string{
		{"init", "--quiet"},
		{"add", "."},
		{"-c", "user.email=test@example.com", "-c", "user.name=Test", "commit", "--quiet", "-m", "initial"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	return dir
}

func TestRun_Clone(t *testing.T) {
	origin := initOrigin(t, map[string]string{"README.md": "hello"})
	cloneDir := t.TempDir()

	run := func() ([]plug.Result, []string) {
		r, err := Run(context.Background(), Options{
			Command:  CommandClone,
			Plugins:  []plug.Plugin{filebatch.Javac()},
			Inputs:   []string{origin, filepath.Join(t.TempDir(), "missing")},
			CloneDir: cloneDir,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		var paths []string
		for _, u := range r.Units {
			paths = append(paths, u.Path)
		}
		return r.Setup, paths
	}

	setup, paths := run()
	want := filepath.Join(cloneDir, "assignment-1")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("units = %v, want [%s]", paths, want)
	}
	if len(setup) != 1 || setup[0].Status() != plug.Error {
		t.Errorf("setup = %v, want one clone failure", setup)
	}

	// A second clone finds the repository already present.
	setup, paths = run()
	if len(paths) != 1 {
		t.Fatalf("units = %v", paths)
	}
	var warned bool
	for _, res := range setup {
		if res.Status() == plug.Warning {
			warned = true
		}
	}
	if !warned {
		t.Errorf("setup = %v, want an already-present warning", setup)
	}
}
