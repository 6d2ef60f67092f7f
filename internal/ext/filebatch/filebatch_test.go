package filebatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/pflag"

	"github.com/raphi011/rbee/internal/cmd"
	"github.com/raphi011/rbee/internal/plug"
)

// fakeRunner records invocations and returns a canned outcome.
type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	out   cmd.Outcome
	err   error
}

type call struct {
	dir  string
	name string
	args []string
}

func (f *fakeRunner) run(_ context.Context, dir, name string, args ...string) (cmd.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.out, f.err
}

// writeRepo creates files (relative paths) below a fresh directory.
func writeRepo(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("class X {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func configure(t *testing.T, p *Plugin, values map[string]any) {
	t.Helper()
	if err := p.Configure(plug.NewSection("JAVAC", values)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
}

func TestActOnClonedRepo_IgnoreSet(t *testing.T) {
	t.Parallel()

	repo := writeRepo(t, "Good.java", "Bad.java", "src/Util.java", "README.md", ".git/Hidden.java")
	runner := &fakeRunner{}
	p := Javac(WithRunner(runner.run))
	configure(t, p, map[string]any{"ignore": "Bad.java"})

	res, err := p.ActOnClonedRepo(context.Background(), repo)
	if err != nil {
		t.Fatalf("ActOnClonedRepo: %v", err)
	}
	if res.Status() != plug.Success || res.Message() != DefaultSuccessMessage {
		t.Errorf("result = %v", res)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("tool invoked %d times, want 1", len(runner.calls))
	}
	got := runner.calls[0]
	if got.name != "javac" || got.dir != repo {
		t.Errorf("invocation = %+v", got)
	}
	want := []string{"./Good.java", "./" + filepath.Join("src", "Util.java")}
	if !slices.Equal(got.args, want) {
		t.Errorf("files = %q, want %q", got.args, want)
	}
}

func TestActOnClonedRepo_NoFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  []string
		ignore any
	}{
		{"empty repo", nil, nil},
		{"only other files", []string{"README.md", "main.py"}, nil},
		{"all ignored", []string{"Main.java"}, []any{"Main.java"}},
		{"only in .git", []string{".git/objects/X.java"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{}
			p := Javac(WithRunner(runner.run))
			values := map[string]any{}
			if tt.ignore != nil {
				values["ignore"] = tt.ignore
			}
			configure(t, p, values)

			res, err := p.ActOnClonedRepo(context.Background(), writeRepo(t, tt.files...))
			if err != nil {
				t.Fatalf("ActOnClonedRepo: %v", err)
			}
			if res.Status() != plug.Warning || res.Message() != "no .java files found" {
				t.Errorf("result = %v, want WARNING no .java files found", res)
			}
			if len(runner.calls) != 0 {
				t.Errorf("tool invoked %d times, want 0", len(runner.calls))
			}
		})
	}
}

func TestActOnClonedRepo_ToolOutcome(t *testing.T) {
	t.Parallel()

	stderr := "Bad.java:1: error: ';' expected\n1 error\n"

	tests := []struct {
		name    string
		out     cmd.Outcome
		err     error
		want    plug.Status
		wantMsg string
		wantErr bool
	}{
		{"exit 0", cmd.Outcome{}, nil, plug.Success, DefaultSuccessMessage, false},
		{"exit 1 keeps stderr verbatim", cmd.Outcome{ExitCode: 1, Stderr: stderr}, nil, plug.Error, stderr, false},
		{"timeout", cmd.Outcome{}, cmd.ErrTimeout, plug.Error, "javac timed out after 0s", false},
		{"not installed", cmd.Outcome{}, errors.New(`run javac: exec: "javac": executable file not found`), 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{out: tt.out, err: tt.err}
			p := Javac(WithRunner(runner.run))

			res, err := p.ActOnClonedRepo(context.Background(), writeRepo(t, "Main.java"))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("ActOnClonedRepo: %v", err)
			}
			if res.Status() != tt.want || res.Message() != tt.wantMsg {
				t.Errorf("result = %v, want %v %q", res, tt.want, tt.wantMsg)
			}
			if res.Source() != "javac" {
				t.Errorf("source = %q", res.Source())
			}
		})
	}
}

func TestActOnClonedRepo_Timeout(t *testing.T) {
	t.Parallel()

	var deadlineSet bool
	p := Javac(WithRunner(func(ctx context.Context, _, _ string, _ ...string) (cmd.Outcome, error) {
		_, deadlineSet = ctx.Deadline()
		return cmd.Outcome{}, cmd.ErrTimeout
	}))
	configure(t, p, map[string]any{"timeout": "30s"})

	res, err := p.ActOnClonedRepo(context.Background(), writeRepo(t, "Main.java"))
	if err != nil {
		t.Fatalf("ActOnClonedRepo: %v", err)
	}
	if !deadlineSet {
		t.Error("timeout setting did not bound the tool")
	}
	if res.Status() != plug.Error || res.Message() != "javac timed out after 30s" {
		t.Errorf("result = %v", res)
	}
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	p := Javac()
	if err := p.Configure(plug.NewSection("JAVAC", nil)); err != nil {
		t.Fatalf("Configure empty section: %v", err)
	}
	if s := p.Settings(); s.Command != "javac" || s.Ignore != nil || s.Timeout != 0 {
		t.Errorf("defaults = %+v", s)
	}

	configure(t, p, map[string]any{"ignore": []any{"A.java", "B.java"}, "command": "/opt/jdk/bin/javac"})
	if s := p.Settings(); s.Command != "/opt/jdk/bin/javac" || !slices.Equal(s.Ignore, []string{"A.java", "B.java"}) {
		t.Errorf("settings = %+v", s)
	}

	for _, bad := range []map[string]any{{"timeout": "soon"}, {"timeout": "-1s"}} {
		if err := Javac().Configure(plug.NewSection("JAVAC", bad)); err == nil {
			t.Errorf("Configure(%v) expected error", bad)
		}
	}
}

func TestConfigure_InvalidKeepsDefaults(t *testing.T) {
	t.Parallel()

	p := Javac()
	err := p.Configure(plug.NewSection("JAVAC", map[string]any{
		"ignore":  []any{"A.java"},
		"command": "/opt/jdk/bin/javac",
		"timeout": "soon",
	}))
	if err == nil {
		t.Fatal("Configure with bad timeout: expected error")
	}
	if s := p.Settings(); s.Command != "javac" || s.Ignore != nil || s.Timeout != 0 {
		t.Errorf("settings after failed Configure = %+v, want defaults", s)
	}
}

func TestActOnClonedRepo_OptionLikeFileNames(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	p := Javac(WithRunner(runner.run))
	if _, err := p.ActOnClonedRepo(context.Background(), writeRepo(t, "-d.java", "-Jfoo.java")); err != nil {
		t.Fatalf("ActOnClonedRepo: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("tool invoked %d times, want 1", len(runner.calls))
	}
	for _, arg := range runner.calls[0].args {
		if strings.HasPrefix(arg, "-") {
			t.Errorf("file passed as %q, reads as an option", arg)
		}
	}
}

func TestArgs_OverrideConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{"flag absent keeps config", nil, []string{"Bad.java"}},
		{"flag overrides config", []string{"--javac-ignore", "Other.java,Third.java"}, []string{"Other.java", "Third.java"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Javac()
			configure(t, p, map[string]any{"ignore": "Bad.java"})

			fs := pflag.NewFlagSet("clone", pflag.ContinueOnError)
			p.ExtendArgs(plug.NewArgGroup("clone", fs))
			if err := fs.Parse(tt.argv); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if err := p.ConsumeArgs(plug.NewArgs("clone", fs)); err != nil {
				t.Fatalf("ConsumeArgs: %v", err)
			}
			if got := p.Settings().Ignore; !slices.Equal(got, tt.want) {
				t.Errorf("Ignore = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPyCompile(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	p := PyCompile(WithRunner(runner.run))

	if _, err := p.ActOnClonedRepo(context.Background(), writeRepo(t, "main.py", "Main.java")); err != nil {
		t.Fatalf("ActOnClonedRepo: %v", err)
	}
	want := []string{"-m", "py_compile", "./main.py"}
	if len(runner.calls) != 1 || runner.calls[0].name != "python3" || !slices.Equal(runner.calls[0].args, want) {
		t.Errorf("calls = %+v", runner.calls)
	}
	if got := plug.CapabilitiesOf(p).String(); got != "config,extend-args,consume-args,act-on-clone" {
		t.Errorf("capabilities = %s", got)
	}
}
