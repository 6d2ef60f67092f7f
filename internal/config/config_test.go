package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected workers %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.Format != "text" {
		t.Errorf("expected format %q, got %q", "text", cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() is invalid: %v", err)
	}
}

func TestLoadNonexistent(t *testing.T) {
	t.Setenv(EnvWorkers, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg.Workers != DefaultWorkers || len(cfg.Plugins) != 0 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvWorkers, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
plugins = ["javac", "./checks/readme.lua"]
workers = 2
format = "json"
clone_dir = "/srv/course"

[javac]
ignore = ["Main.java", "Scratch.java"]
timeout = "30s"

[PyCompile]
ignore = "setup.py"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !slices.Equal(cfg.Plugins, []string{"javac", "./checks/readme.lua"}) {
		t.Errorf("Plugins = %q", cfg.Plugins)
	}
	if cfg.Workers != 2 || cfg.Format != "json" || cfg.CloneDir != "/srv/course" {
		t.Errorf("unexpected scalar settings: %+v", cfg)
	}

	javac := cfg.Section("javac")
	if got := javac.StringList("ignore"); !slices.Equal(got, []string{"Main.java", "Scratch.java"}) {
		t.Errorf("JAVAC ignore = %q", got)
	}
	if got := cfg.Section("PYCOMPILE").StringList("ignore"); !slices.Equal(got, []string{"setup.py"}) {
		t.Errorf("PYCOMPILE ignore = %q", got)
	}
	if !cfg.Section("unknown").Empty() {
		t.Error("unknown section should be empty")
	}
}

func TestLoad_WorkersEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = 2\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Setenv(EnvWorkers, "9")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 9 {
		t.Errorf("Workers = %d, want 9", cfg.Workers)
	}

	t.Setenv(EnvWorkers, "zero")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid RBEE_WORKERS")
	}
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/rbee.toml")

	got, err := Path()
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if got != "/etc/rbee.toml" {
		t.Errorf("Path() = %q, want /etc/rbee.toml", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		toml    string
		wantErr string
	}{
		{"bad toml", `plugins = [`, "failed to parse"},
		{"zero workers", `workers = 0`, "invalid workers"},
		{"bad format", `format = "xml"`, `invalid format "xml"`},
		{"relative clone_dir", `clone_dir = "repos"`, "clone_dir must be absolute"},
		{"empty plugin ref", `plugins = ["javac", " "]`, "invalid plugins[1]"},
		{"unknown scalar key", `colour = "red"`, `unknown config key "colour"`},
		{"case-duplicate sections", "[javac]\na = 1\n[JAVAC]\nb = 2\n", "duplicate plugin section"},
		{"bad theme", "[theme]\nname = \"solarized\"\n", "invalid theme.name"},
		{"bad theme mode", "[theme]\nmode = \"dim\"\n", "invalid theme.mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.toml)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_ThemeIsNotASection(t *testing.T) {
	t.Parallel()

	cfg, err := Parse("[theme]\nname = \"nord\"\nmode = \"dark\"\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Theme.Name != "nord" || cfg.Theme.Mode != "dark" {
		t.Errorf("Theme = %+v", cfg.Theme)
	}
	if _, ok := cfg.Sections["THEME"]; ok {
		t.Error("theme table should not become a plugin section")
	}
}

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"", false},
		{"~", false},
		{"~/repos", false},
		{"/abs/repos", false},
		{".", true},
		{"../repos", true},
		{"repos", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			err := ValidatePath(tt.path, "clone_dir")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opts []string
		want string
	}{
		{[]string{"a"}, `"a"`},
		{[]string{"a", "b"}, `"a" or "b"`},
		{[]string{"text", "json", "yaml"}, `"text", "json", or "yaml"`},
	}
	for _, tt := range tests {
		if got := formatOptions(tt.opts); got != tt.want {
			t.Errorf("formatOptions(%q) = %s, want %s", tt.opts, got, tt.want)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	var raw rawConfig
	if _, err := toml.Decode(DefaultConfig(), &raw); err != nil {
		t.Fatalf("DefaultConfig() produces invalid TOML: %v", err)
	}
	cfg, err := Parse(DefaultConfig())
	if err != nil {
		t.Fatalf("Parse(DefaultConfig()): %v", err)
	}
	if !slices.Equal(cfg.Plugins, []string{"javac"}) {
		t.Errorf("default plugins = %q", cfg.Plugins)
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	got, err := Init(path, false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got != path {
		t.Errorf("Init returned %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != DefaultConfig() {
		t.Error("written file does not match DefaultConfig()")
	}

	if _, err := Init(path, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second Init without force: %v", err)
	}
	if _, err := Init(path, true); err != nil {
		t.Errorf("Init with force: %v", err)
	}
}
