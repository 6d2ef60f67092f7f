package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/rbee/internal/plug"
)

// Environment variables overriding config file settings.
const (
	EnvConfigPath = "RBEE_CONFIG"
	EnvWorkers    = "RBEE_WORKERS"
)

// DefaultWorkers is the default number of repositories processed in parallel.
const DefaultWorkers = 4

// ThemeConfig holds UI theme settings for the report renderer.
type ThemeConfig struct {
	Name     string `toml:"name"` // preset family: none, default, dracula, nord, catppuccin
	Mode     string `toml:"mode"` // auto, light, dark
	Nerdfont bool   `toml:"nerdfont"`
	Primary  string `toml:"primary"`
	Success  string `toml:"success"`
	Warning  string `toml:"warning"`
	Error    string `toml:"error"`
	Muted    string `toml:"muted"`
}

// Config holds the rbee configuration.
type Config struct {
	Plugins  []string    `toml:"plugins"` // plugin references, in registration order
	Workers  int         `toml:"workers"`
	Format   string      `toml:"format"`
	CloneDir string      `toml:"clone_dir"`
	Theme    ThemeConfig `toml:"theme"`

	// Sections holds plugin settings keyed by upper-cased table name.
	Sections map[string]map[string]any `toml:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Workers:  DefaultWorkers,
		Format:   "text",
		Sections: map[string]map[string]any{},
	}
}

// Section implements plug.Settings. Lookup is case-insensitive; an unknown
// section is empty.
func (c *Config) Section(name string) plug.Section {
	return plug.MapSettings(c.Sections).Section(name)
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the config file location: RBEE_CONFIG if set, otherwise
// ~/.config/rbee/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rbee", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before plugin sections are split off
type rawConfig struct {
	Plugins  []string    `toml:"plugins"`
	Workers  *int        `toml:"workers"`
	Format   string      `toml:"format"`
	CloneDir string      `toml:"clone_dir"`
	Theme    ThemeConfig `toml:"theme"`
}

// reservedKeys are top-level keys that are never plugin sections.
var reservedKeys = map[string]bool{
	"plugins":   true,
	"workers":   true,
	"format":    true,
	"clone_dir": true,
	"theme":     true,
}

// Load reads config from path, or from Path() when path is empty.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, applyEnv(&cfg)
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Parse decodes and validates TOML config content.
func Parse(content string) (Config, error) {
	return parse([]byte(content))
}

func parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	var all map[string]any
	if err := toml.Unmarshal(data, &all); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	cfg.Plugins = raw.Plugins
	cfg.Format = raw.Format
	cfg.CloneDir = raw.CloneDir
	cfg.Theme = raw.Theme
	if raw.Workers != nil {
		cfg.Workers = *raw.Workers
	}

	sections, err := parseSections(all)
	if err != nil {
		return Default(), err
	}
	cfg.Sections = sections

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	// Expand ~ in clone_dir (shell doesn't expand in config files)
	expanded, err := expandPath(cfg.CloneDir)
	if err != nil {
		return Default(), fmt.Errorf("expand clone_dir: %w", err)
	}
	cfg.CloneDir = expanded

	return cfg, nil
}

// parseSections collects every non-reserved top-level table as a plugin
// section. Section names are upper-cased; two tables differing only in case
// are rejected.
func parseSections(all map[string]any) (map[string]map[string]any, error) {
	sections := make(map[string]map[string]any)
	for key, value := range all {
		if reservedKeys[key] {
			continue
		}
		table, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
		name := plug.SectionName(key)
		if _, dup := sections[name]; dup {
			return nil, fmt.Errorf("duplicate plugin section %q", name)
		}
		sections[name] = maps.Clone(table)
	}
	return sections, nil
}

// Validate checks field values. Called by Load; exported for configs
// assembled in code.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers %d: must be at least 1", c.Workers)
	}
	if err := ValidateFormat(c.Format); err != nil {
		return err
	}
	if err := ValidatePath(c.CloneDir, "clone_dir"); err != nil {
		return err
	}
	for i, ref := range c.Plugins {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("invalid plugins[%d]: must not be empty", i)
		}
	}
	if c.Theme.Name != "" && !isValidThemeName(c.Theme.Name) {
		return fmt.Errorf("invalid theme.name %q: must be %s", c.Theme.Name, formatOptions(ValidThemeNames))
	}
	return validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes)
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) error {
	v := os.Getenv(EnvWorkers)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid %s %q: must be a positive integer", EnvWorkers, v)
	}
	cfg.Workers = n
	return nil
}

const defaultConfig = `# rbee configuration

# Plugins to activate, in order. Entries are resolved as:
#   builtin name        - e.g. "javac", "pycompile"
#   path ending in .lua - scripted plugin
#   path to executable  - out-of-process plugin
# Override per run with --plug NAME (repeatable) or disable with --no-plugins.
plugins = ["javac"]

# Number of repositories processed in parallel (RBEE_WORKERS overrides)
workers = 4

# Report format: "text", "json", or "yaml"
format = "text"

# Directory repositories are cloned into
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# clone_dir = "~/course/repos"

# Report colors
# [theme]
# name = "default"   # none, default, dracula, nord, catppuccin
# mode = "auto"      # auto, light, dark
# nerdfont = false

# Plugin settings live in a table named after the plugin (case-insensitive).
#
# [javac]
# ignore = ["Main.java", "Scratch.java"]  # or a comma-separated string
# command = "javac"
# timeout = "2m"
#
# [pycompile]
# ignore = ["setup.py"]
`

// DefaultConfig returns the default configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at path, or at Path() when empty.
// If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return "", err
		}
		path = p
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
