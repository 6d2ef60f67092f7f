package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the project config file looked up in the working directory.
const LocalConfigFileName = ".rbee.toml"

// LocalConfig holds per-project overrides from .rbee.toml, typically kept
// next to a course's student repositories.
// Nil pointers and empty strings mean "not set" (inherit from global).
type LocalConfig struct {
	Plugins  []string `toml:"plugins"` // replaces the global list when non-empty
	Workers  *int     `toml:"workers"`
	Format   string   `toml:"format"`
	CloneDir string   `toml:"clone_dir"`

	// Sections are merged key by key into the global plugin sections.
	Sections map[string]map[string]any `toml:"-"`
}

// rawLocalConfig mirrors LocalConfig for the first decoding pass.
type rawLocalConfig struct {
	Plugins  []string `toml:"plugins"`
	Workers  *int     `toml:"workers"`
	Format   string   `toml:"format"`
	CloneDir string   `toml:"clone_dir"`
}

// LoadLocal reads .rbee.toml from dir.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(dir string) (*LocalConfig, error) {
	configFile := filepath.Join(dir, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	var all map[string]any
	if err := toml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	delete(all, "theme") // theme is a global-only setting

	sections, err := parseSections(all)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}

	local := &LocalConfig{
		Plugins:  raw.Plugins,
		Workers:  raw.Workers,
		Format:   raw.Format,
		CloneDir: raw.CloneDir,
		Sections: sections,
	}

	if local.Workers != nil && *local.Workers < 1 {
		return nil, fmt.Errorf("invalid workers %d in %s: must be at least 1", *local.Workers, configFile)
	}
	if err := ValidateFormat(local.Format); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}
	if err := ValidatePath(local.CloneDir, "clone_dir"); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}

	return local, nil
}

// defaultLocalConfig is the template for rbee config init --local
const defaultLocalConfig = `# rbee project config
# Place this file in the directory you run rbee from.
# Settings here override the global config for this project only.

# plugins = ["javac", "./checks/readme.lua"]
# workers = 8
# clone_dir = "~/course/2026/repos"

# Plugin sections are merged key by key into the global ones.
# [javac]
# ignore = ["Scratch.java"]
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
