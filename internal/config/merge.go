package config

import (
	"maps"
	"os"
)

// MergeLocal merges a project config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil. RBEE_WORKERS, when set, keeps
// precedence over the local workers setting.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Shallow copy global: Theme is global-only and inherited as-is.
	merged := *global

	if len(local.Plugins) > 0 {
		merged.Plugins = append([]string(nil), local.Plugins...)
	}
	if local.Workers != nil && os.Getenv(EnvWorkers) == "" {
		merged.Workers = *local.Workers
	}
	if local.Format != "" {
		merged.Format = local.Format
	}
	if local.CloneDir != "" {
		if expanded, err := expandPath(local.CloneDir); err == nil {
			merged.CloneDir = expanded
		}
	}

	merged.Sections = mergeSections(global.Sections, local.Sections)

	return &merged
}

// mergeSections overlays local plugin sections onto global ones.
// Keys present locally win; other global keys are kept.
func mergeSections(global, local map[string]map[string]any) map[string]map[string]any {
	merged := make(map[string]map[string]any, len(global)+len(local))
	for name, sec := range global {
		merged[name] = maps.Clone(sec)
	}
	for name, sec := range local {
		if merged[name] == nil {
			merged[name] = make(map[string]any, len(sec))
		}
		maps.Copy(merged[name], sec)
	}
	return merged
}
