// Package config handles loading and validation of rbee configuration.
//
// Configuration is read once per run from ~/.config/rbee/config.toml, or from
// the file named by --config-file or RBEE_CONFIG.
//
// # Configuration Sources (highest priority first)
//
//   - RBEE_WORKERS env var: parallel repositories
//   - .rbee.toml in the working directory (project overrides)
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - plugins: plugin references in registration order
//   - workers: repositories processed in parallel (default: 4)
//   - format: report format, "text", "json" or "yaml"
//   - clone_dir: where "rbee clone" puts repositories (must be absolute or ~/...)
//
// # Plugin Sections
//
// Every other top-level table is a plugin section, named after the plugin:
//
//	[javac]
//	ignore = ["Main.java"]
//
// Section names are case-insensitive; [javac] and [JAVAC] are the same
// section and may not both appear. Plugins read their section through
// [plug.Section] getters, so absent keys fall back to the plugin's defaults.
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
