package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/config"
	"github.com/raphi011/rbee/internal/output"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage rbee configuration.

Global config: ~/.config/rbee/config.toml (or RBEE_CONFIG / --config-file)
Local config:  .rbee.toml (in the working directory)`,
		Example: `  rbee config init          # Create default global config
  rbee config init --local  # Create .rbee.toml here
  rbee config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd(e))
	cmd.AddCommand(newConfigShowCmd(e))

	return cmd
}

func newConfigInitCmd(e *env) *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config. With --local, creates
.rbee.toml in the current directory.`,
		Example: `  rbee config init           # Create global config
  rbee config init --local   # Create project config
  rbee config init -f        # Overwrite existing config
  rbee config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if local {
				if stdout {
					out.Print(config.DefaultLocalConfig())
					return nil
				}
				return initLocalConfig(out, force)
			}

			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}
			path, err := config.Init(e.pre.ConfigFile, force)
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create .rbee.toml in the current directory instead")

	return cmd
}

func initLocalConfig(out *output.Printer, force bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(wd, config.LocalConfigFileName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("local config already exists: %s (use -f to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(config.DefaultLocalConfig()), 0644); err != nil {
		return err
	}

	out.Printf("Created local config: %s\n", path)
	return nil
}

func newConfigShowCmd(e *env) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show the effective configuration: the config file merged with .rbee.toml
and environment overrides. Plugin sections are shown under their
upper-cased names.`,
		Example: `  rbee config show          # TOML
  rbee config show --json   # JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfgErr != nil {
				return e.cfgErr
			}
			out := output.FromContext(cmd.Context())
			doc := effectiveConfig(e.cfg)

			if jsonOutput {
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			return toml.NewEncoder(out.Writer()).Encode(doc)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// effectiveConfig flattens cfg into one document with plugin sections as
// top-level tables.
func effectiveConfig(cfg *config.Config) map[string]any {
	doc := map[string]any{
		"plugins": cfg.Plugins,
		"workers": cfg.Workers,
		"format":  cfg.Format,
		"theme":   cfg.Theme,
	}
	if cfg.Plugins == nil {
		doc["plugins"] = []string{}
	}
	if cfg.CloneDir != "" {
		doc["clone_dir"] = cfg.CloneDir
	}
	for name, sec := range cfg.Sections {
		doc[name] = sec
	}
	return doc
}
