package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/app"
	"github.com/raphi011/rbee/internal/config"
	"github.com/raphi011/rbee/internal/ext"
	"github.com/raphi011/rbee/internal/hooks"
	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/output"
	"github.com/raphi011/rbee/internal/ui/styles"
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// needsPlugins marks commands that fail when plugins could not be loaded.
const needsPlugins = "needs-plugins"

// env is the state shared by all commands of one invocation.
type env struct {
	pre preOptions

	cfg     *config.Config
	session *app.Session
	// err is a config or plugin load failure, reported by commands that need plugins.
	err    error
	cfgErr error

	stdout, stderr io.Writer
	exitCode       int
}

// Execute runs rbee with the process arguments and exits.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one invocation and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	pre, rest, err := preparse(args)
	if err != nil {
		fmt.Fprintf(stderr, "rbee: %v\n", err)
		return 1
	}

	// Create logger (stderr for diagnostics)
	ctx = log.WithLogger(ctx, log.New(stderr, pre.Verbose, pre.Quiet))
	ctx = hooks.WithTraceback(ctx, pre.Traceback)

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, output.NewStyled(stdout, os.Environ()))

	e := &env{pre: pre, stdout: stdout, stderr: stderr}
	e.load(ctx)

	root := newRootCmd(e)
	root.SetArgs(rest)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "rbee: %v\n", err)
		var loadErr *ext.LoadError
		var dupErr *hooks.DuplicateNameError
		if !errors.As(err, &loadErr) && !errors.As(err, &dupErr) {
			fmt.Fprintln(stderr, "Run 'rbee -h' for help")
		}
		return 1
	}
	return e.exitCode
}

// load reads the configuration, loads the plugins and runs the
// configuration stage. Failures are kept in e.err.
func (e *env) load(ctx context.Context) {
	cfg, err := config.Load(e.pre.ConfigFile)
	e.cfg = &cfg
	if err != nil {
		e.err, e.cfgErr = err, err
		return
	}

	if wd, err := os.Getwd(); err == nil {
		local, err := config.LoadLocal(wd)
		if err != nil {
			e.err, e.cfgErr = err, err
			return
		}
		e.cfg = config.MergeLocal(e.cfg, local)
	}

	styles.Init(e.cfg.Theme)

	plugins, err := ext.LoadAll(ctx, e.pluginRefs())
	if err != nil {
		e.err = err
		return
	}
	e.session, e.err = app.NewSession(ctx, plugins, e.cfg)
}

// pluginRefs applies --plug and --no-plugins to the configured list.
func (e *env) pluginRefs() []string {
	switch {
	case e.pre.NoPlugins:
		return nil
	case len(e.pre.Plugins) > 0:
		return e.pre.Plugins
	default:
		return e.cfg.Plugins
	}
}

func newRootCmd(e *env) *cobra.Command {
	var verbose, quiet, traceback bool

	root := &cobra.Command{
		Use:   "rbee",
		Short: "Clone and check student repositories with plugins",
		Long: `rbee clones repositories and runs plugins on every clone.

Plugins are built-in (javac, pycompile), Lua scripts (*.lua) or plugin
executables. Each plugin reports SUCCESS, WARNING or ERROR per repository;
rbee merges the results into one report.

Plugins are taken from the "plugins" list in the config file. The options
below are read before the command and apply to every command:

  -p, --plug REF         use plugin REF (repeatable, replaces the config list)
      --no-plugins       run without plugins
      --config-file PATH use this config file`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			if cmd.Annotations[needsPlugins] == "true" && e.err != nil {
				return e.err
			}
			return nil
		},
		// Run is not set - shows help when no subcommand provided
	}

	// Parsed here so help lists them; their values were taken by preparse.
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show plugin invocations and external commands")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	root.PersistentFlags().BoolVar(&traceback, "traceback", false, "Log stack traces of plugin panics (shown with -v)")

	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	root.AddCommand(newCloneCmd(e))
	root.AddCommand(newCheckCmd(e))
	root.AddCommand(newPluginsCmd(e))

	root.AddCommand(newConfigCmd(e))
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())

	return root
}
