// Package app wires the hook stages into the clone and check workflows.
//
// A [Session] is created once per invocation: it registers the plugins and
// runs the configuration stage. The CLI then lets plugins contribute flags,
// parses the command line, hands the parsed flags back through
// [Session.ConsumeArgs] and finally dispatches with [Session.Check] or
// [Session.Clone]. [Run] performs all of this in one call.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/raphi011/rbee/internal/git"
	"github.com/raphi011/rbee/internal/hooks"
	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
	"github.com/raphi011/rbee/internal/report"
)

// Commands that accept plugin arguments and dispatch.
const (
	CommandClone = "clone"
	CommandCheck = "check"
)

// Source is the result source for faults found by rbee itself, such as an
// input that is not a repository.
const Source = "rbee"

// Session holds the registry and the setup results of one invocation.
type Session struct {
	reg   *hooks.Registry
	setup []plug.Result
}

// NewSession registers plugins in order and configures them from settings.
// A duplicate plugin name is returned as *hooks.DuplicateNameError before
// any plugin is configured.
func NewSession(ctx context.Context, plugins []plug.Plugin, settings plug.Settings) (*Session, error) {
	reg, err := hooks.NewRegistry(plugins...)
	if err != nil {
		return nil, err
	}
	setup, err := hooks.Configure(ctx, reg, settings)
	if err != nil {
		return nil, err
	}
	return &Session{reg: reg, setup: setup}, nil
}

// Registry returns the sealed plugin registry.
func (s *Session) Registry() *hooks.Registry { return s.reg }

// Setup returns the results of the configuration and argument stages so far.
func (s *Session) Setup() []plug.Result { return s.setup }

// ExtendArgs lets plugins add flags to command's flag set.
// Panics if two plugins define the same flag.
func (s *Session) ExtendArgs(command string, flags *pflag.FlagSet) {
	hooks.ContributeArgs(s.reg, plug.NewArgGroup(command, flags))
}

// ConsumeArgs hands the parsed flags to the plugins.
func (s *Session) ConsumeArgs(ctx context.Context, command string, flags *pflag.FlagSet) {
	s.setup = append(s.setup, hooks.ConsumeArgs(ctx, s.reg, plug.NewArgs(command, flags))...)
}

// DispatchOptions tune the dispatch stage.
type DispatchOptions struct {
	Workers  int
	Progress hooks.Progress
}

func (o DispatchOptions) hookOptions() []hooks.DispatchOption {
	if o.Progress == nil {
		return nil
	}
	return []hooks.DispatchOption{hooks.WithProgress(o.Progress)}
}

// Check dispatches on already cloned repositories. Paths that are not git
// repositories are skipped with a setup warning.
func (s *Session) Check(ctx context.Context, paths []string, opts DispatchOptions) *report.RunReport {
	r := report.New(CommandCheck)
	r.AddSetup(s.setup...)

	var repos []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			r.AddSetup(plug.Failed(Source, fmt.Sprintf("%s: %v", path, err)))
			continue
		}
		if !git.IsRepo(abs) {
			r.AddSetup(plug.Warned(Source, fmt.Sprintf("%s: not a git repository, skipped", path)))
			continue
		}
		repos = append(repos, abs)
	}

	s.dispatch(ctx, r, repos, opts)
	return r
}

// Clone clones urls into dir and dispatches on every repository that is
// present afterwards. Repositories already in dir are not updated; they are
// reported with a setup warning and still dispatched on.
func (s *Session) Clone(ctx context.Context, urls []string, dir string, opts DispatchOptions) *report.RunReport {
	r := report.New(CommandClone)
	r.AddSetup(s.setup...)

	l := log.FromContext(ctx)

	var repos []string
	for _, res := range git.CloneAll(ctx, urls, dir, opts.Workers) {
		switch {
		case res.Err != nil:
			r.AddSetup(plug.Failed(Source, res.Err.Error()))
		case res.Existing:
			msg := fmt.Sprintf("%s already exists, not cloned again", res.Path)
			if res.Origin != "" && res.Origin != res.URL {
				msg += fmt.Sprintf(" (origin is %s)", res.Origin)
			}
			r.AddSetup(plug.Warned(Source, msg))
			repos = append(repos, res.Path)
		default:
			l.Debug("cloned", "url", res.URL, "path", res.Path)
			repos = append(repos, res.Path)
		}
	}

	s.dispatch(ctx, r, repos, opts)
	return r
}

func (s *Session) dispatch(ctx context.Context, r *report.RunReport, repos []string, opts DispatchOptions) {
	results := hooks.DispatchAll(ctx, s.reg, repos, opts.Workers, opts.hookOptions()...)
	for i, path := range repos {
		r.AddUnit(path, results[i])
	}
}

// Options configure Run.
type Options struct {
	Command  string // CommandClone or CommandCheck
	Plugins  []plug.Plugin
	Settings plug.Settings

	// Argv holds the plugin flags, parsed after the plugins contributed them.
	Argv []string

	// Inputs are URLs for CommandClone and paths for CommandCheck.
	Inputs   []string
	CloneDir string

	DispatchOptions
}

// Run executes every stage for one command and returns the report.
func Run(ctx context.Context, opts Options) (*report.RunReport, error) {
	if opts.Command != CommandClone && opts.Command != CommandCheck {
		return nil, fmt.Errorf("unknown command %q", opts.Command)
	}

	s, err := NewSession(ctx, opts.Plugins, opts.Settings)
	if err != nil {
		return nil, err
	}

	flags := pflag.NewFlagSet(opts.Command, pflag.ContinueOnError)
	s.ExtendArgs(opts.Command, flags)
	if err := flags.Parse(opts.Argv); err != nil {
		return nil, err
	}
	s.ConsumeArgs(ctx, opts.Command, flags)

	if opts.Command == CommandClone {
		if opts.CloneDir == "" {
			return nil, fmt.Errorf("clone requires a clone directory")
		}
		return s.Clone(ctx, opts.Inputs, opts.CloneDir, opts.DispatchOptions), nil
	}
	return s.Check(ctx, opts.Inputs, opts.DispatchOptions), nil
}
