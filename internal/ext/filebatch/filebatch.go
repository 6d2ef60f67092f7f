// Package filebatch provides a configuration-driven plugin that runs one
// external tool over every file with a given extension in a cloned
// repository, e.g. javac over all .java files.
package filebatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/raphi011/rbee/internal/cmd"
	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/plug"
)

// DefaultSuccessMessage is reported when the tool exits 0.
const DefaultSuccessMessage = "all files compiled successfully"

// Tool describes a batch tool.
type Tool struct {
	Name    string   // plugin name; also the config section and flag prefix
	Ext     string   // file extension including the dot, e.g. ".java"
	Command string   // default executable
	Args    []string // arguments placed before the file list

	// SuccessMessage overrides DefaultSuccessMessage.
	SuccessMessage string
}

// Settings are the per-run options, read from the plugin's config section
// and optionally overridden on the command line.
type Settings struct {
	Ignore  []string      // basenames to skip
	Command string        // executable, defaults to Tool.Command
	Timeout time.Duration // 0 means no limit
}

// Runner executes the tool. cmd.Capture in production.
type Runner func(ctx context.Context, dir, name string, args ...string) (cmd.Outcome, error)

// Plugin is a batch tool plugin. It implements every plug capability.
type Plugin struct {
	tool     Tool
	settings Settings
	run      Runner
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(p *Plugin) { p.run = r }
}

// New creates a batch tool plugin with default settings.
func New(tool Tool, opts ...Option) *Plugin {
	if tool.SuccessMessage == "" {
		tool.SuccessMessage = DefaultSuccessMessage
	}
	p := &Plugin{
		tool:     tool,
		settings: Settings{Command: tool.Command},
		run:      cmd.Capture,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Javac compiles every .java file of a repository in one javac invocation.
func Javac(opts ...Option) *Plugin {
	return New(Tool{Name: "javac", Ext: ".java", Command: "javac"}, opts...)
}

// PyCompile byte-compiles every .py file of a repository.
func PyCompile(opts ...Option) *Plugin {
	return New(Tool{
		Name:    "pycompile",
		Ext:     ".py",
		Command: "python3",
		Args:    []string{"-m", "py_compile"},
	}, opts...)
}

func (p *Plugin) Name() string { return p.tool.Name }

// Settings returns the effective settings.
func (p *Plugin) Settings() Settings { return p.settings }

// IgnoreFlag is the name of the flag overriding the ignore list.
func (p *Plugin) IgnoreFlag() string { return p.tool.Name + "-ignore" }

// Configure reads ignore, command and timeout. Absent keys keep defaults.
// ignore may be a list or a comma-separated string.
func (p *Plugin) Configure(sec plug.Section) error {
	timeout, err := sec.Duration("timeout", 0)
	if err != nil {
		return err
	}
	if timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", timeout)
	}

	p.settings = Settings{
		Ignore:  sec.StringList("ignore"),
		Command: sec.String("command", p.tool.Command),
		Timeout: timeout,
	}
	return nil
}

// ExtendArgs adds --<name>-ignore to the clone and check commands.
func (p *Plugin) ExtendArgs(g *plug.ArgGroup) {
	g.Flags().StringSlice(p.IgnoreFlag(), nil,
		fmt.Sprintf("%s files to skip (overrides config %s.ignore)", p.tool.Ext, plug.SectionName(p.tool.Name)))
}

// ConsumeArgs replaces the configured ignore list when the flag was given.
func (p *Plugin) ConsumeArgs(args plug.Args) error {
	if args.Changed(p.IgnoreFlag()) {
		p.settings.Ignore = args.StringSlice(p.IgnoreFlag())
	}
	return nil
}

// ActOnClonedRepo runs the tool once over all matching files.
func (p *Plugin) ActOnClonedRepo(ctx context.Context, path string) (plug.Result, error) {
	files, err := p.collect(path)
	if err != nil {
		return plug.Result{}, fmt.Errorf("scan %s: %w", path, err)
	}
	if len(files) == 0 {
		return plug.Warned(p.tool.Name, fmt.Sprintf("no %s files found", p.tool.Ext)), nil
	}

	log.FromContext(ctx).Debug("batch tool", "plugin", p.tool.Name, "files", len(files), "path", path)

	if p.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.settings.Timeout)
		defer cancel()
	}

	args := append(slices.Clone(p.tool.Args), files...)
	out, err := p.run(ctx, path, p.settings.Command, args...)
	if errors.Is(err, cmd.ErrTimeout) {
		return plug.Failed(p.tool.Name, fmt.Sprintf("%s timed out after %s", p.settings.Command, p.settings.Timeout)), nil
	}
	if err != nil {
		return plug.Result{}, err
	}
	if !out.Success() {
		return plug.Failed(p.tool.Name, out.Diagnostics()), nil
	}
	return plug.Succeeded(p.tool.Name, p.tool.SuccessMessage), nil
}

// collect returns the matching files below root as sorted paths relative to
// root, skipping .git and ignored basenames. Every path starts with "./" so
// a file named like an option is still passed as a file.
func (p *Plugin) collect(root string) ([]string, error) {
	ignore := make(map[string]bool, len(p.settings.Ignore))
	for _, name := range p.settings.Ignore {
		ignore[name] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(d.Name()), p.tool.Ext) || ignore[d.Name()] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, "."+string(filepath.Separator)+rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}
