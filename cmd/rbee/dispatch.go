package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/app"
	"github.com/raphi011/rbee/internal/config"
	"github.com/raphi011/rbee/internal/log"
	"github.com/raphi011/rbee/internal/output"
	"github.com/raphi011/rbee/internal/report"
	"github.com/raphi011/rbee/internal/ui/progress"
)

// dispatchFlags are the flags shared by clone and check.
type dispatchFlags struct {
	format  string
	workers int
}

func (f *dispatchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "Report format: text, json or yaml (default from config)")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "Repositories processed in parallel (default from config)")
	cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.ValidFormats, cobra.ShellCompDirectiveNoFileComp))
}

// resolve applies the config defaults.
func (f *dispatchFlags) resolve(cfg *config.Config) (report.Format, int, error) {
	format := f.format
	if format == "" {
		format = cfg.Format
	}
	parsed, err := report.ParseFormat(format)
	if err != nil {
		return "", 0, err
	}

	workers := f.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	if workers < 1 {
		return "", 0, fmt.Errorf("invalid workers %d: must be at least 1", workers)
	}
	return parsed, workers, nil
}

// withPlugins lets the session's plugins extend cmd's flags and marks cmd as
// needing plugins.
func withPlugins(e *env, cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsPlugins] = "true"
	if e.session != nil {
		e.session.ExtendArgs(cmd.Name(), cmd.Flags())
	}
	return cmd
}

// runDispatch consumes plugin flags, runs fn with progress and renders the report.
func runDispatch(e *env, cmd *cobra.Command, flags *dispatchFlags, total int, fn func(app.DispatchOptions) *report.RunReport) error {
	ctx := cmd.Context()
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	format, workers, err := flags.resolve(e.cfg)
	if err != nil {
		return err
	}

	e.session.ConsumeArgs(ctx, cmd.Name(), cmd.Flags())

	opts := app.DispatchOptions{Workers: workers}
	var tracker *tracker
	if !l.IsQuiet() && !l.IsVerbose() && progress.Interactive(os.Stderr) && total > 0 {
		tracker = newTracker(cmd.Name(), total)
		opts.Progress = tracker.report
		tracker.start()
	}

	l.Debug("dispatch", "command", cmd.Name(), "inputs", total, "workers", workers)
	r := fn(opts)
	if tracker != nil {
		tracker.stop()
	}

	width := 0
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && format == report.FormatText {
		width = w
	}
	if err := report.Render(out.Writer(), r, report.Options{Format: format, Width: width}); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	e.exitCode = r.ExitCode()
	return nil
}

// tracker shows a spinner until the first repository is done, then a bar.
type tracker struct {
	spinner *progress.Spinner
	bar     *progress.Bar
	once    sync.Once
}

func newTracker(command string, total int) *tracker {
	verb := "checking"
	if command == app.CommandClone {
		verb = "cloning"
	}
	return &tracker{
		spinner: progress.NewSpinner(os.Stderr, fmt.Sprintf("%s %d repositories", verb, total)),
		bar:     progress.NewBar(os.Stderr, total),
	}
}

func (t *tracker) start() { t.spinner.Start() }

func (t *tracker) report(done, total int, path string) {
	t.once.Do(func() {
		t.spinner.Stop()
		t.bar.Start()
	})
	t.bar.Report(done, total, path)
}

func (t *tracker) stop() {
	t.spinner.Stop()
	t.bar.Stop()
}
