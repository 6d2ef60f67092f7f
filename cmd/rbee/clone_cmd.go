package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/app"
	"github.com/raphi011/rbee/internal/git"
	"github.com/raphi011/rbee/internal/report"
)

func newCloneCmd(e *env) *cobra.Command {
	var (
		flags dispatchFlags
		dir   string
	)

	cmd := &cobra.Command{
		Use:     "clone <url>...",
		Short:   "Clone repositories and run plugins on them",
		GroupID: GroupCore,
		Args:    cobra.MinimumNArgs(1),
		Long: `Clone repositories into clone_dir/<repo-name> and run every plugin on them.

Repositories that are already present are not cloned again; they are
reported with a warning and checked as they are.

Exits with status 1 when any clone failed or any plugin reported ERROR.`,
		Example: `  rbee clone git@gitlab.example.com:course/alice.git
  rbee clone -d ~/grading/week3 $(cat urls.txt)
  rbee clone --format json URL > report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := e.cfg.CloneDir
			if dir != "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				target = abs
			}
			if target == "" {
				return fmt.Errorf("no clone directory: set clone_dir in the config or pass --dir")
			}
			if err := git.CheckGit(); err != nil {
				return err
			}

			return runDispatch(e, cmd, &flags, len(args), func(opts app.DispatchOptions) *report.RunReport {
				return e.session.Clone(cmd.Context(), args, target, opts)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Clone into this directory (overrides clone_dir)")
	cmd.MarkFlagDirname("dir")
	return withPlugins(e, cmd)
}
