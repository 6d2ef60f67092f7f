package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/app"
	"github.com/raphi011/rbee/internal/git"
	"github.com/raphi011/rbee/internal/report"
)

func newCheckCmd(e *env) *cobra.Command {
	var flags dispatchFlags

	cmd := &cobra.Command{
		Use:     "check [path...]",
		Short:   "Run plugins on cloned repositories",
		GroupID: GroupCore,
		Long: `Run every plugin on already cloned repositories and print the report.

Without arguments, checks every git repository directly inside clone_dir.
Paths that are not git repositories are skipped with a warning.

Exits with status 1 when any plugin reported ERROR.`,
		Example: `  rbee check ./alice ./bob                 # Check two repositories
  rbee check                               # Check everything in clone_dir
  rbee check --javac-ignore Scratch.java   # Override a plugin setting
  rbee -p ./checks/readme.lua check -j 8   # Use a script plugin, 8 workers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				if e.cfg.CloneDir == "" {
					return fmt.Errorf("no paths given and clone_dir is not configured")
				}
				repos, err := git.FindAllRepos(e.cfg.CloneDir)
				if err != nil {
					return err
				}
				paths = repos
			}

			return runDispatch(e, cmd, &flags, len(paths), func(opts app.DispatchOptions) *report.RunReport {
				return e.session.Check(cmd.Context(), paths, opts)
			})
		},
	}

	flags.register(cmd)
	return withPlugins(e, cmd)
}
