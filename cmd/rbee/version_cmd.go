package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/rbee/internal/ext"
	"github.com/raphi011/rbee/internal/output"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version and built-in plugins",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			out.Println(versionString())
			out.Printf("built-in plugins: %v\n", ext.BuiltinNames())
			return nil
		},
	}
}
