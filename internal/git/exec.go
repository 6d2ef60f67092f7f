package git

import (
	"context"

	"github.com/raphi011/rbee/internal/cmd"
)

// git runs git with -C dir (the working directory when dir is empty) and
// returns its stdout. Failures carry git's stderr.
func git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	return cmd.OutputContext(ctx, "", "git", args...)
}
