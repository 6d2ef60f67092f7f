// Package progress shows transient progress on a terminal while repositories
// are cloned and checked.
//
// Both components draw to the writer they are given (stderr in rbee, so the
// report on stdout stays clean) and clear their line on Stop.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// stopTimeout bounds how long Stop waits for the renderer to exit.
const stopTimeout = 500 * time.Millisecond

// Interactive reports whether f is a terminal that progress can be drawn on.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func clearLine(w io.Writer) {
	fmt.Fprint(w, "\r\033[K")
}
