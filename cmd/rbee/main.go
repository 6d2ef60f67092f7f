package main

import (
	"fmt"
	"runtime"
)

// Set with -ldflags -X at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}

// versionString returns the version string.
func versionString() string {
	return fmt.Sprintf("rbee %s (%s, %s, %s)", version, commit[:min(7, len(commit))], date, runtime.Version())
}
