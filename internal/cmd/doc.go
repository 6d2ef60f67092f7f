// Package cmd provides helpers for executing external commands with proper error handling.
//
// [RunContext] and [OutputContext] fold stderr into the returned error, which
// suits plumbing like git where the message is all the user needs.
//
// [Capture] is for plugins that classify a tool's outcome themselves: it
// returns the exit code and both output streams, and only errors when the
// process could not be run to completion (not found, cancelled, timed out).
//
//	out, err := cmd.Capture(ctx, repoPath, "javac", files...)
//	if err != nil {
//	    return plug.Failed(name, err.Error()), nil
//	}
//	if out.ExitCode != 0 {
//	    return plug.Failed(name, out.Stderr), nil
//	}
package cmd
