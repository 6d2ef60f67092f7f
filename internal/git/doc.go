// Package git provides the git operations rbee needs via shell commands.
//
// All operations call the git CLI through [github.com/raphi011/rbee/internal/cmd]
// rather than using Go git libraries, so user configuration (SSH keys,
// credential helpers, URL rewrites) applies to every clone.
//
//   - [IsRepo]: cheap check for a .git entry, used before dispatch
//   - [Clone], [CloneAll]: clone student repositories, in parallel
//   - [FindAllRepos]: list repositories directly below a directory
//   - [ExtractRepoNameFromURL]: derive the clone directory name
package git
