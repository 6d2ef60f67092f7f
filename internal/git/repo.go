package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphi011/rbee/internal/cmd"
)

// ErrAlreadyCloned is returned by Clone when the destination already holds a repository.
var ErrAlreadyCloned = errors.New("repository already present")

// ExtractRepoNameFromURL extracts the repository name from a git URL or path.
// Handles https, scp-like (git@host:org/repo.git) and local paths.
func ExtractRepoNameFromURL(url string) string {
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

// GetOriginURL gets the origin URL for a repository
func GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	output, err := git(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %v", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Clone clones url into dest. If dest already is a git repository it is left
// untouched and ErrAlreadyCloned is returned.
func Clone(ctx context.Context, url, dest string) error {
	if IsRepo(dest) {
		return fmt.Errorf("%s: %w", dest, ErrAlreadyCloned)
	}
	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return fmt.Errorf("clone %s: destination %s exists and is not empty", url, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	if err := cmd.RunContext(ctx, "", "git", "clone", "--quiet", url, dest); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

// FindAllRepos returns paths to all git repositories in basePath (direct children only)
func FindAllRepos(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", basePath, err)
	}

	var repos []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		repoPath := filepath.Join(basePath, entry.Name())
		if IsRepo(repoPath) {
			repos = append(repos, repoPath)
		}
	}

	return repos, nil
}
