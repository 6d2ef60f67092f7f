package git

import (
	"context"
	"errors"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// CloneResult is the outcome of cloning one URL.
type CloneResult struct {
	URL  string
	Path string
	// Existing is set when the destination was already a repository.
	Existing bool
	// Origin is the existing repository's origin URL, if it has one.
	Origin string
	Err    error
}

// CloneAll clones every URL into dir/<repo-name> with at most workers clones
// in flight. Results keep input order. Failures are per URL and never stop
// the remaining clones; already present repositories are reported as Existing.
func CloneAll(ctx context.Context, urls []string, dir string, workers int) []CloneResult {
	results := make([]CloneResult, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1)) // Bound concurrent git operations

	for i, url := range urls {
		g.Go(func() error {
			dest := filepath.Join(dir, ExtractRepoNameFromURL(url))
			err := Clone(ctx, url, dest)
			results[i] = CloneResult{
				URL:      url,
				Path:     dest,
				Existing: errors.Is(err, ErrAlreadyCloned),
			}
			switch {
			case results[i].Existing:
				results[i].Origin, _ = GetOriginURL(ctx, dest)
			case err != nil:
				results[i].Err = err
			}
			return nil // Never fail: errors are per URL
		})
	}

	_ = g.Wait() // Always nil: goroutines collect errors in results
	return results
}
