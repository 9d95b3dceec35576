package port

import "context"

// RepoCloner fetches a remote repository into a local directory.
type RepoCloner interface {
	// Clone returns the local checkout path. An existing checkout is reused.
	Clone(ctx context.Context, repoURL string) (string, error)
}
