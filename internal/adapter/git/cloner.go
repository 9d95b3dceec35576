package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog/log"
)

// Cloner fetches repositories into a base directory with go-git.
type Cloner struct {
	baseDir string
	token   string
	depth   int
}

func NewCloner(baseDir, token string, depth int) *Cloner {
	return &Cloner{
		baseDir: baseDir,
		token:   token,
		depth:   depth,
	}
}

// RepoName is the last path segment of a repository URL without ".git".
func RepoName(repoURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(repoURL), "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// Clone checks the repository out under baseDir/<name>. A directory that
// already exists is reused as-is without fetching.
func (c *Cloner) Clone(ctx context.Context, repoURL string) (string, error) {
	name := RepoName(repoURL)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("cannot derive repository name from %q", repoURL)
	}
	repoDir := filepath.Join(c.baseDir, name)

	if _, err := os.Stat(repoDir); err == nil {
		log.Debug().Str("path", repoDir).Msg("reusing existing checkout")
		return repoDir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", repoDir, err)
	}

	if err := os.MkdirAll(c.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	log.Info().
		Str("url", repoURL).
		Str("path", repoDir).
		Msg("cloning repository")

	cloneOpts := &git.CloneOptions{
		URL:   repoURL,
		Depth: c.depth,
	}
	if c.token != "" {
		cloneOpts.Auth = &http.BasicAuth{
			Username: "git",
			Password: c.token,
		}
	}

	repo, err := git.PlainCloneContext(ctx, repoDir, false, cloneOpts)
	if err != nil {
		// Leave nothing behind, otherwise the next run would reuse a broken checkout.
		_ = os.RemoveAll(repoDir)
		return "", fmt.Errorf("failed to clone: %w", err)
	}

	if head, err := repo.Head(); err == nil {
		log.Info().
			Str("commit", head.Hash().String()[:8]).
			Str("branch", head.Name().Short()).
			Msg("clone complete")
	}

	return repoDir, nil
}
