package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bob/internal/port"
)

// LearnUseCase clones a repository and scans the checkout.
type LearnUseCase struct {
	cloner port.RepoCloner
	scan   *ScanUseCase
}

func NewLearnUseCase(cloner port.RepoCloner, scan *ScanUseCase) *LearnUseCase {
	return &LearnUseCase{
		cloner: cloner,
		scan:   scan,
	}
}

// LearnResult is a scan of a cloned repository.
type LearnResult struct {
	RepoPath string
	*ScanResult
}

func (u *LearnUseCase) Learn(ctx context.Context, repoURL string, progress ProgressFunc) (*LearnResult, error) {
	repoPath, err := u.cloner.Clone(ctx, repoURL)
	if err != nil {
		return nil, fmt.Errorf("error processing repository %s: %w", repoURL, err)
	}

	result, err := u.scan.Scan(ctx, repoPath, progress)
	if err != nil {
		return nil, fmt.Errorf("error processing repository %s: %w", repoURL, err)
	}

	log.Info().
		Str("repo", repoURL).
		Int("files", result.FilesAnalyzed+result.FilesSkipped).
		Int("functions", result.Functions).
		Int("classes", result.Classes).
		Msg("repository learned")

	return &LearnResult{RepoPath: repoPath, ScanResult: result}, nil
}
