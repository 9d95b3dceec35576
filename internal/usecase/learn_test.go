package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloner struct {
	path string
	err  error
	urls []string
}

func (f *fakeCloner) Clone(_ context.Context, repoURL string) (string, error) {
	f.urls = append(f.urls, repoURL)
	return f.path, f.err
}

func TestLearn_ScansCheckout(t *testing.T) {
	checkout := t.TempDir()
	writeFile(t, checkout, "app.py", greeterPy)
	writeFile(t, checkout, "pkg/Broken.java", brokenJava)

	cloner := &fakeCloner{path: checkout}
	learn := NewLearnUseCase(cloner, newScan(openStore(t), ScanOptions{Workers: 2}))

	result, err := learn.Learn(context.Background(), "https://github.com/owner/repo.git", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://github.com/owner/repo.git"}, cloner.urls)
	assert.Equal(t, checkout, result.RepoPath)
	assert.Equal(t, 2, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesIncomplete)
	assert.Equal(t, 1, result.Classes)
}

func TestLearn_CloneFailure(t *testing.T) {
	boom := errors.New("network down")
	learn := NewLearnUseCase(&fakeCloner{err: boom}, newScan(openStore(t), ScanOptions{}))

	_, err := learn.Learn(context.Background(), "https://github.com/owner/repo.git", nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "owner/repo")
}
