package usecase

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bob/config"
	"bob/internal/adapter/analyzer"
	"bob/internal/adapter/fs"
	"bob/internal/adapter/store"
	"bob/internal/domain"
	"bob/internal/logging"
)

const greeterPy = `import os

class Greeter:
    def greet(self, name):
        return "hi"

def main():
    return 0
`

const brokenJava = `public class Broken {
    private void run() {
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openStore(t *testing.T) *store.BoltStore {
	t.Helper()
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newScan(st *store.BoltStore, opts ScanOptions) *ScanUseCase {
	walker := fs.NewWalker(config.DefaultIncludes, []string{"**/.bob/**"})
	return NewScanUseCase(st, walker, fs.Reader{}, analyzer.New(), opts)
}

func TestScan_AnalyzesAndCounts(t *testing.T) {
	root := t.TempDir()
	appPath := writeFile(t, root, "app.py", greeterPy)
	writeFile(t, root, "src/Broken.java", brokenJava)
	writeFile(t, root, "README.md", "# readme")

	st := openStore(t)
	scan := newScan(st, ScanOptions{Workers: 2})

	var calls int
	result, err := scan.Scan(context.Background(), root, func(processed, total int, _ string) {
		calls++
		assert.Equal(t, 2, total)
		assert.LessOrEqual(t, processed, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.FilesAnalyzed)
	assert.Equal(t, 0, result.FilesSkipped)
	assert.Equal(t, 1, result.FilesIncomplete)
	assert.Equal(t, 3, result.Functions)
	assert.Equal(t, 1, result.Classes)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Broken.java")

	doc, err := st.GetDocByPath(appPath)
	require.NoError(t, err)
	assert.Equal(t, domain.LangPython, doc.Lang)
	assert.True(t, doc.Complete)

	structure, err := st.GetStructure(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"os"}, structure.Imports)
	require.Len(t, structure.Classes, 1)
	assert.Equal(t, "Greeter", structure.Classes[0].Name)

	broken, err := st.GetDocByPath(filepath.Join(root, "src", "Broken.java"))
	require.NoError(t, err)
	assert.Equal(t, domain.LangJava, broken.Lang)
	assert.False(t, broken.Complete)

	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalDocs: 2, TotalFunctions: 3, TotalClasses: 1, Incomplete: 1}, stats)
}

func TestScan_Incremental(t *testing.T) {
	root := t.TempDir()
	appPath := writeFile(t, root, "app.py", greeterPy)
	writeFile(t, root, "lib.py", "def helper(x):\n    return [x]\n")

	st := openStore(t)
	scan := newScan(st, ScanOptions{Workers: 4})

	_, err := scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)

	// Nothing changed.
	result, err := scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesAnalyzed)
	assert.Equal(t, 2, result.FilesSkipped)
	assert.Equal(t, 3, result.Functions)

	// Touched but identical.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(appPath, later, later))
	result, err = scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesAnalyzed)
	assert.Equal(t, 2, result.FilesSkipped)

	// Changed content.
	writeFile(t, root, "app.py", "def only():\n    return True\n")
	evenLater := later.Add(time.Hour)
	require.NoError(t, os.Chtimes(appPath, evenLater, evenLater))
	result, err = scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, 2, result.Functions)

	// Deleted.
	require.NoError(t, os.Remove(appPath))
	result, err = scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesDeleted)

	docs, err := st.ListDocs()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(root, "lib.py"), docs[0].Path)
}

func TestScan_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", greeterPy)
	writeFile(t, root, "small.py", "def f():\n    pass\n")

	st := openStore(t)
	scan := newScan(st, ScanOptions{MaxFileBytes: 32})

	result, err := scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesAnalyzed)
	assert.Equal(t, 1, result.FilesSkipped)

	_, err = st.GetDocByPath(filepath.Join(root, "big.py"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScan_ExtensionHint(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "util.rb", "def hello(name)\n  puts name\nend\n")

	detected := openStore(t)
	_, err := newScan(detected, ScanOptions{}).Scan(context.Background(), root, nil)
	require.NoError(t, err)
	doc, err := detected.GetDocByPath(path)
	require.NoError(t, err)
	assert.Equal(t, domain.LangPython, doc.Lang)

	hinted := openStore(t)
	_, err = newScan(hinted, ScanOptions{ExtensionHint: true}).Scan(context.Background(), root, nil)
	require.NoError(t, err)
	doc, err = hinted.GetDocByPath(path)
	require.NoError(t, err)
	assert.Equal(t, domain.LangRuby, doc.Lang)
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", greeterPy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScan(openStore(t), ScanOptions{}).Scan(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFileAndRemoveFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "Broken.java", brokenJava)
	st := openStore(t)
	scan := newScan(st, ScanOptions{})

	structure, err := scan.AnalyzeFile(path)
	assert.ErrorIs(t, err, analyzer.ErrUnbalancedBlock)
	assert.Equal(t, domain.LangJava, structure.Language)
	assert.Empty(t, structure.Classes)

	doc, err := st.GetDocByPath(path)
	require.NoError(t, err)
	assert.False(t, doc.Complete)

	require.NoError(t, scan.RemoveFile(path))
	_, err = st.GetDocByPath(path)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Removing an unknown path is not an error.
	assert.NoError(t, scan.RemoveFile(filepath.Join(root, "nope.py")))
}

func TestScan_LeavesOtherRootsAlone(t *testing.T) {
	parent := t.TempDir()
	first := filepath.Join(parent, "first")
	second := filepath.Join(parent, "second")
	writeFile(t, first, "a.py", greeterPy)
	writeFile(t, second, "b.py", "def b():\n    return 1\n")

	st := openStore(t)
	scan := newScan(st, ScanOptions{})

	_, err := scan.Scan(context.Background(), first, nil)
	require.NoError(t, err)
	result, err := scan.Scan(context.Background(), second, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesDeleted)

	docs, err := st.ListDocs()
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDocs)
	assert.Equal(t, 3, stats.TotalFunctions)
}

func TestScan_FileLogsStayQuietUnderProgress(t *testing.T) {
	prev := log.Logger
	defer func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()

	var buf bytes.Buffer
	logging.SetupWriter(&buf, "info", "json")

	root := t.TempDir()
	writeFile(t, root, "app.py", greeterPy)
	scan := newScan(openStore(t), ScanOptions{})

	_, err := scan.Scan(context.Background(), root, func(int, int, string) {})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Analyzed")

	other := t.TempDir()
	path := writeFile(t, other, "other.py", greeterPy)
	_, err = scan.Scan(context.Background(), other, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Analyzed "+path)
}
