package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bob/config"
	"bob/internal/domain"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleStructure() domain.CodeStructure {
	return domain.CodeStructure{
		Language: domain.LangPython,
		Imports:  []string{"os"},
		Classes: []domain.ClassSpec{{
			Name: "Greeter",
			Methods: []domain.FunctionSignature{
				{Name: "greet", Parameters: []string{"self", "name"}, ReturnType: "str"},
			},
		}},
		Functions: []domain.FunctionSignature{
			{Name: "greet", Parameters: []string{"self", "name"}, ReturnType: "str"},
			{Name: "main", Parameters: []string{}, ReturnType: "int"},
		},
		Variables:    []string{},
		Dependencies: []string{},
	}
}

func TestPutAnalysis_RoundTrip(t *testing.T) {
	st := openTestStore(t)

	doc := domain.Document{
		ID:       DocID("/repo/app.py"),
		Path:     "/repo/app.py",
		ModTime:  time.Unix(1700000000, 0),
		Lang:     domain.LangPython,
		Hash:     42,
		Size:     120,
		Complete: true,
	}
	require.NoError(t, st.PutAnalysis(doc, sampleStructure()))

	got, err := st.GetDoc(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	byPath, err := st.GetDocByPath("/repo/app.py")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byPath.ID)

	structure, err := st.GetStructure(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleStructure(), structure)

	symbols, err := st.GetSymbolsByDoc(doc.ID)
	require.NoError(t, err)
	require.Len(t, symbols, 4)
	assert.Equal(t, "class", symbols[0].Kind)
	assert.Equal(t, "method", symbols[1].Kind)
	assert.Equal(t, "Greeter", symbols[1].Parent)
	assert.Equal(t, "function", symbols[2].Kind)
	assert.Equal(t, "main", symbols[3].Name)
	assert.Equal(t, "int", symbols[3].ReturnType)
}

func TestPutAnalysis_ReplacesSymbols(t *testing.T) {
	st := openTestStore(t)
	doc := domain.Document{ID: DocID("/a.py"), Path: "/a.py", ModTime: time.Now()}

	require.NoError(t, st.PutAnalysis(doc, sampleStructure()))
	require.NoError(t, st.PutAnalysis(doc, domain.CodeStructure{
		Language:  domain.LangPython,
		Functions: []domain.FunctionSignature{{Name: "only"}},
	}))

	all, err := st.GetAllSymbols()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "only", all[0].Name)
}

func TestDeleteDoc(t *testing.T) {
	st := openTestStore(t)
	doc := domain.Document{ID: DocID("/b.py"), Path: "/b.py", ModTime: time.Now()}
	require.NoError(t, st.PutAnalysis(doc, sampleStructure()))

	require.NoError(t, st.DeleteDoc(doc.ID))

	_, err := st.GetDoc(doc.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.GetDocByPath("/b.py")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.GetStructure(doc.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := st.GetAllSymbols()
	require.NoError(t, err)
	assert.Empty(t, all)

	docs, err := st.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStats(t *testing.T) {
	st := openTestStore(t)

	empty, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, empty)

	stats := domain.Stats{TotalDocs: 3, TotalFunctions: 10, TotalClasses: 2, Incomplete: 1}
	require.NoError(t, st.UpdateStats(stats))
	got, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestDocID_Stable(t *testing.T) {
	assert.Equal(t, DocID("/x/y.go"), DocID("/x/y.go"))
	assert.NotEqual(t, DocID("/x/y.go"), DocID("/x/z.go"))
}

func TestMigration(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)

	require.NoError(t, st.Migrate(cfg))
	result, err = st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)

	cfg.Scan.ExtensionHint = true
	result, err = st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsRebuild)
	assert.Equal(t, "analysis configuration changed", result.Reason)
}

func TestClear_KeepsSchema(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, st.Migrate(cfg))

	for _, p := range []string{"/1.py", "/2.py", "/3.py"} {
		require.NoError(t, st.PutAnalysis(domain.Document{ID: DocID(p), Path: p, ModTime: time.Now()}, sampleStructure()))
	}
	require.NoError(t, st.UpdateStats(domain.Stats{TotalDocs: 3}))

	require.NoError(t, st.Clear())

	docs, err := st.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocs)

	info, err := st.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}
