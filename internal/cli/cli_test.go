package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bob/internal/adapter/analyzer"
	"bob/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	analyzeLang, analyzeJSON, detectScores = "", false, false
	symbolsQuery, symbolsLimit, symbolsJSON = "", 20, false
	scanQuiet = false

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_JSONFromStdin(t *testing.T) {
	dir := t.TempDir()
	code := "import os\n\ndef add(a, b) -> int:\n    return a + b\n"

	out, err := execute(t, code, "analyze", "--dir", dir, "--json", "-")
	require.NoError(t, err)

	var structure domain.CodeStructure
	require.NoError(t, json.Unmarshal([]byte(out), &structure))
	assert.Equal(t, domain.LangPython, structure.Language)
	assert.Equal(t, []string{"os"}, structure.Imports)
	require.Len(t, structure.Functions, 1)
	assert.Equal(t, "int", structure.Functions[0].ReturnType)
	assert.NotNil(t, structure.Classes)
}

func TestAnalyzeCommand_UnbalancedPrintsPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Broken.java")
	require.NoError(t, os.WriteFile(path, []byte("public class Broken {\n    private void run() {\n"), 0644))

	out, err := execute(t, "", "analyze", "--dir", dir, path)
	assert.ErrorIs(t, err, analyzer.ErrUnbalancedBlock)
	assert.Contains(t, out, "Language: java")
	assert.Contains(t, out, "run()")
}

func TestAnalyzeCommand_ExplicitLanguage(t *testing.T) {
	out, err := execute(t, "def f(x):\n    return 'x'\n", "analyze", "--dir", t.TempDir(), "--lang", "py")
	assert.Error(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "int main(int argc) {}", "analyze", "--dir", t.TempDir(), "--lang", "c++")
	require.NoError(t, err)
	assert.Contains(t, out, "Language: cpp")
	assert.Contains(t, out, "main(int argc)\n")
}

func TestDetectCommand(t *testing.T) {
	out, err := execute(t, "use std::io;\nfn main() {\n    let mut x = 1;\n}", "detect", "--dir", t.TempDir(), "--scores")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "rust", lines[0])
	assert.Contains(t, out, "python")
}

func TestScanThenSymbols(t *testing.T) {
	dir := t.TempDir()
	src := "class Greeter:\n    def greet(self, name):\n        return 'hi'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeter.py"), []byte(src), 0644))

	_, err := execute(t, "", "scan", "--dir", dir, "--quiet", "--log-level", "error")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".bob", "analysis.db"))
	require.NoError(t, err)

	out, err := execute(t, "", "symbols", "--dir", dir, "-q", "greet", "--json")
	require.NoError(t, err)

	var results []domain.ScoredSymbol
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "greet", results[0].Symbol.Name)
	assert.Equal(t, "str", results[0].Symbol.ReturnType)
	assert.Equal(t, filepath.Join(dir, "greeter.py"), results[0].Path)
}

func TestSymbolsCommand_NoAnalysis(t *testing.T) {
	_, err := execute(t, "", "symbols", "--dir", t.TempDir(), "-q", "x")
	assert.Error(t, err)
}

func TestFormatSignature(t *testing.T) {
	assert.Equal(t, "f(a, b)", formatSignature("f", []string{"a", "b"}, "unknown"))
	assert.Equal(t, "g() -> str", formatSignature("g", nil, "str"))
}
