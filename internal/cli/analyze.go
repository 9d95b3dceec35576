package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bob/internal/adapter/analyzer"
	"bob/internal/domain"
)

var (
	analyzeLang string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Print the structure of one source file",
	Long: `Detect the language of a source file (or stdin) and print its imports,
classes and function signatures.

Examples:
  bob analyze main.py
  bob analyze Service.java --json
  cat util.js | bob analyze --lang javascript`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeLang, "lang", "l", "", "language to analyze as (default: detect)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output as JSON")
}

// readSource reads the file named by args, or stdin for "-" or no argument.
func readSource(cmd *cobra.Command, args []string) (code, path string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	code, path, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	var lang domain.Language
	switch {
	case analyzeLang != "":
		parsed, ok := analyzer.ParseLanguage(analyzeLang)
		if !ok {
			return fmt.Errorf("unsupported language: %s", analyzeLang)
		}
		lang = parsed
	case path != "" && GetConfig().Scan.ExtensionHint:
		if hinted := analyzer.LanguageForPath(path); hinted != domain.LangUnknown {
			lang = hinted
		}
	}

	structure, analyzeErr := analyzer.New().Analyze(code, lang)
	if analyzeErr != nil && !errors.Is(analyzeErr, analyzer.ErrUnbalancedBlock) {
		return analyzeErr
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(structure); err != nil {
			return err
		}
	} else {
		printStructure(out, structure)
	}

	if analyzeErr != nil {
		return fmt.Errorf("classes omitted: %w", analyzeErr)
	}
	return nil
}

func printStructure(w io.Writer, structure domain.CodeStructure) {
	fmt.Fprintf(w, "Language: %s\n", structure.Language)

	if len(structure.Imports) > 0 {
		fmt.Fprintf(w, "\nImports:\n")
		for _, imp := range structure.Imports {
			fmt.Fprintf(w, "  %s\n", imp)
		}
	}

	if len(structure.Classes) > 0 {
		fmt.Fprintf(w, "\nClasses:\n")
		for _, class := range structure.Classes {
			fmt.Fprintf(w, "  %s\n", class.Name)
			for _, m := range class.Methods {
				fmt.Fprintf(w, "    %s\n", formatSignature(m.Name, m.Parameters, m.ReturnType))
			}
		}
	}

	if len(structure.Functions) > 0 {
		fmt.Fprintf(w, "\nFunctions:\n")
		for _, fn := range structure.Functions {
			fmt.Fprintf(w, "  %s\n", formatSignature(fn.Name, fn.Parameters, fn.ReturnType))
		}
	}
}

func formatSignature(name string, params []string, returnType string) string {
	sig := fmt.Sprintf("%s(%s)", name, strings.Join(params, ", "))
	if returnType != "" && returnType != domain.UnknownReturnType {
		sig += " -> " + returnType
	}
	return sig
}
