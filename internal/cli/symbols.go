package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bob/config"
	"bob/internal/adapter/store"
	"bob/internal/usecase"
)

var (
	symbolsQuery string
	symbolsLimit int
	symbolsJSON  bool
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Search analyzed classes and functions by name",
	Long: `Search the stored analysis for classes, methods and functions whose name
resembles the query. Names containing the query are listed first, then fuzzy
matches ranked by Jaro-Winkler similarity.

Examples:
  bob symbols -q parse
  bob symbols -q Greeter -n 5 --json`,
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().StringVarP(&symbolsQuery, "query", "q", "", "symbol name to search for (required)")
	symbolsCmd.Flags().IntVarP(&symbolsLimit, "limit", "n", 20, "maximum number of results")
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "output as JSON")
	symbolsCmd.MarkFlagRequired("query")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	dbPath := config.StoreDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no analysis found. Run 'bob scan' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open analysis store: %w", err)
	}
	defer st.Close()

	results, err := usecase.NewSymbolSearch(st).Search(symbolsQuery, symbolsLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if symbolsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No matching symbols.")
		return nil
	}

	for _, r := range results {
		name := r.Symbol.Name
		if r.Symbol.Parent != "" {
			name = r.Symbol.Parent + "." + name
		}
		if r.Symbol.Kind != "class" {
			name = formatSignature(name, r.Symbol.Parameters, r.Symbol.ReturnType)
		}
		fmt.Fprintf(out, "%.3f  %-8s %s\n       %s (%s)\n", r.Score, r.Symbol.Kind, name, r.Path, r.Symbol.Lang)
	}
	return nil
}
