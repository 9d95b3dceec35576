package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bob/config"
	"bob/internal/usecase"
)

var scanQuiet bool

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze every source file in a directory",
	Long: `Analyze every source file in the specified directory and store the results.
The analysis is stored in .bob/analysis.db under the root directory. Files that
have not changed since the last scan are skipped.

Examples:
  bob scan .                 # Scan current directory
  bob scan /path/to/project  # Scan specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "hide the progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	st, err := openStore(GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	scanUC, err := newScanUseCase(st, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Scanning %s...\n", path)

	var progress usecase.ProgressFunc
	if !scanQuiet {
		progress = newProgress("Analyzing")
	}

	result, err := scanUC.Scan(cmd.Context(), path, progress)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printScanResult(result, config.StoreDBPath(GetRootDir()))
	return nil
}
