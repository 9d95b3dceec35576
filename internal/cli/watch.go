package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bob/internal/usecase"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep the analysis up to date while files change",
	Long: `Scan a directory, then re-analyze source files as they are written and
drop them from the store when they are removed. Stops on Ctrl-C.

Examples:
  bob watch .`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
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

	result, err := scanUC.Scan(cmd.Context(), path, nil)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	fmt.Printf("Initial scan: %d analyzed, %d unchanged, %d removed\n",
		result.FilesAnalyzed, result.FilesSkipped, result.FilesDeleted)

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	watchUC := usecase.NewWatchUseCase(scanUC, newWalker(cfg), debounce)

	if err := watchUC.Run(cmd.Context(), path, nil); err != nil {
		return err
	}
	return scanUC.RefreshStats()
}
