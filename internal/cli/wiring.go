package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"bob/config"
	"bob/internal/adapter/analyzer"
	"bob/internal/adapter/cache"
	"bob/internal/adapter/fs"
	"bob/internal/adapter/store"
	"bob/internal/usecase"
)

// openStore opens the analysis database under dir, migrating or clearing
// it when the schema or the analysis configuration changed.
func openStore(dir string, cfg *config.Config) (*store.BoltStore, error) {
	if err := config.EnsureBobDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .bob directory: %w", err)
	}

	dbPath := config.StoreDBPath(dir)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analysis store: %w", err)
	}

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check migration: %w", err)
	}

	if migrationResult.NeedsRebuild {
		log.Warn().Str("reason", migrationResult.Reason).Msg("clearing stored analysis")
		if err := st.Clear(); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to clear store: %w", err)
		}
	}
	if migrationResult.NeedsMigration || migrationResult.NeedsRebuild {
		log.Debug().Str("reason", migrationResult.Reason).Msg("running schema migration")
		if err := st.Migrate(cfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return st, nil
}

func newWalker(cfg *config.Config) *fs.Walker {
	return fs.NewWalker(cfg.Scan.Includes, cfg.Scan.Excludes)
}

func newScanUseCase(st *store.BoltStore, cfg *config.Config) (*usecase.ScanUseCase, error) {
	analysisCache, err := cache.NewAnalysisCache(cfg.Scan.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}

	return usecase.NewScanUseCase(
		st,
		newWalker(cfg),
		fs.Reader{},
		cache.NewCachedAnalyzer(analyzer.New(), analysisCache),
		usecase.ScanOptions{
			Workers:       cfg.Scan.Workers,
			MaxFileBytes:  cfg.Scan.MaxFileBytes,
			ExtensionHint: cfg.Scan.ExtensionHint,
		},
	), nil
}

// newProgress returns a progress callback that draws a bar once the total
// file count is known.
func newProgress(label string) usecase.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", label, formatDuration(eta)))
			}
		}
	}
}

func printScanResult(result *usecase.ScanResult, dbPath string) {
	fmt.Printf("\nScan complete:\n")
	fmt.Printf("  Files analyzed:   %d\n", result.FilesAnalyzed)
	fmt.Printf("  Files skipped:    %d (unchanged or too large)\n", result.FilesSkipped)
	fmt.Printf("  Files deleted:    %d (removed)\n", result.FilesDeleted)
	fmt.Printf("  Files incomplete: %d\n", result.FilesIncomplete)
	fmt.Printf("  Functions:        %d\n", result.Functions)
	fmt.Printf("  Classes:          %d\n", result.Classes)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nAnalysis stored at: %s\n", dbPath)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
