package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bob/internal/adapter/analyzer"
	"bob/internal/adapter/store"
	"bob/internal/domain"
	"bob/internal/port"
)

// ScanOptions tunes a ScanUseCase.
type ScanOptions struct {
	Workers       int
	MaxFileBytes  int64
	ExtensionHint bool // pass the extension's language instead of detecting
}

// ProgressFunc is called after each file with the number processed so far.
type ProgressFunc func(processed, total int, currentFile string)

// ScanUseCase analyzes every source file under a directory and keeps the
// results in an AnalysisStore.
type ScanUseCase struct {
	store    port.AnalysisStore
	walker   port.FileWalker
	reader   port.FileReader
	analyzer port.CodeAnalyzer
	opts     ScanOptions
}

func NewScanUseCase(
	store port.AnalysisStore,
	walker port.FileWalker,
	reader port.FileReader,
	analyzer port.CodeAnalyzer,
	opts ScanOptions,
) *ScanUseCase {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &ScanUseCase{
		store:    store,
		walker:   walker,
		reader:   reader,
		analyzer: analyzer,
		opts:     opts,
	}
}

// ScanResult contains the results of a scan.
type ScanResult struct {
	FilesAnalyzed   int
	FilesSkipped    int
	FilesDeleted    int
	FilesIncomplete int
	Functions       int
	Classes         int
	Errors          []string
}

type fileOutcome int

const (
	outcomeAnalyzed fileOutcome = iota
	outcomeUnchanged
	outcomeTooLarge
)

type fileReport struct {
	outcome   fileOutcome
	functions int
	classes   int
	complete  bool
	warning   error
}

// Scan analyzes the files under root. Files whose modification time and
// content hash match the stored document are not analyzed again, and
// documents whose files disappeared are removed. Per-file failures are
// collected in ScanResult.Errors; the returned error is reserved for walk,
// store and cancellation failures.
func (u *ScanUseCase) Scan(ctx context.Context, root string, progress ProgressFunc) (*ScanResult, error) {
	result := &ScanResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	// Documents from other roots share the store and are left alone.
	existingMap := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		if within(absRoot, doc.Path) {
			existingMap[doc.Path] = doc
		}
	}

	var (
		mu        sync.Mutex
		seen      = make(map[string]bool, len(files))
		processed int
	)

	// Per-file lines would tear through a progress bar.
	fileLevel := zerolog.InfoLevel
	if progress != nil {
		fileLevel = zerolog.DebugLevel
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Workers)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var existing *domain.Document
			if doc, ok := existingMap[file.Path]; ok {
				existing = &doc
			}

			report, err := u.processFile(file, existing, fileLevel)

			mu.Lock()
			defer mu.Unlock()

			processed++
			if progress != nil {
				progress(processed, len(files), file.RelPath)
			}

			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to analyze %s: %v", file.Path, err))
				if existing != nil {
					// Keep the previous analysis rather than dropping the document.
					seen[file.Path] = true
				}
				return nil
			}

			switch report.outcome {
			case outcomeTooLarge:
				result.FilesSkipped++
				return nil
			case outcomeUnchanged:
				result.FilesSkipped++
			case outcomeAnalyzed:
				result.FilesAnalyzed++
			}
			seen[file.Path] = true
			result.Functions += report.functions
			result.Classes += report.classes
			if !report.complete {
				result.FilesIncomplete++
			}
			if report.warning != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, report.warning))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for path, doc := range existingMap {
		if seen[path] {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	if err := u.RefreshStats(); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	return result, nil
}

// RefreshStats recomputes the store totals over every stored document.
func (u *ScanUseCase) RefreshStats() error {
	docs, err := u.store.ListDocs()
	if err != nil {
		return err
	}

	stats := domain.Stats{TotalDocs: len(docs)}
	for _, doc := range docs {
		if !doc.Complete {
			stats.Incomplete++
		}
		structure, err := u.store.GetStructure(doc.ID)
		if err != nil {
			continue
		}
		stats.TotalFunctions += len(structure.Functions)
		stats.TotalClasses += len(structure.Classes)
	}
	return u.store.UpdateStats(stats)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AnalyzeFile analyzes a single file and stores the result, regardless of
// whether it changed since the last scan. An unbalanced class body is
// returned as an error alongside the stored partial structure.
func (u *ScanUseCase) AnalyzeFile(path string) (domain.CodeStructure, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.CodeStructure{}, err
	}
	file := port.FileInfo{
		Path:    path,
		RelPath: filepath.Base(path),
		Ext:     filepath.Ext(path),
		ModTime: info.ModTime().Unix(),
		Size:    info.Size(),
	}
	if u.tooLarge(file.Size) {
		return domain.CodeStructure{}, fmt.Errorf("%s exceeds %d bytes", path, u.opts.MaxFileBytes)
	}

	content, err := u.reader.ReadFile(path)
	if err != nil {
		return domain.CodeStructure{}, fmt.Errorf("failed to read file: %w", err)
	}
	res, err := u.analyzeAndStore(file, content, zerolog.InfoLevel)
	if err != nil {
		return domain.CodeStructure{}, err
	}
	return res.structure, res.warning
}

// RemoveFile drops the stored document for path, if any.
func (u *ScanUseCase) RemoveFile(path string) error {
	doc, err := u.store.GetDocByPath(path)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return u.store.DeleteDoc(doc.ID)
}

// RemoveTree drops every stored document under dir and returns how many
// were removed.
func (u *ScanUseCase) RemoveTree(dir string) (int, error) {
	docs, err := u.store.ListDocs()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, doc := range docs {
		if !within(dir, doc.Path) {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", doc.Path, err)
		}
		removed++
	}
	return removed, nil
}

func (u *ScanUseCase) processFile(file port.FileInfo, existing *domain.Document, level zerolog.Level) (fileReport, error) {
	if u.tooLarge(file.Size) {
		log.Debug().Str("path", file.Path).Int64("size", file.Size).Msg("skipping oversized file")
		return fileReport{outcome: outcomeTooLarge}, nil
	}

	if existing != nil && existing.ModTime.Unix() >= file.ModTime && existing.Size == file.Size {
		return u.unchanged(*existing)
	}

	content, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to read file: %w", err)
	}

	// A touched file with identical content keeps its stored structure.
	if existing != nil && existing.Hash == xxhash.Sum64String(content) {
		structure, err := u.store.GetStructure(existing.ID)
		if err == nil {
			doc := *existing
			doc.ModTime = time.Unix(file.ModTime, 0)
			if err := u.store.PutAnalysis(doc, structure); err != nil {
				return fileReport{}, err
			}
			return fileReport{
				outcome:   outcomeUnchanged,
				functions: len(structure.Functions),
				classes:   len(structure.Classes),
				complete:  doc.Complete,
			}, nil
		}
	}

	res, err := u.analyzeAndStore(file, content, level)
	if err != nil {
		return fileReport{}, err
	}
	return fileReport{
		outcome:   outcomeAnalyzed,
		functions: len(res.structure.Functions),
		classes:   len(res.structure.Classes),
		complete:  res.warning == nil,
		warning:   res.warning,
	}, nil
}

func (u *ScanUseCase) unchanged(doc domain.Document) (fileReport, error) {
	structure, err := u.store.GetStructure(doc.ID)
	if err != nil {
		return fileReport{}, fmt.Errorf("failed to load stored structure: %w", err)
	}
	return fileReport{
		outcome:   outcomeUnchanged,
		functions: len(structure.Functions),
		classes:   len(structure.Classes),
		complete:  doc.Complete,
	}, nil
}

type analysis struct {
	structure domain.CodeStructure
	warning   error
}

// analyzeAndStore reports an unbalanced class body as a warning. The
// partial structure is still stored and marked incomplete.
func (u *ScanUseCase) analyzeAndStore(file port.FileInfo, content string, level zerolog.Level) (analysis, error) {
	var hint domain.Language
	if u.opts.ExtensionHint {
		if lang := analyzer.LanguageForPath(file.Path); lang != domain.LangUnknown {
			hint = lang
		}
	}

	structure, err := u.analyzer.Analyze(content, hint)
	var warning error
	if err != nil {
		if !errors.Is(err, analyzer.ErrUnbalancedBlock) {
			return analysis{}, err
		}
		warning = err
		log.Warn().Err(err).Str("path", file.Path).Str("lang", string(structure.Language)).Msg("class body not terminated")
	}

	doc := domain.Document{
		ID:       store.DocID(file.Path),
		Path:     file.Path,
		ModTime:  time.Unix(file.ModTime, 0),
		Lang:     structure.Language,
		Hash:     xxhash.Sum64String(content),
		Size:     file.Size,
		Complete: warning == nil,
	}
	if err := u.store.PutAnalysis(doc, structure); err != nil {
		return analysis{}, fmt.Errorf("failed to store analysis: %w", err)
	}

	log.WithLevel(level).Msgf("Analyzed %s: %d functions, %d classes", file.Path, len(structure.Functions), len(structure.Classes))
	return analysis{structure: structure, warning: warning}, nil
}

func (u *ScanUseCase) tooLarge(size int64) bool {
	return u.opts.MaxFileBytes > 0 && size > u.opts.MaxFileBytes
}
