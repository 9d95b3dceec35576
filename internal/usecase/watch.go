package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"bob/internal/adapter/analyzer"
	"bob/internal/adapter/fs"
)

type pendingChange struct {
	remove bool
	tree   bool // path was a directory, or anything else that is not a source file
	at     time.Time
}

// WatchUseCase re-analyzes files as they change. Bursts of events for the
// same path are collapsed into one update once the path has been quiet for
// the debounce interval.
type WatchUseCase struct {
	scan     *ScanUseCase
	walker   *fs.Walker
	debounce time.Duration

	root    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]pendingChange
}

func NewWatchUseCase(scan *ScanUseCase, walker *fs.Walker, debounce time.Duration) *WatchUseCase {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &WatchUseCase{
		scan:     scan,
		walker:   walker,
		debounce: debounce,
		pending:  make(map[string]pendingChange),
	}
}

// Run watches root until ctx is done. The ready callback, if set, is called
// once every directory is being watched.
func (u *WatchUseCase) Run(ctx context.Context, root string, ready func()) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	u.root = root
	u.watcher = watcher

	if err := u.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}
	log.Info().Str("root", root).Dur("debounce", u.debounce).Msg("watching for changes")
	if ready != nil {
		ready()
	}

	tick := u.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			u.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")

		case now := <-ticker.C:
			u.flush(now)
		}
	}
}

func (u *WatchUseCase) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && u.excludesDir(path) {
			return filepath.SkipDir
		}
		if err := u.watcher.Add(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to add watch")
		}
		return nil
	})
}

func (u *WatchUseCase) excludesDir(path string) bool {
	rel, err := filepath.Rel(u.root, path)
	if err != nil {
		return false
	}
	return u.walker.ExcludesDir(filepath.ToSlash(rel))
}

func (u *WatchUseCase) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		switch {
		case u.walker.Matches(u.root, path):
			u.enqueue(path, pendingChange{remove: true})
		case within(u.root, path) && path != u.root && !u.excludesDir(path):
			// The path is gone so it can't be stat'ed; treat it as a directory.
			u.enqueue(path, pendingChange{remove: true, tree: true})
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && u.watcher != nil && !u.excludesDir(path) {
			if err := u.addWatches(path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to watch new directory")
			}
		}
		return
	}
	if u.walker.Matches(u.root, path) {
		u.enqueue(path, pendingChange{})
	}
}

func (u *WatchUseCase) enqueue(path string, change pendingChange) {
	u.mu.Lock()
	defer u.mu.Unlock()
	change.at = time.Now()
	u.pending[path] = change
}

// flush applies every change that has been quiet for the debounce interval
// and returns how many were applied.
func (u *WatchUseCase) flush(now time.Time) int {
	u.mu.Lock()
	var due []string
	changes := make(map[string]pendingChange)
	for path, change := range u.pending {
		if now.Sub(change.at) >= u.debounce {
			due = append(due, path)
			changes[path] = change
			delete(u.pending, path)
		}
	}
	u.mu.Unlock()

	for _, path := range due {
		if changes[path].tree {
			n, err := u.scan.RemoveTree(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("failed to remove documents")
				continue
			}
			if n > 0 {
				log.Info().Str("path", path).Int("documents", n).Msg("removed directory")
			}
			continue
		}
		if changes[path].remove {
			if err := u.scan.RemoveFile(path); err != nil {
				log.Error().Err(err).Str("path", path).Msg("failed to remove document")
				continue
			}
			log.Info().Str("path", path).Msg("removed")
			continue
		}

		if _, err := u.scan.AnalyzeFile(path); err != nil {
			if errors.Is(err, analyzer.ErrUnbalancedBlock) {
				log.Warn().Err(err).Str("path", path).Msg("stored incomplete analysis")
				continue
			}
			if errors.Is(err, os.ErrNotExist) {
				// Deleted before the debounce expired.
				_ = u.scan.RemoveFile(path)
				continue
			}
			log.Error().Err(err).Msgf("Error analyzing %s", path)
		}
	}
	return len(due)
}

// Pending returns the number of paths waiting for their debounce to expire.
func (u *WatchUseCase) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}
