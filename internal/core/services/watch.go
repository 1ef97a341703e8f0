package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.WatchService = (*Watcher)(nil)

// defaultDebounce collapses a burst of file events into one reindex.
const defaultDebounce = 500 * time.Millisecond

// ignoredDirs are never watched. Matches the walker's default excludes.
var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
}

// Watcher re-indexes a project when its files change. Events are
// debounced so one save producing several writes triggers one run.
type Watcher struct {
	projects *ProjectManager
	indexer  driving.IndexService
	debounce time.Duration
}

// NewWatcher creates a new watch service.
func NewWatcher(projects *ProjectManager, indexer driving.IndexService) *Watcher {
	return &Watcher{
		projects: projects,
		indexer:  indexer,
		debounce: defaultDebounce,
	}
}

// Watch blocks until ctx is cancelled, re-running the indexer after each
// debounced burst of file events under the project root.
func (w *Watcher) Watch(ctx context.Context, projectID string, opts driving.IndexOptions) error {
	project, err := w.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, project.Path); err != nil {
		return err
	}
	logger.Info("Watching %s for changes", project.Path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			logger.Debug("Change: %s (%s)", event.Name, event.Op)

			// New directories must be watched too.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !ignoredDirs[filepath.Base(event.Name)] {
						_ = addRecursive(watcher, event.Name)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			logger.Info("Changes settled, reindexing")
			if _, err := w.indexer.IndexProject(ctx, projectID, opts); err != nil {
				logger.Warn("Reindex failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// relevantEvent filters out chmod-only noise.
func relevantEvent(e fsnotify.Event) bool {
	return e.Op.Has(fsnotify.Create) || e.Op.Has(fsnotify.Write) ||
		e.Op.Has(fsnotify.Remove) || e.Op.Has(fsnotify.Rename)
}

// addRecursive watches root and every non-ignored directory below it.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}
