package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/parsers"
	"github.com/quarry-dev/quarry/internal/parsers/plaintext"
)

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"create", fsnotify.Create, true},
		{"write", fsnotify.Write, true},
		{"remove", fsnotify.Remove, true},
		{"rename", fsnotify.Rename, true},
		{"chmod only", fsnotify.Chmod, false},
		{"write and chmod", fsnotify.Write | fsnotify.Chmod, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relevantEvent(fsnotify.Event{Name: "f.go", Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddRecursiveSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src", filepath.Join("src", "inner"), "node_modules", filepath.Join(".git", "objects")} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addRecursive(watcher, root))

	watched := watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "src"))
	assert.Contains(t, watched, filepath.Join(root, "src", "inner"))
	for _, p := range watched {
		assert.NotContains(t, p, "node_modules")
		assert.NotContains(t, p, ".git")
	}
}

func TestWatchUnknownProject(t *testing.T) {
	store := memory.NewStateStore()
	projects := NewProjectManager(store)
	indexer := NewBlockIndexer(projects, listWalker{}, parsers.NewRegistry(), plaintext.New(), nil, store)
	watcher := NewWatcher(projects, indexer)

	err := watcher.Watch(context.Background(), "nope", driving.IndexOptions{})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
