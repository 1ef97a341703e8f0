package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

func newStore(t *testing.T) (*StateStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStateStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Set(ctx, "projects", []string{"a", "b"}))

	var got []string
	require.NoError(t, driven.GetAs(ctx, s, "projects", &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Get(context.Background(), "nope.deeper")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDottedPathsNest(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Set(ctx, "summaries.p1.overall", "the whole story"))
	require.NoError(t, s.Set(ctx, "summaries.p1.files", 3))

	var overall string
	require.NoError(t, driven.GetAs(ctx, s, "summaries.p1.overall", &overall))
	assert.Equal(t, "the whole story", overall)

	// The intermediate node is addressable as a subtree.
	var subtree map[string]any
	require.NoError(t, driven.GetAs(ctx, s, "summaries.p1", &subtree))
	assert.Len(t, subtree, 2)
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Set(ctx, "current-project", "one"))
	require.NoError(t, s.Set(ctx, "current-project", "two"))

	var got string
	require.NoError(t, driven.GetAs(ctx, s, "current-project", &got))
	assert.Equal(t, "two", got)
}

func TestDeleteSubtree(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Set(ctx, "block-indexes.p1", []int{1}))
	require.NoError(t, s.Set(ctx, "block-indexes.p2", []int{2}))
	require.NoError(t, s.Delete(ctx, "block-indexes.p1"))

	_, err := s.Get(ctx, "block-indexes.p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var kept []int
	require.NoError(t, driven.GetAs(ctx, s, "block-indexes.p2", &kept))
	assert.Equal(t, []int{2}, kept)
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	s, _ := newStore(t)
	assert.NoError(t, s.Delete(context.Background(), "never.existed"))
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	require.NoError(t, s.Set(ctx, "projects", map[string]string{"id": "p1"}))
	require.NoError(t, s.Close())

	reloaded, err := NewStateStore(dir)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, driven.GetAs(ctx, reloaded, "projects", &got))
	assert.Equal(t, "p1", got["id"])
}

func TestNoStrayTempFiles(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	require.NoError(t, s.Set(ctx, "k", "v"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
	assert.Equal(t, filepath.Join(dir, "state.json"), s.Path())
}
