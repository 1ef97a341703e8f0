package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

func TestInitRegistersProject(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	p, err := m.Init(ctx, t.TempDir(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.Name)
	assert.True(t, filepath.IsAbs(p.Path))

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestInitDuplicatePathRejected(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())
	dir := t.TempDir()

	_, err := m.Init(ctx, dir, "one")
	require.NoError(t, err)

	_, err = m.Init(ctx, dir, "two")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFirstProjectBecomesCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	_, err := m.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoProject)

	first, err := m.Init(ctx, t.TempDir(), "first")
	require.NoError(t, err)

	_, err = m.Init(ctx, t.TempDir(), "second")
	require.NoError(t, err)

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID, "second init must not steal the selection")
}

func TestUseSwitchesCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	_, err := m.Init(ctx, t.TempDir(), "a")
	require.NoError(t, err)
	b, err := m.Init(ctx, t.TempDir(), "b")
	require.NoError(t, err)

	require.NoError(t, m.Use(ctx, b.ID))
	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, current.ID)

	assert.ErrorIs(t, m.Use(ctx, "no-such-id"), domain.ErrProjectNotFound)
}

func TestRemoveDeletesProjectState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	m := NewProjectManager(store)

	p, err := m.Init(ctx, t.TempDir(), "doomed")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, blockIndexKey(p.ID), []string{"marker"}))
	require.NoError(t, store.Set(ctx, overallSummaryKey(p.ID), "all about it"))

	require.NoError(t, m.Remove(ctx, p.ID))

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var sink any
	assert.ErrorIs(t, driven.GetAs(ctx, store, blockIndexKey(p.ID), &sink), domain.ErrNotFound)
	assert.ErrorIs(t, driven.GetAs(ctx, store, overallSummaryKey(p.ID), &sink), domain.ErrNotFound)
}

func TestRemoveCurrentPromotesNext(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	a, err := m.Init(ctx, t.TempDir(), "a")
	require.NoError(t, err)
	b, err := m.Init(ctx, t.TempDir(), "b")
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, a.ID))

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, current.ID)
}

func TestRemoveLastClearsCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	p, err := m.Init(ctx, t.TempDir(), "only")
	require.NoError(t, err)
	require.NoError(t, m.Remove(ctx, p.ID))

	_, err = m.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoProject)
}

func TestGetUnknownProject(t *testing.T) {
	ctx := context.Background()
	m := NewProjectManager(memory.NewStateStore())

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
