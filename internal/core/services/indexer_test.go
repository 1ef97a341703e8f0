package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/parsers"
	"github.com/quarry-dev/quarry/internal/parsers/plaintext"
)

// listWalker returns a fixed file list regardless of the filesystem.
type listWalker struct {
	files []string
}

func (w listWalker) Walk(context.Context, string, []string, []string) ([]string, error) {
	return w.files, nil
}

// fakeLLM records calls and answers deterministically.
type fakeLLM struct {
	pingErr    error
	summarized []string
}

func (f *fakeLLM) SummarizeFile(_ context.Context, _, path string) (driven.Summary, error) {
	f.summarized = append(f.summarized, path)
	return driven.Summary{Text: "summary of " + path, Cost: 0.01}, nil
}

func (f *fakeLLM) GenerateOverallSummary(context.Context, []string) (driven.Summary, error) {
	return driven.Summary{Text: "overall project summary", Cost: 0.02}, nil
}

func (f *fakeLLM) ExtractKeywords(context.Context, string, string) ([]string, error) {
	return []string{"Alpha", "beta"}, nil
}

func (f *fakeLLM) ModelName() string           { return "fake" }
func (f *fakeLLM) Ping(context.Context) error  { return f.pingErr }
func (f *fakeLLM) Close() error                { return nil }

// writeFiles populates a project directory and returns the walker list.
func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var rels []string
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		rels = append(rels, rel)
	}
	return rels
}

func indexerFixture(t *testing.T, files []string, llm driven.LLMService) (*BlockIndexer, driven.StateStore, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	p, err := projects.Init(ctx, dir, "fixture")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: files}, parsers.NewRegistry(), plaintext.New(), llm, store)
	return indexer, store, p.ID
}

func TestIndexProjectPersistsBlockIndex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	rels := writeFiles(t, dir, map[string]string{
		"main.go":   "package main\n\nfunc main() {}\n",
		"readme.md": "# Demo\n\nA demo project.\n",
	})

	p, err := projects.Init(ctx, dir, "demo")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: rels}, parsers.NewRegistry(), plaintext.New(), nil, store)
	stats, err := indexer.IndexProject(ctx, p.ID, driving.IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.Greater(t, stats.Blocks, 2)

	var docs []domain.IndexedDocument
	require.NoError(t, driven.GetAs(ctx, store, blockIndexKey(p.ID), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "main.go", docs[0].Path, "documents are sorted by path")
	assert.Equal(t, "readme.md", docs[1].Path)

	updated, err := projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, updated.Indexed)
	assert.False(t, updated.HasSummaries)
	assert.False(t, updated.LastIndexed.IsZero())
}

func TestIndexProjectSkipsUnreadableFile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"real.md": "# Real\n"})

	p, err := projects.Init(ctx, dir, "demo")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: []string{"real.md", "ghost.md"}},
		parsers.NewRegistry(), plaintext.New(), nil, store)
	stats, err := indexer.IndexProject(ctx, p.ID, driving.IndexOptions{})
	require.NoError(t, err, "one bad file must not abort the run")

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "ghost.md", stats.Errors[0].Path)
}

func TestIndexProjectDowngradesUnparsableToPlaintext(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	rels := writeFiles(t, dir, map[string]string{"broken.go": "func {{{"})

	p, err := projects.Init(ctx, dir, "demo")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: rels}, parsers.NewRegistry(), plaintext.New(), nil, store)
	stats, err := indexer.IndexProject(ctx, p.ID, driving.IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)

	var docs []domain.IndexedDocument
	require.NoError(t, driven.GetAs(ctx, store, blockIndexKey(p.ID), &docs))
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Blocks, 1)
	assert.Equal(t, domain.BlockDocument, docs[0].Blocks[0].Type)
}

func TestIndexProjectWithSummariesAndKeywords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	rels := writeFiles(t, dir, map[string]string{
		"a.md": "# A\n\nFirst file.\n",
		"b.md": "# B\n\nSecond file.\n",
	})

	p, err := projects.Init(ctx, dir, "demo")
	require.NoError(t, err)

	llm := &fakeLLM{}
	indexer := NewBlockIndexer(projects, listWalker{files: rels}, parsers.NewRegistry(), plaintext.New(), llm, store)
	stats, err := indexer.IndexProject(ctx, p.ID, driving.IndexOptions{WithSummaries: true, ExtractKeywords: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Summaries)
	assert.InDelta(t, 2*0.01+0.02, stats.Cost, 1e-9)
	assert.Len(t, llm.summarized, 2)

	var overall string
	require.NoError(t, driven.GetAs(ctx, store, overallSummaryKey(p.ID), &overall))
	assert.Equal(t, "overall project summary", overall)

	var keywords map[string][]string
	require.NoError(t, driven.GetAs(ctx, store, keywordsKey(p.ID), &keywords))
	assert.Len(t, keywords["alpha"], 2, "keywords are stored lowercased")
	assert.Len(t, keywords["beta"], 2)

	var docs []domain.IndexedDocument
	require.NoError(t, driven.GetAs(ctx, store, blockIndexKey(p.ID), &docs))
	root := docs[0].Root()
	require.NotNil(t, root)
	assert.Equal(t, "summary of a.md", root.Summary)
	require.NotNil(t, root.Metadata)
	assert.Contains(t, root.Metadata.Tags, "Alpha")

	updated, err := projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasSummaries)
}

func TestIndexProjectLLMUnavailable(t *testing.T) {
	indexer, _, projectID := indexerFixture(t, nil, &fakeLLM{pingErr: errors.New("connection refused")})

	_, err := indexer.IndexProject(context.Background(), projectID, driving.IndexOptions{WithSummaries: true})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestIndexProjectSummariesWithoutLLM(t *testing.T) {
	indexer, _, projectID := indexerFixture(t, nil, nil)

	_, err := indexer.IndexProject(context.Background(), projectID, driving.IndexOptions{WithSummaries: true})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestIndexProjectProgressCallback(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	rels := writeFiles(t, dir, map[string]string{
		"a.md": "# A\n",
		"b.md": "# B\n",
		"c.md": "# C\n",
	})

	p, err := projects.Init(ctx, dir, "demo")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: rels}, parsers.NewRegistry(), plaintext.New(), nil, store)

	var calls []int
	indexer.SetProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})

	_, err = indexer.IndexProject(ctx, p.ID, driving.IndexOptions{MaxParallelism: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestBuildRelationships(t *testing.T) {
	docs := []domain.IndexedDocument{
		{Path: "src/app.js", Blocks: []*domain.Block{{
			Type:     domain.BlockImports,
			Metadata: &domain.BlockMetadata{Dependencies: []string{"./util", "../lib/log.js", "react", "./widgets"}},
		}}},
		{Path: "src/util.js"},
		{Path: "lib/log.js"},
		{Path: "src/widgets/index.ts"},
	}

	edges := buildRelationships(docs)
	require.Len(t, edges, 3)

	targets := make(map[string]bool)
	for _, e := range edges {
		assert.Equal(t, "src/app.js", e.From)
		assert.Equal(t, domain.RelationImports, e.Kind)
		targets[e.To] = true
	}
	assert.True(t, targets["src/util.js"], "extension resolution")
	assert.True(t, targets["lib/log.js"], "parent-relative resolution")
	assert.True(t, targets["src/widgets/index.ts"], "index resolution")
}
