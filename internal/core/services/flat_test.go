package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-dev/quarry/internal/core/domain"
)

func TestBuildFileRecord(t *testing.T) {
	content := "// adds two ints\nfunc add(a, b int) int {\n\tif a > b {\n\t\treturn a + b\n\t}\n\treturn b\n}\n"
	rec := BuildFileRecord("pkg/math_util.go", content, int64(len(content)), time.Unix(100, 0))

	assert.Equal(t, "pkg/math_util.go", rec.Path)
	assert.Equal(t, "math util", rec.Title)
	assert.Equal(t, "go", rec.Language)
	assert.Equal(t, 8, rec.LineCount)
	assert.Greater(t, rec.CommentRatio, 0.0)
	assert.Greater(t, rec.Complexity, 0.0)
	assert.Equal(t, time.Unix(100, 0), rec.LastModified)
}

func TestCommentRatio(t *testing.T) {
	lines := []string{"// a", "code()", "# b", "more()"}
	assert.InDelta(t, 0.5, commentRatio(lines), 1e-9)
	assert.Equal(t, 0.0, commentRatio(nil))
}

func TestComplexityScore(t *testing.T) {
	plain := []string{"x = 1", "y = 2"}
	branchy := []string{"if x {", "for i {", "a && b || c"}
	assert.Equal(t, 0.0, complexityScore(plain))
	assert.Greater(t, complexityScore(branchy), 1.0)
}

func flatFixture(t *testing.T, records []domain.FileRecord) *FlatSearch {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	p, err := projects.Init(ctx, t.TempDir(), "flat")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, flatIndexKey(p.ID), records))

	return NewFlatSearch(projects, store)
}

func record(path, content string) domain.FileRecord {
	return BuildFileRecord(path, content, int64(len(content)), time.Unix(0, 0))
}

func TestSearchFilesRanksByRelevance(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{
		record("auth/session.go", "session session session token refresh"),
		record("docs/notes.txt", "one passing mention of session here"),
		record("math/sum.go", "func sum(a, b int) int { return a + b }"),
	})

	results, err := s.SearchFiles(context.Background(), "session token")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "auth/session.go", results[0].Record.Path)
}

func TestSearchFilesPathMatchBoost(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{
		record("billing/invoice.go", "package billing"),
		record("docs/guide.txt", "the invoice flow is described once"),
	})

	results, err := s.SearchFiles(context.Background(), "invoice")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "billing/invoice.go", results[0].Record.Path,
		"a path hit outweighs a single content mention")
}

func TestSearchFilesConfigBoost(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{
		record("app.yaml", "port: 8080 setup values"),
		record("server.go", "reads the setup values on boot and serves traffic"),
	})

	results, err := s.SearchFiles(context.Background(), "setup values")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "app.yaml", results[0].Record.Path)
}

func TestSearchFilesReadmeFallback(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{
		record("README.md", "A tiny demo."),
		record("go.mod", "module demo"),
		record("main.go", "package main"),
	})

	results, err := s.SearchFiles(context.Background(), "what is qqqunfindable")
	require.NoError(t, err)

	var fallbacks []string
	for _, r := range results {
		if !r.Similar {
			assert.Equal(t, fallbackScore, r.Score)
			fallbacks = append(fallbacks, r.Record.Path)
		}
	}
	assert.ElementsMatch(t, []string{"README.md", "go.mod"}, fallbacks,
		"readme and manifest files serve description queries")
}

func TestSearchFilesNoMatches(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{record("main.go", "package main")})

	results, err := s.SearchFiles(context.Background(), "qqqunfindable")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFilesNotIndexed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)
	_, err := projects.Init(ctx, t.TempDir(), "bare")
	require.NoError(t, err)

	_, err = NewFlatSearch(projects, store).SearchFiles(ctx, "anything")
	assert.ErrorIs(t, err, domain.ErrNotIndexed)
}

func TestSearchFilesSimilarSupplementSortsLast(t *testing.T) {
	s := flatFixture(t, []domain.FileRecord{
		record("handlers/user_create.go", "package handlers\nfunc create() { store.Save(user); store.Flush(user) }"),
		record("handlers/user_delete.go", "package handlers\nfunc delete() { store.Drop(user); store.Flush(user) }"),
		record("vendor/unrelated.py", "print('hi')"),
	})

	results, err := s.SearchFiles(context.Background(), "create")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	assert.Equal(t, "handlers/user_create.go", results[0].Record.Path)
	assert.False(t, results[0].Similar)

	assert.Equal(t, "handlers/user_delete.go", results[1].Record.Path,
		"the most similar record is supplemented first")
	assert.True(t, results[1].Similar)
	assert.Less(t, results[1].Score, results[0].Score)

	assert.True(t, results[len(results)-1].Similar, "supplements sort below genuine hits")
}

func TestIsConfigLike(t *testing.T) {
	assert.True(t, isConfigLike("app/config.go"))
	assert.True(t, isConfigLike("settings.py"))
	assert.True(t, isConfigLike("deploy.yaml"))
	assert.False(t, isConfigLike("main.go"))
}

func TestIsReadmeLike(t *testing.T) {
	assert.True(t, isReadmeLike("README"))
	assert.True(t, isReadmeLike("readme.txt"))
	assert.True(t, isReadmeLike("docs/guide.md"))
	assert.False(t, isReadmeLike("main.go"))
}
