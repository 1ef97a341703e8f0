package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/parsers"
	"github.com/quarry-dev/quarry/internal/parsers/plaintext"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"How does the parser work", []string{"parser", "work"}},
		{"parse_file and parseFile", []string{"parse_file", "parsefile"}},
		{"a an of", nil},
		{"HTTP/2 push", []string{"http", "push"}},
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if tt.want == nil {
			assert.Empty(t, got, tt.in)
		} else {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestDetectShape(t *testing.T) {
	assert.Equal(t, domain.QuerySummary, detectShape("give me a summary of the project"))
	assert.Equal(t, domain.QuerySummary, detectShape("What is this repo"))
	assert.Equal(t, domain.QueryCode, detectShape("the function that retries requests"))
	assert.Equal(t, domain.QueryPlain, detectShape("retry backoff"))
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"x": 1, "y": 1}
	assert.InDelta(t, 1.0, cosine(a, a), 1e-9)
	assert.Equal(t, 0.0, cosine(a, map[string]float64{"z": 1}))
	assert.Equal(t, 0.0, cosine(a, map[string]float64{}))
}

func TestScoreBlockTitleMatchBeatsBodyMention(t *testing.T) {
	terms := tokenize("login handler")
	vec := termVector(terms)

	titled := &domain.Block{
		Type:    domain.BlockFunction,
		Title:   "Function: loginHandler",
		Content: "func loginHandler() {}",
	}
	mention := &domain.Block{
		Type:    domain.BlockParagraph,
		Title:   "Notes",
		Content: "the login handler is documented elsewhere",
	}

	assert.Greater(t,
		scoreBlock(titled, terms, vec, domain.QueryPlain),
		scoreBlock(mention, terms, vec, domain.QueryPlain))
}

func TestScoreBlockGrowsWithTermFrequency(t *testing.T) {
	terms := tokenize("cache")
	vec := termVector(terms)

	sparse := &domain.Block{Type: domain.BlockParagraph,
		Content: "cache miss handling and eviction policy notes"}
	dense := &domain.Block{Type: domain.BlockParagraph,
		Content: "cache cache cache miss handling and eviction policy notes"}

	assert.Greater(t,
		scoreBlock(dense, terms, vec, domain.QueryPlain),
		scoreBlock(sparse, terms, vec, domain.QueryPlain))
}

func TestScoreBlockMetadataBonuses(t *testing.T) {
	terms := tokenize("resolve")
	vec := termVector(terms)

	plain := &domain.Block{Type: domain.BlockParagraph, Content: "resolve resolve"}
	named := &domain.Block{
		Type:     domain.BlockParagraph,
		Content:  "resolve resolve",
		Metadata: &domain.BlockMetadata{Name: "resolve", Signature: "func resolve()"},
	}

	diff := scoreBlock(named, terms, vec, domain.QueryPlain) - scoreBlock(plain, terms, vec, domain.QueryPlain)
	assert.InDelta(t, nameBonus+signatureBonus, diff, 1e-9)
}

func TestScoreBlockCodeShapeBonus(t *testing.T) {
	terms := tokenize("parse function")
	vec := termVector(terms)
	fn := &domain.Block{Type: domain.BlockFunction, Content: "func parse() {}"}

	withShape := scoreBlock(fn, terms, vec, domain.QueryCode)
	withoutShape := scoreBlock(fn, terms, vec, domain.QueryPlain)
	assert.InDelta(t, codeShapeBonus, withShape-withoutShape, 1e-9)
}

// indexedFixture stores a two-document block index for a registered
// project and returns the search engine wired to it.
func indexedFixture(t *testing.T) (*BlockSearch, *ProjectManager, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	p, err := projects.Init(ctx, t.TempDir(), "fixture")
	require.NoError(t, err)

	authDoc := buildDoc("auth/login.go", "go",
		&domain.Block{ID: "auth-fn", Type: domain.BlockFunction, Title: "Function: loginHandler",
			Content: "func loginHandler() { validate(token) }", StartLine: 3, EndLine: 5,
			Metadata: &domain.BlockMetadata{Name: "loginHandler"}},
		&domain.Block{ID: "auth-helper", Type: domain.BlockFunction, Title: "Function: validate",
			Content: "func validate(token string) {}", StartLine: 7, EndLine: 8,
			Metadata: &domain.BlockMetadata{Name: "validate"}},
	)
	readmeDoc := buildDoc("README.md", "markdown",
		&domain.Block{ID: "readme-head", Type: domain.BlockHeading, Title: "Overview",
			Content: "# Overview", StartLine: 1, EndLine: 4},
		&domain.Block{ID: "readme-para", Type: domain.BlockParagraph, Title: "About",
			Content: "A small demo service with token based login.", StartLine: 3, EndLine: 3},
	)

	require.NoError(t, store.Set(ctx, blockIndexKey(p.ID), []domain.IndexedDocument{authDoc, readmeDoc}))
	return NewBlockSearch(projects, store), projects, p.ID
}

// buildDoc assembles a document whose extra blocks all hang off the root.
func buildDoc(path, language string, children ...*domain.Block) domain.IndexedDocument {
	root := &domain.Block{
		ID:        path + "-root",
		Type:      domain.BlockDocument,
		Path:      path,
		Title:     path,
		StartLine: 1,
		EndLine:   100,
	}
	blocks := []*domain.Block{root}
	for _, c := range children {
		c.Path = path
		c.Parent = root.ID
		root.Children = append(root.Children, c.ID)
		blocks = append(blocks, c)
	}

	h := domain.NewBlockHierarchy(root.ID)
	for _, b := range blocks {
		h.BlockMap[b.ID] = domain.HierarchyNode{Block: b.ID, Children: b.Children}
	}
	return domain.IndexedDocument{
		Path:           path,
		Title:          path,
		Language:       language,
		Blocks:         blocks,
		BlockHierarchy: h,
	}
}

func TestSearchBlocksRanksMatchingDocumentFirst(t *testing.T) {
	search, _, _ := indexedFixture(t)

	results, err := search.SearchBlocks(context.Background(), "loginHandler")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "auth/login.go", results[0].Document)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearchBlocksExpandsContext(t *testing.T) {
	search, _, _ := indexedFixture(t)

	results, err := search.SearchBlocks(context.Background(), "loginHandler")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	ids := make(map[string]int)
	for i, b := range results[0].Blocks {
		ids[b.ID] = i
	}

	_, hasMatch := ids["auth-fn"]
	rootPos, hasRoot := ids["auth/login.go-root"]
	_, hasSibling := ids["auth-helper"]

	assert.True(t, hasMatch, "matched block included")
	assert.True(t, hasRoot, "ancestor chain included")
	assert.True(t, hasSibling, "code sibling included")
	assert.Equal(t, 0, rootPos, "ancestors come before the match")
}

func TestSearchBlocksNoMatches(t *testing.T) {
	search, _, _ := indexedFixture(t)

	results, err := search.SearchBlocks(context.Background(), "zeppelin")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchBlocksNotIndexed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)
	_, err := projects.Init(ctx, t.TempDir(), "empty")
	require.NoError(t, err)

	_, err = NewBlockSearch(projects, store).SearchBlocks(ctx, "anything")
	assert.ErrorIs(t, err, domain.ErrNotIndexed)
}

func TestSearchBlocksNoProject(t *testing.T) {
	store := memory.NewStateStore()
	search := NewBlockSearch(NewProjectManager(store), store)

	_, err := search.SearchBlocks(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrNoProject)
}

func TestSearchBlocksProjectSummaryFallback(t *testing.T) {
	search, _, projectID := indexedFixture(t)
	ctx := context.Background()

	require.NoError(t, search.store.Set(ctx, overallSummaryKey(projectID),
		"Demo service exposing a token login endpoint."))

	results, err := search.SearchBlocks(ctx, "summarize zzzunmatchable")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ProjectSummaryDocument, results[0].Document)
	assert.Equal(t, 1.0, results[0].Score)
	require.Len(t, results[0].Blocks, 1)
	assert.Contains(t, results[0].Blocks[0].Summary, "token login")
}

// TestIndexThenSearchTwoFiles runs the real pipeline end to end: index a
// source file and a markdown file from disk, then search the persisted
// index. The function declaration must outrank the heading for the same
// term, and both documents must appear in the results.
func TestIndexThenSearchTwoFiles(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	projects := NewProjectManager(store)

	dir := t.TempDir()
	rels := writeFiles(t, dir, map[string]string{
		"a.js": "function foo() {\n  return computeFoo();\n}\n",
		"b.md": "# Foo\n\nNotes about working with foo.\n",
	})
	p, err := projects.Init(ctx, dir, "e2e")
	require.NoError(t, err)

	indexer := NewBlockIndexer(projects, listWalker{files: rels}, parsers.NewRegistry(), plaintext.New(), nil, store)
	stats, err := indexer.IndexProject(ctx, p.ID, driving.IndexOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesIndexed)

	search := NewBlockSearch(projects, store)
	results, err := search.SearchBlocks(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a.js", results[0].Document)
	assert.Equal(t, "b.md", results[1].Document)
	assert.Greater(t, results[0].Score, results[1].Score)

	var fn *domain.Block
	for _, b := range results[0].Blocks {
		if b.Type == domain.BlockFunction {
			fn = b
		}
	}
	require.NotNil(t, fn)
	assert.Equal(t, "Function: foo", fn.Title)
}
