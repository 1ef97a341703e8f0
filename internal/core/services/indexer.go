package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quarry-dev/quarry/internal/blocks"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/logger"
)

// Ensure BlockIndexer implements the interface.
var _ driving.IndexService = (*BlockIndexer)(nil)

// defaultBatchSize bounds concurrent file processing.
const defaultBatchSize = 5

// llmBatchSize bounds concurrent LLM calls within a file batch.
const llmBatchSize = 5

// maxSummaryContent caps the content sent to the LLM per file. Truncation
// is this caller's responsibility, not the adapter's.
const maxSummaryContent = 16000

// pingTimeout is the maximum time to wait for LLM connectivity validation.
const pingTimeout = 5 * time.Second

// BlockIndexer builds the block index for a project: enumerate files,
// parse them into block trees, optionally enrich with LLM summaries and
// keywords, derive the import graph, and persist everything wholesale.
type BlockIndexer struct {
	projects *ProjectManager
	walker   driven.FileWalker
	registry driven.ParserRegistry
	fallback driven.Parser
	llm      driven.LLMService
	store    driven.StateStore

	// progress, when set, is called after each file completes.
	progress func(done, total int)
}

// NewBlockIndexer creates a new block indexer. The llm service is
// optional; fallback handles files whose parser rejects the content.
func NewBlockIndexer(
	projects *ProjectManager,
	walker driven.FileWalker,
	registry driven.ParserRegistry,
	fallback driven.Parser,
	llm driven.LLMService,
	store driven.StateStore,
) *BlockIndexer {
	return &BlockIndexer{
		projects: projects,
		walker:   walker,
		registry: registry,
		fallback: fallback,
		llm:      llm,
		store:    store,
	}
}

// SetProgress installs a progress callback. The CLI attaches its progress
// bar here; the core never renders.
func (x *BlockIndexer) SetProgress(fn func(done, total int)) {
	x.progress = fn
}

// fileResult is the outcome of processing one file.
type fileResult struct {
	doc      *domain.IndexedDocument
	summary  string
	keywords []string
	cost     float64
	err      error
	path     string
}

// IndexProject indexes the project's files and persists the result.
// Persistence happens only after the whole pass completes, so an
// interrupted run never corrupts the previously stored index.
func (x *BlockIndexer) IndexProject(ctx context.Context, projectID string, opts driving.IndexOptions) (*driving.IndexStats, error) {
	logger.Section("Indexing")

	project, err := x.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Summarisation requires a reachable LLM up front: partial-summarised
	// state is worse than failing the whole run early.
	if opts.WithSummaries || opts.ExtractKeywords {
		if x.llm == nil {
			return nil, domain.ErrLLMUnavailable
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := x.llm.Ping(pingCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
	}

	files, err := x.walker.Walk(ctx, project.Path, opts.Include, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("enumerate files: %w", err)
	}
	logger.Info("Found %d files to index", len(files))

	batchSize := opts.MaxParallelism
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	stats := &driving.IndexStats{}
	docs := make([]domain.IndexedDocument, 0, len(files))
	fileSummaries := make([]string, 0)
	keywordIndex := make(map[string][]string)
	done := 0

	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		results := x.processBatch(ctx, project.Path, files[start:end], opts)

		for _, res := range results {
			done++
			if x.progress != nil {
				x.progress(done, len(files))
			}

			if res.err != nil {
				logger.Warn("Skipping %s: %v", res.path, res.err)
				stats.FilesSkipped++
				stats.Errors = append(stats.Errors, driving.FileError{Path: res.path, Err: res.err.Error()})
				continue
			}

			stats.FilesIndexed++
			stats.Blocks += len(res.doc.Blocks)
			stats.Cost += res.cost
			if res.summary != "" {
				stats.Summaries++
				fileSummaries = append(fileSummaries, fmt.Sprintf("%s: %s", res.doc.Path, res.summary))
			}
			for _, kw := range res.keywords {
				keywordIndex[strings.ToLower(kw)] = append(keywordIndex[strings.ToLower(kw)], res.doc.Path)
			}
			docs = append(docs, *res.doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	if opts.WithSummaries && len(fileSummaries) > 0 {
		overall, err := x.llm.GenerateOverallSummary(ctx, fileSummaries)
		if err != nil {
			logger.Warn("Overall summary failed: %v", err)
		} else {
			stats.Cost += overall.Cost
			if err := x.store.Set(ctx, overallSummaryKey(projectID), overall.Text); err != nil {
				return nil, fmt.Errorf("save overall summary: %w", err)
			}
		}
	}

	if opts.ExtractKeywords {
		if err := x.store.Set(ctx, keywordsKey(projectID), keywordIndex); err != nil {
			return nil, fmt.Errorf("save keyword index: %w", err)
		}
	}

	relationships := buildRelationships(docs)
	if err := x.store.Set(ctx, relationshipsKey(projectID), relationships); err != nil {
		return nil, fmt.Errorf("save relationships: %w", err)
	}
	logger.Info("Recorded %d import relationships", len(relationships))

	if err := x.store.Set(ctx, blockIndexKey(projectID), docs); err != nil {
		return nil, fmt.Errorf("save block index: %w", err)
	}

	project.Indexed = true
	project.HasSummaries = opts.WithSummaries
	project.LastIndexed = time.Now()
	if err := x.projects.update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	logger.Info("Indexed %d files, %d blocks (%d skipped)", stats.FilesIndexed, stats.Blocks, stats.FilesSkipped)
	return stats, nil
}

// processBatch handles one batch of files concurrently and returns the
// results in input order.
func (x *BlockIndexer) processBatch(ctx context.Context, root string, batch []string, opts driving.IndexOptions) []fileResult {
	results := make([]fileResult, len(batch))

	var wg sync.WaitGroup
	for i, rel := range batch {
		wg.Add(1)
		go func(i int, rel string) {
			defer wg.Done()
			results[i] = x.processFile(ctx, root, rel)
		}(i, rel)
	}
	wg.Wait()

	if opts.WithSummaries || opts.ExtractKeywords {
		x.enrichBatch(ctx, results, opts)
	}

	return results
}

// processFile reads and parses one file. A parser rejection downgrades
// the file to a plaintext document block; other errors are recorded and
// the file is skipped.
func (x *BlockIndexer) processFile(ctx context.Context, root, rel string) fileResult {
	if err := ctx.Err(); err != nil {
		return fileResult{path: rel, err: err}
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		return fileResult{path: rel, err: fmt.Errorf("read: %w", err)}
	}
	info, err := os.Stat(full)
	if err != nil {
		return fileResult{path: rel, err: fmt.Errorf("stat: %w", err)}
	}
	stat := domain.FileStat{Size: info.Size(), LastModified: info.ModTime()}

	doc, err := x.registry.Parse(rel, content, stat)
	if errors.Is(err, domain.ErrUnparsable) {
		logger.Debug("Downgrading %s to plaintext: %v", rel, err)
		doc, err = x.fallback.Parse(rel, content, stat)
	}
	if err != nil {
		return fileResult{path: rel, err: err}
	}

	blocks.Normalize(doc)
	return fileResult{doc: doc, path: rel}
}

// enrichBatch runs LLM summarisation and keyword extraction for the
// successfully parsed files of a batch, in sub-batches to bound
// concurrent LLM calls. Failures are soft: the file keeps its blocks and
// loses only the enrichment.
func (x *BlockIndexer) enrichBatch(ctx context.Context, results []fileResult, opts driving.IndexOptions) {
	pending := make([]*fileResult, 0, len(results))
	for i := range results {
		if results[i].err == nil {
			pending = append(pending, &results[i])
		}
	}

	for start := 0; start < len(pending); start += llmBatchSize {
		end := start + llmBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, res := range pending[start:end] {
			wg.Add(1)
			go func(res *fileResult) {
				defer wg.Done()
				x.enrichFile(ctx, res, opts)
			}(res)
		}
		wg.Wait()
	}
}

// enrichFile summarises one file and injects the results into its
// document block.
func (x *BlockIndexer) enrichFile(ctx context.Context, res *fileResult, opts driving.IndexOptions) {
	root := res.doc.Root()
	if root == nil {
		return
	}

	content := root.Content
	if len(content) > maxSummaryContent {
		content = content[:maxSummaryContent]
	}

	if opts.WithSummaries {
		summary, err := x.llm.SummarizeFile(ctx, content, res.doc.Path)
		if err != nil {
			logger.Warn("Summary failed for %s: %v", res.doc.Path, err)
		} else {
			root.Summary = summary.Text
			res.summary = summary.Text
			res.cost += summary.Cost
		}
	}

	if opts.ExtractKeywords {
		keywords, err := x.llm.ExtractKeywords(ctx, content, res.doc.Path)
		if err != nil {
			logger.Warn("Keyword extraction failed for %s: %v", res.doc.Path, err)
		} else {
			if root.Metadata == nil {
				root.Metadata = &domain.BlockMetadata{}
			}
			root.Metadata.Tags = append(root.Metadata.Tags, keywords...)
			res.keywords = keywords
		}
	}
}

// importExtensions are tried when resolving an extensionless import.
var importExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".go", ".py", ".rb", ".json"}

// buildRelationships resolves relative import targets against the indexed
// file set and records a directed imports edge per resolution. Bare module
// imports (no leading ./ or ../) are skipped; they point outside the
// project.
func buildRelationships(docs []domain.IndexedDocument) []domain.Relationship {
	known := make(map[string]bool, len(docs))
	for i := range docs {
		known[docs[i].Path] = true
	}

	var edges []domain.Relationship
	for i := range docs {
		doc := &docs[i]
		for _, b := range doc.Blocks {
			if b.Metadata == nil || len(b.Metadata.Dependencies) == 0 {
				continue
			}
			for _, dep := range b.Metadata.Dependencies {
				target, ok := resolveImport(known, doc.Path, dep)
				if !ok {
					continue
				}
				edges = append(edges, domain.Relationship{
					From: doc.Path,
					To:   target,
					Kind: domain.RelationImports,
				})
			}
		}
	}
	return edges
}

// resolveImport maps a relative import to a known file path, trying the
// bare path, common extensions and index.* resolution.
func resolveImport(known map[string]bool, fromPath, dep string) (string, bool) {
	if !strings.HasPrefix(dep, "./") && !strings.HasPrefix(dep, "../") {
		return "", false
	}

	base := path.Join(path.Dir(fromPath), dep)

	if known[base] {
		return base, true
	}
	for _, ext := range importExtensions {
		if known[base+ext] {
			return base + ext, true
		}
	}
	for _, ext := range importExtensions {
		candidate := path.Join(base, "index"+ext)
		if known[candidate] {
			return candidate, true
		}
	}
	return "", false
}
