package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/logger"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure FlatSearch implements the interface.
var _ driving.FlatSearchService = (*FlatSearch)(nil)

// Flat search tuning. The flat path is deliberately cruder than the block
// engine; it survives as a fallback for projects indexed without blocks.
const (
	pathMatchWeight    = 5.0
	summaryMatchWeight = 3.0
	shortFileLines     = 200
	shortFileBoost     = 1.0
	commentBoostScale  = 2.0
	configBoost        = 5.0
	readmeBoost        = 10.0
	fallbackScore      = 0.5
	minGenuineHits     = 4
	maxSimilar         = 2
)

// FlatIndexer builds the legacy whole-file index: one FileRecord per file
// with the precomputed signals the flat scorer reads.
type FlatIndexer struct {
	projects *ProjectManager
	walker   driven.FileWalker
	store    driven.StateStore
}

// NewFlatIndexer creates a new flat indexer.
func NewFlatIndexer(projects *ProjectManager, walker driven.FileWalker, store driven.StateStore) *FlatIndexer {
	return &FlatIndexer{projects: projects, walker: walker, store: store}
}

// IndexProject builds and persists the flat index for a project. Returns
// the number of files recorded.
func (x *FlatIndexer) IndexProject(ctx context.Context, projectID string, include, exclude []string) (int, error) {
	project, err := x.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}

	files, err := x.walker.Walk(ctx, project.Path, include, exclude)
	if err != nil {
		return 0, fmt.Errorf("enumerate files: %w", err)
	}

	records := make([]domain.FileRecord, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		full := filepath.Join(project.Path, filepath.FromSlash(rel))
		content, err := os.ReadFile(full)
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			continue
		}
		info, err := os.Stat(full)
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			continue
		}
		records = append(records, BuildFileRecord(rel, string(content), info.Size(), info.ModTime()))
	}

	if err := x.store.Set(ctx, flatIndexKey(projectID), records); err != nil {
		return 0, fmt.Errorf("save flat index: %w", err)
	}
	logger.Info("Flat-indexed %d files", len(records))
	return len(records), nil
}

// BuildFileRecord computes the stored signals for one file.
func BuildFileRecord(rel, content string, size int64, modTime time.Time) domain.FileRecord {
	lines := parseutil.Lines(content)
	return domain.FileRecord{
		Path:         rel,
		Title:        parseutil.TitleFromPath(rel),
		Language:     parseutil.DetectLanguage(rel),
		Content:      content,
		Size:         size,
		LineCount:    len(lines),
		CommentRatio: commentRatio(lines),
		Complexity:   complexityScore(lines),
		LastModified: modTime,
	}
}

// commentPrefixes mark a line as a comment, across the languages the
// generic parser covers.
var commentPrefixes = []string{"//", "#", "/*", "*", "--", "<!--"}

func commentRatio(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	comments := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, p := range commentPrefixes {
			if strings.HasPrefix(trimmed, p) {
				comments++
				break
			}
		}
	}
	return float64(comments) / float64(len(lines))
}

// branchMarkers count control-flow constructs for the coarse complexity
// score.
var branchMarkers = []string{"if ", "if(", "for ", "for(", "while ", "while(", "switch ", "case ", "&&", "||", "catch ", "catch("}

// complexityScore is branch density: control-flow constructs per line.
func complexityScore(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	branches := 0
	for _, line := range lines {
		for _, m := range branchMarkers {
			branches += strings.Count(line, m)
		}
	}
	return float64(branches) / float64(len(lines))
}

// FlatSearch is the legacy whole-file search: a heuristic scorer over
// FileRecords with a similar-document supplement for sparse result sets.
type FlatSearch struct {
	projects *ProjectManager
	store    driven.StateStore
}

// NewFlatSearch creates a new flat search service.
func NewFlatSearch(projects *ProjectManager, store driven.StateStore) *FlatSearch {
	return &FlatSearch{projects: projects, store: store}
}

// SearchFiles scores whole-file records against the query.
func (s *FlatSearch) SearchFiles(ctx context.Context, query string) ([]domain.FlatResult, error) {
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.FileRecord
	err = driven.GetAs(ctx, s.store, flatIndexKey(project.ID), &records)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotIndexed
	}
	if err != nil {
		return nil, fmt.Errorf("load flat index: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNotIndexed
	}

	lower := strings.ToLower(query)
	terms := tokenize(query)
	configQuery := strings.Contains(lower, "config") || strings.Contains(lower, "setup")
	descriptionQuery := strings.Contains(lower, "what is") || strings.Contains(lower, "about") ||
		strings.Contains(lower, "readme") || strings.Contains(lower, "project")

	var results []domain.FlatResult
	for i := range records {
		score := scoreRecord(&records[i], terms, configQuery, descriptionQuery)
		if score > 0 {
			results = append(results, domain.FlatResult{Record: records[i], Score: score})
		}
	}

	// A description query with no hits still deserves the files that
	// describe the project.
	if len(results) == 0 && descriptionQuery {
		for i := range records {
			if isReadmeLike(records[i].Path) || isManifestLike(records[i].Path) {
				results = append(results, domain.FlatResult{Record: records[i], Score: fallbackScore})
			}
		}
	}

	if len(results) > 0 && len(results) < minGenuineHits {
		results = append(results, similarRecords(records, results)...)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// scoreRecord computes the heuristic relevance of one file record.
func scoreRecord(r *domain.FileRecord, terms []string, configQuery, descriptionQuery bool) float64 {
	contentLower := strings.ToLower(r.Content)
	pathLower := strings.ToLower(r.Path)
	summaryLower := strings.ToLower(r.Summary)

	var score float64
	for _, term := range terms {
		if tf := strings.Count(contentLower, term); tf > 0 {
			score += math.Log1p(float64(tf))
		}
		if strings.Contains(pathLower, term) {
			score += pathMatchWeight
		}
		if summaryLower != "" && strings.Contains(summaryLower, term) {
			score += summaryMatchWeight
		}
	}
	if score == 0 {
		return 0
	}

	if r.LineCount > 0 && r.LineCount < shortFileLines {
		score += shortFileBoost
	}
	score += r.CommentRatio * commentBoostScale

	if configQuery && isConfigLike(r.Path) {
		score += configBoost
	}
	if descriptionQuery && isReadmeLike(r.Path) {
		score += readmeBoost
	}
	return score
}

func isReadmeLike(p string) bool {
	base := strings.ToLower(path.Base(p))
	return strings.HasPrefix(base, "readme") || strings.HasSuffix(base, ".md")
}

func isManifestLike(p string) bool {
	base := strings.ToLower(path.Base(p))
	switch base {
	case "package.json", "go.mod", "pyproject.toml", "cargo.toml", "setup.py", "composer.json":
		return true
	}
	return false
}

func isConfigLike(p string) bool {
	base := strings.ToLower(path.Base(p))
	if strings.Contains(base, "config") || strings.Contains(base, "settings") {
		return true
	}
	switch path.Ext(base) {
	case ".json", ".toml", ".yaml", ".yml", ".ini", ".env":
		return true
	}
	return false
}

// similarRecords supplements a sparse result set with up to maxSimilar
// records resembling the top hit. Supplements always score below the
// weakest genuine match so they sort last.
func similarRecords(records []domain.FileRecord, hits []domain.FlatResult) []domain.FlatResult {
	matched := make(map[string]bool, len(hits))
	minScore := hits[0].Score
	for _, h := range hits {
		matched[h.Record.Path] = true
		if h.Score < minScore {
			minScore = h.Score
		}
	}
	anchor := &hits[0].Record

	type candidate struct {
		record     *domain.FileRecord
		similarity float64
	}
	var candidates []candidate
	for i := range records {
		r := &records[i]
		if matched[r.Path] {
			continue
		}
		if sim := similarity(anchor, r); sim > 0 {
			candidates = append(candidates, candidate{record: r, similarity: sim})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].similarity > candidates[j].similarity })
	if len(candidates) > maxSimilar {
		candidates = candidates[:maxSimilar]
	}

	var extra []domain.FlatResult
	for i, c := range candidates {
		extra = append(extra, domain.FlatResult{
			Record:  *c.record,
			Score:   minScore * 0.5 / float64(i+1),
			Similar: true,
		})
	}
	return extra
}

// frequentTokens returns the tokens occurring at least twice in the
// record's content.
func frequentTokens(r *domain.FileRecord) map[string]bool {
	counts := termVector(tokenize(r.Content))
	frequent := make(map[string]bool)
	for term, n := range counts {
		if n >= 2 {
			frequent[term] = true
		}
	}
	return frequent
}

// similarity measures how much b resembles a: shared path tokens, shared
// frequent content tokens, same language, close complexity.
func similarity(a, b *domain.FileRecord) float64 {
	var score float64

	aPath := make(map[string]bool)
	for _, t := range tokenize(a.Path) {
		aPath[t] = true
	}
	for _, t := range tokenize(b.Path) {
		if aPath[t] {
			score += 2
		}
	}

	aFreq := frequentTokens(a)
	for term := range frequentTokens(b) {
		if aFreq[term] {
			score++
		}
	}

	if a.Language != "" && a.Language == b.Language {
		score += 1.5
	}
	if math.Abs(a.Complexity-b.Complexity) < 0.1 {
		score += 0.5
	}
	return score
}
