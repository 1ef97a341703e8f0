package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/logger"
)

// Ensure BlockSearch implements the interface.
var _ driving.SearchService = (*BlockSearch)(nil)

// Result limits and scoring weights.
const (
	maxDocuments      = 5
	maxBlocksPerDoc   = 5
	maxSiblings       = 3
	titleTermWeight   = 5.0
	titleExactWeight  = 10.0
	nameBonus         = 3.0
	signatureBonus    = 2.0
	tagBonus          = 2.0
	codeMultiplier    = 1.5
	headingMultiplier = 1.2
	docMultiplier     = 0.8
	summaryShapeBonus = 10.0
	codeShapeBonus    = 5.0
)

// BlockSearch answers free-text queries against the current project's
// persisted block index. Matching blocks are expanded with their
// structural context: a lone function body mentioning a term is rarely
// useful without its enclosing declaration.
type BlockSearch struct {
	projects *ProjectManager
	store    driven.StateStore
}

// NewBlockSearch creates a new block search engine.
func NewBlockSearch(projects *ProjectManager, store driven.StateStore) *BlockSearch {
	return &BlockSearch{projects: projects, store: store}
}

// scoredBlock pairs a block with its query score.
type scoredBlock struct {
	block *domain.Block
	score float64
}

// SearchBlocks scores every block of the current project's index against
// the query and returns ranked per-document result bundles.
func (s *BlockSearch) SearchBlocks(ctx context.Context, query string) ([]domain.SearchResult, error) {
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	var docs []domain.IndexedDocument
	err = driven.GetAs(ctx, s.store, blockIndexKey(project.ID), &docs)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotIndexed
	}
	if err != nil {
		return nil, fmt.Errorf("load block index: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotIndexed
	}

	shape := detectShape(query)
	terms := tokenize(query)
	queryVec := termVector(terms)
	logger.Debug("Query %q: %d terms, shape %d", query, len(terms), shape)

	var results []domain.SearchResult
	for i := range docs {
		if result, ok := s.searchDocument(&docs[i], terms, queryVec, shape); ok {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxDocuments {
		results = results[:maxDocuments]
	}

	if len(results) == 0 && shape == domain.QuerySummary {
		if fallback, ok := s.projectSummaryFallback(ctx, project.ID); ok {
			results = append(results, fallback)
		}
	}

	return results, nil
}

// searchDocument scores every block of one document and assembles the
// contextual result bundle. Returns false when no block scores positive.
func (s *BlockSearch) searchDocument(doc *domain.IndexedDocument, terms []string, queryVec map[string]float64, shape domain.QueryShape) (domain.SearchResult, bool) {
	var scored []scoredBlock
	for i := range doc.Blocks {
		b := doc.Blocks[i]
		if score := scoreBlock(b, terms, queryVec, shape); score > 0 {
			scored = append(scored, scoredBlock{block: b, score: score})
		}
	}
	if len(scored) == 0 {
		return domain.SearchResult{}, false
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	top := scored
	if len(top) > maxBlocksPerDoc {
		top = top[:maxBlocksPerDoc]
	}

	included := make(map[string]bool)
	var bundle []*domain.Block
	add := func(b *domain.Block) {
		if b == nil || included[b.ID] {
			return
		}
		included[b.ID] = true
		bundle = append(bundle, b)
	}

	// A summary-style query leads with the summarised document block even
	// when it did not score on its own.
	if shape == domain.QuerySummary {
		if root := doc.Root(); root != nil && root.Summary != "" {
			add(root)
		}
	}

	for _, sb := range top {
		for _, ancestor := range ancestors(doc, sb.block) {
			add(ancestor)
		}
		add(sb.block)
		if sb.block.Type.IsCode() {
			for _, sibling := range codeSiblings(doc, sb.block) {
				add(sibling)
			}
		}
		for _, childID := range sb.block.Children {
			add(doc.BlockByID(childID))
		}
	}

	return domain.SearchResult{
		Document: doc.Path,
		Blocks:   bundle,
		Score:    scored[0].score,
	}, true
}

// scoreBlock computes a single block's relevance to the query.
func scoreBlock(b *domain.Block, terms []string, queryVec map[string]float64, shape domain.QueryShape) float64 {
	blockVec := termVector(tokenize(b.Content))

	titleLower := strings.ToLower(b.Title)
	for _, term := range terms {
		if titleLower == term {
			blockVec[term] += titleExactWeight + titleTermWeight
		} else if strings.Contains(titleLower, term) {
			blockVec[term] += titleTermWeight
		}
	}

	score := cosine(queryVec, blockVec)

	if b.Metadata != nil {
		nameLower := strings.ToLower(b.Metadata.Name)
		sigLower := strings.ToLower(b.Metadata.Signature)
		for _, term := range terms {
			if nameLower != "" && strings.Contains(nameLower, term) {
				score += nameBonus
			}
			if sigLower != "" && strings.Contains(sigLower, term) {
				score += signatureBonus
			}
			for _, tag := range b.Metadata.Tags {
				if strings.Contains(strings.ToLower(tag), term) {
					score += tagBonus
					break
				}
			}
		}
	}

	switch {
	case b.Type.IsCode():
		score *= codeMultiplier
	case b.Type == domain.BlockHeading:
		score *= headingMultiplier
	case b.Type == domain.BlockDocument:
		score *= docMultiplier
	}

	if shape == domain.QuerySummary && b.Type == domain.BlockDocument && b.Summary != "" {
		score += summaryShapeBonus
	}
	if shape == domain.QueryCode && (b.Type.IsCode() || b.Type == domain.BlockTypeDecl) {
		score += codeShapeBonus
	}

	return score
}

// ancestors walks parent links upward and returns the chain outermost
// first. The walk is bounded by the block count, so a corrupted parent
// cycle cannot loop forever.
func ancestors(doc *domain.IndexedDocument, b *domain.Block) []*domain.Block {
	var chain []*domain.Block
	seen := map[string]bool{b.ID: true}
	for current := doc.BlockByID(b.Parent); current != nil && !seen[current.ID]; current = doc.BlockByID(current.Parent) {
		seen[current.ID] = true
		chain = append([]*domain.Block{current}, chain...)
	}
	return chain
}

// codeSiblings returns up to maxSiblings neighbouring declarations of a
// code block, found through the parent's children.
func codeSiblings(doc *domain.IndexedDocument, b *domain.Block) []*domain.Block {
	parent := doc.BlockByID(b.Parent)
	if parent == nil {
		return nil
	}

	var siblings []*domain.Block
	for _, childID := range parent.Children {
		if childID == b.ID {
			continue
		}
		child := doc.BlockByID(childID)
		if child == nil {
			continue
		}
		switch child.Type {
		case domain.BlockFunction, domain.BlockMethod, domain.BlockVariable:
			siblings = append(siblings, child)
			if len(siblings) == maxSiblings {
				return siblings
			}
		}
	}
	return siblings
}

// projectSummaryFallback serves a summary-style query that matched no
// blocks from the stored overall project summary, as a pseudo-document.
func (s *BlockSearch) projectSummaryFallback(ctx context.Context, projectID string) (domain.SearchResult, bool) {
	var overall string
	if err := driven.GetAs(ctx, s.store, overallSummaryKey(projectID), &overall); err != nil || overall == "" {
		return domain.SearchResult{}, false
	}

	block := &domain.Block{
		ID:        domain.ProjectSummaryDocument,
		Type:      domain.BlockDocument,
		Content:   overall,
		StartLine: 1,
		EndLine:   1,
		Path:      domain.ProjectSummaryDocument,
		Title:     "Project summary",
		Summary:   overall,
	}
	return domain.SearchResult{
		Document: domain.ProjectSummaryDocument,
		Blocks:   []*domain.Block{block},
		Score:    1,
	}, true
}
