package driving

import (
	"context"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

// SearchService answers free-text queries against the current project's
// block index.
type SearchService interface {
	// SearchBlocks scores every block in the persisted index against the
	// query and returns ranked per-document result bundles.
	// Returns domain.ErrNotIndexed when the project has no block index.
	SearchBlocks(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// FlatSearchService is the older whole-file search path. It coexists with
// the block-based engine as a secondary/fallback component.
type FlatSearchService interface {
	// SearchFiles scores whole-file records against the query.
	SearchFiles(ctx context.Context, query string) ([]domain.FlatResult, error)
}
