package driving

import "context"

// WatchService re-indexes the current project when its files change.
type WatchService interface {
	// Watch blocks until ctx is cancelled, re-running the indexer after
	// each debounced burst of file events.
	Watch(ctx context.Context, projectID string, opts IndexOptions) error
}
