package driven

import "context"

// FileWalker enumerates project files for indexing.
// Implementations apply include/exclude glob patterns and skip binary files.
type FileWalker interface {
	// Walk returns paths under root matching the include patterns and not
	// matching the exclude patterns. Paths are relative to root, using
	// forward slashes. Empty include means the default source/doc set.
	Walk(ctx context.Context, root string, include, exclude []string) ([]string, error)
}
