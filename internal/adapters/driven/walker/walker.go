// Package walker provides the filesystem file enumerator used by the
// indexers. Include and exclude patterns use doublestar globs matched
// against the project-relative path.
package walker

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/logger"
)

// Ensure Walker implements the interface.
var _ driven.FileWalker = (*Walker)(nil)

// maxFileSize skips files too large to index usefully.
const maxFileSize = 2 << 20

// sniffLen is how many leading bytes are checked for binary content.
const sniffLen = 512

// defaultExcludedDirs are never descended into.
var defaultExcludedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".next":        true,
	"coverage":     true,
}

// defaultExtensions are indexed when no include patterns are given.
var defaultExtensions = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".py": true, ".rb": true, ".java": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".php": true, ".rs": true, ".swift": true, ".kt": true, ".sh": true,
	".md": true, ".markdown": true, ".txt": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true, ".html": true, ".css": true,
	".sql": true, ".proto": true,
}

// Walker enumerates project files for indexing.
type Walker struct{}

// New creates a new file walker.
func New() *Walker {
	return &Walker{}
}

// Walk lists indexable files under root, returning slash-separated paths
// relative to root in walk order.
func (w *Walker) Walk(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("Walk error at %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if p != root && defaultExcludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !w.selected(rel, include, exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxFileSize {
			return nil
		}

		if isBinary(p) {
			logger.Debug("Skipping binary file %s", rel)
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// selected applies include and exclude patterns to one relative path.
func (w *Walker) selected(rel string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}

	if len(include) == 0 {
		return defaultExtensions[strings.ToLower(path.Ext(rel))]
	}
	for _, pattern := range include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// isBinary sniffs the file's leading bytes for a null byte.
func isBinary(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}

	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
