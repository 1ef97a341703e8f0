package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore persists application state as one nested JSON document on
// disk. Dotted key paths address nodes in the tree; every write rewrites
// the whole file through a temp-file rename, so a crash mid-write never
// leaves a truncated state file.
type StateStore struct {
	mu       sync.RWMutex
	filePath string
	tree     map[string]any
}

// NewStateStore creates a file-backed state store.
// If dataDir is empty, defaults to ~/.quarry.
func NewStateStore(dataDir string) (*StateStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quarry")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &StateStore{
		filePath: filepath.Join(dataDir, "state.json"),
		tree:     make(map[string]any),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.filePath
}

// Get retrieves the raw JSON value at the key path.
func (s *StateStore) Get(_ context.Context, keyPath string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.lookup(keyPath)
	if !ok {
		return nil, domain.ErrNotFound
	}

	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("marshalling value at %q: %w", keyPath, err)
	}
	return raw, nil
}

// Set stores value at the key path, creating intermediate objects as
// needed, and persists the whole tree before returning.
func (s *StateStore) Set(_ context.Context, keyPath string, value any) error {
	// Round-trip through JSON so the tree only ever holds JSON-shaped
	// values, same as after a reload.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value for %q: %w", keyPath, err)
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("normalising value for %q: %w", keyPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segments := strings.Split(keyPath, ".")
	current := s.tree
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			current[seg] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = node

	return s.save()
}

// Delete removes the value at the key path. Deleting a missing path is
// not an error.
func (s *StateStore) Delete(_ context.Context, keyPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	segments := strings.Split(keyPath, ".")
	current := s.tree
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current[seg].(map[string]any)
		if !ok {
			return nil
		}
		current = child
	}

	leaf := segments[len(segments)-1]
	if _, ok := current[leaf]; !ok {
		return nil
	}
	delete(current, leaf)

	return s.save()
}

// Close is a no-op; every Set and Delete persists immediately.
func (s *StateStore) Close() error {
	return nil
}

// lookup walks the tree along the dotted path (caller must hold lock).
func (s *StateStore) lookup(keyPath string) (any, bool) {
	segments := strings.Split(keyPath, ".")
	var node any = s.tree
	for _, seg := range segments {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// save writes the tree atomically (caller must hold lock).
func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// load reads the tree from disk. A missing file starts an empty tree.
func (s *StateStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading state file: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing state file: %w", err)
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	s.tree = tree
	return nil
}
