package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore for
// testing. Values round-trip through JSON so tests exercise the same
// serialization as the file store.
type StateStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{data: make(map[string]json.RawMessage)}
}

// Get retrieves the raw JSON value at the key path.
func (s *StateStore) Get(_ context.Context, keyPath string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[keyPath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

// Set marshals value and stores it at the key path.
func (s *StateStore) Set(_ context.Context, keyPath string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[keyPath] = raw
	return nil
}

// Delete removes the value at the key path and any values below it.
func (s *StateStore) Delete(_ context.Context, keyPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, keyPath)
	prefix := keyPath + "."
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
		}
	}
	return nil
}

// Close is a no-op.
func (s *StateStore) Close() error {
	return nil
}
