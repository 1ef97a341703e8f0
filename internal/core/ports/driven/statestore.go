package driven

import (
	"context"
	"encoding/json"
)

// StateStore persists application state as a nested JSON-like tree
// addressed by dotted key paths ("projects", "block-indexes.<projectID>").
// Each Set is an atomic whole-value replace at that path; there are no
// transactions and no partial writes.
type StateStore interface {
	// Get retrieves the raw JSON value at the key path.
	// Returns domain.ErrNotFound if the path does not exist.
	Get(ctx context.Context, keyPath string) (json.RawMessage, error)

	// Set marshals value and stores it at the key path, creating
	// intermediate objects as needed. The write is persisted before Set
	// returns.
	Set(ctx context.Context, keyPath string, value any) error

	// Delete removes the value at the key path.
	// Deleting a missing path is not an error.
	Delete(ctx context.Context, keyPath string) error

	// Close releases resources.
	Close() error
}

// GetAs unmarshals the value at keyPath into out.
// It is a convenience wrapper shared by all StateStore consumers.
func GetAs(ctx context.Context, store StateStore, keyPath string, out any) error {
	raw, err := store.Get(ctx, keyPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
