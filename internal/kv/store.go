// Package kv is the durable key/value store the data model lives in.
//
// Keys are strings, values are opaque bytes (JSON in practice). The Store
// contract mirrors a mobile async key/value storage: get, set, merge,
// delete and key listing, plus an atomic read-modify-write (Update) that the
// services use so that concurrent appends cannot drop each other.
//
// Implementations:
//   - SQLiteStore   local file database (default, modernc.org/sqlite)
//   - PostgresStore shared household database (pgx)
//   - MemoryStore   process-local map, for tests and throwaway runs
//
// Use Open to pick one by driver name; it also applies the schema migrations.
package kv

import "context"

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning a nil value with a nil error leaves
// the key untouched. A non-nil error aborts the update and is returned to
// the caller unchanged.
type UpdateFunc func(old []byte) ([]byte, error)

// Store is a string-keyed byte store. Storage failures are wrapped with
// common.ErrStorage.
type Store interface {
	// Get returns the stored value, or (nil, nil) if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set creates or overwrites the value.
	Set(ctx context.Context, key string, value []byte) error
	// Merge merges a JSON object patch into the stored JSON object (see
	// MergeJSON). An absent key behaves like Set.
	Merge(ctx context.Context, key string, patch []byte) error
	// Update runs fn against the current value atomically.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns the sorted keys starting with prefix ("" lists all).
	Keys(ctx context.Context, prefix string) ([]string, error)
	// List returns every key/value pair.
	List(ctx context.Context) (map[string][]byte, error)
	// Clear removes every key.
	Clear(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}

func mergeUpdate(patch []byte) UpdateFunc {
	return func(old []byte) ([]byte, error) {
		if old == nil {
			return patch, nil
		}
		return MergeJSON(old, patch)
	}
}
