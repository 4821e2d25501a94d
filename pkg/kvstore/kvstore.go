// Package kvstore provides durable string key-value storage for client-side
// state (session, UI preferences). Backends are deliberately forgiving: a
// corrupt or missing entry reads as absent, never as a failure that would
// break startup.
package kvstore

import "context"

// Store is a durable key-value store with string values.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value for key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Del removes the entry for key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
}
