// Package kv is the key-value persistence port the session layer is built on.
// Values are plain strings stored under namespaced keys; structured values are
// serialized by the caller.
package kv

import "context"

// Store reads and writes string values. Get reports whether the key was
// present; a missing key is not an error. Remove of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
