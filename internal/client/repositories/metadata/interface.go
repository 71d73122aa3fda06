// Package metadata is the client's local key/value store, kept in the
// SQLite database created by client.InitDatabase.
package metadata

import "context"

// Repository stores small opaque values by key. Get returns (nil, nil) for
// a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
