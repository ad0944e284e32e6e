// Package metadata is the durable key/value store behind client sessions.
// Values are opaque bytes; writes are single-key last-writer-wins unless
// grouped with SetMany/DeleteMany.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// SetMany and DeleteMany apply all keys in one transaction.
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}
