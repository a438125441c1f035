// Package metadata is a small key/value repository over a SQLite table.
// The console keeps durable values (tokens) in one table and session-scoped
// values (pending registration) in another, so logout can wipe the latter
// wholesale.
package metadata

import (
	"context"
)

// Table names created by the embedded migrations.
const (
	TableDurable = "metadata"
	TableSession = "session_state"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
