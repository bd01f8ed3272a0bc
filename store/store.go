package store

import (
	"context"

	"github.com/xraph/hookq/hook"
)

// Store is the full backend contract: hook persistence plus lifecycle.
type Store interface {
	hook.Store

	// Migrate creates indexes or other backend structures.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources owned by the store.
	Close() error
}
