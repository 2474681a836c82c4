// Package storage defines the backing-store port used by the ledger.
package storage

import (
	"context"

	"budget/internal/core"
)

// Store persists the full, ordered record sequence of a ledger.
//
// Load returns (nil, nil) when nothing has been persisted yet; content that
// exists but cannot be decoded yields a *core.PersistenceError wrapping
// core.ErrCorrupt. Save replaces everything previously stored.
type Store interface {
	Load(ctx context.Context) ([]core.Record, error)
	Save(ctx context.Context, records []core.Record) error
	Name() string
}
