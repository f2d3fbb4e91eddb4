// Package store defines the keyed WordRecord repository contract shared by
// the local file store and the Postgres mirror, plus the snapshot shape used
// for export, import, and whole-snapshot replication.
package store

import (
	"context"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
)

// SnapshotVersion is the current export payload version.
const SnapshotVersion = 1

// Store is a keyed repository over WordRecord. Keys are case-normalized by
// callers (domain.NormalizeKey). Per-key operations are serialized by every
// implementation: concurrent updates to the same key never lose fields.
type Store interface {
	// Upsert creates or replaces the record stored under rec.Key.
	Upsert(ctx context.Context, rec domain.WordRecord) error

	// Get returns the record for key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (*domain.WordRecord, error)

	// GetAll returns every record. Order is not significant.
	GetAll(ctx context.Context) ([]domain.WordRecord, error)

	// Update merges the set fields of patch into the existing record in a
	// single read-modify-write. A missing key is a no-op.
	Update(ctx context.Context, key string, patch domain.WordPatch) error

	// Delete removes the record for key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// ReplaceAll atomically replaces the full record set. Used for
	// whole-snapshot replication and secondary-to-local restore.
	ReplaceAll(ctx context.Context, recs []domain.WordRecord) error

	// Initialized reports whether the location holds data (an existing
	// file, a non-empty table). Drives the startup load order.
	Initialized(ctx context.Context) (bool, error)
}

// Snapshot is the verbatim export payload and the on-disk file shape.
type Snapshot struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	WordCount  int                 `json:"wordCount"`
	Words      []domain.WordRecord `json:"words"`
}

// NewSnapshot wraps records into a Snapshot taken at the given time.
func NewSnapshot(recs []domain.WordRecord, at time.Time) Snapshot {
	if recs == nil {
		recs = []domain.WordRecord{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: at,
		WordCount:  len(recs),
		Words:      recs,
	}
}
