package persistence

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when a family has never been committed
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotBackend stores the encoded snapshot of each record family
type SnapshotBackend interface {
	// Load returns the last committed snapshot of family
	//
	// Possible errors:
	// - ErrSnapshotNotFound: If the family has never been committed
	// - any I/O or database error
	Load(ctx context.Context, family Family) ([]byte, error)

	// Commit durably replaces the snapshots of every family in the map.
	// Either all of them become visible or none do.
	Commit(ctx context.Context, snapshots map[Family][]byte) error

	// Close releases resources held by the backend
	Close() error
}
