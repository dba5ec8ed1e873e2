package store

import (
	"context"
	"sync"

	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
)

// MemoryBackend keeps snapshots in process memory. Used by tests and ephemeral runs.
type MemoryBackend struct {
	mu        sync.RWMutex
	snapshots map[persistence.Family][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snapshots: make(map[persistence.Family][]byte)}
}

// Load returns a copy of the last committed snapshot
func (b *MemoryBackend) Load(_ context.Context, family persistence.Family) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.snapshots[family]
	if !ok {
		return nil, persistence.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Commit replaces every snapshot in the map under a single lock
func (b *MemoryBackend) Commit(_ context.Context, snapshots map[persistence.Family][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for family, data := range snapshots {
		b.snapshots[family] = append([]byte(nil), data...)
	}
	return nil
}

// Put overwrites a snapshot directly, bypassing any unit of work
func (b *MemoryBackend) Put(family persistence.Family, data []byte) {
	b.Commit(context.Background(), map[persistence.Family][]byte{family: data}) //nolint:errcheck
}

// Close is a no-op
func (b *MemoryBackend) Close() error {
	return nil
}
