package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/time"
)

var errCommitFailed = errors.New("disk full")

// flakyBackend wraps a backend and fails commits while failCommits is set
type flakyBackend struct {
	persistence.SnapshotBackend
	failCommits atomic.Bool
	commits     atomic.Int32
}

func (b *flakyBackend) Commit(ctx context.Context, snapshots map[persistence.Family][]byte) error {
	if b.failCommits.Load() {
		return errCommitFailed
	}
	b.commits.Add(1)
	return b.SnapshotBackend.Commit(ctx, snapshots)
}

func testSeed() Seed {
	return Seed{
		AdminName:         "admin",
		AdminPasswordHash: "hash",
		AdminBalance:      100000,
		Items:             DefaultSeedItems(),
	}
}

func newTestUnitOfWork(t *testing.T, backend persistence.SnapshotBackend) *UnitOfWork {
	t.Helper()
	return NewUnitOfWork(backend, testSeed(), 200*core.Millisecond, logger.NewNoopLogger(), timeadapter.NewRealTimeProvider())
}
