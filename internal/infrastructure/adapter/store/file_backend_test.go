package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendLoadMissing(t *testing.T) {
	b, err := NewFileBackend(t.TempDir(), "", logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = b.Load(context.Background(), persistence.FamilyUsers)
	assert.ErrorIs(t, err, persistence.ErrSnapshotNotFound)
}

func TestFileBackendCommitAndLoad(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, "", logger.NewNoopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Commit(ctx, map[persistence.Family][]byte{
		persistence.FamilyUsers: []byte(`{"a":1}`),
	}))
	require.NoError(t, b.Commit(ctx, map[persistence.Family][]byte{
		persistence.FamilyUsers: []byte(`{"a":2}`),
		persistence.FamilyItems: []byte(`[]`),
	}))

	data, err := b.Load(ctx, persistence.FamilyUsers)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "items.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"users.json", "items.json"}, names, "no journal or temp files remain")
}

func TestFileBackendRollsJournalForward(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{"old":true}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.json"), []byte(`{"old":true}`), 0o644))

	// simulate a crash after the journal was written but before the family files were replaced
	payload, err := codecJSON.Marshal(journal{Snapshots: map[persistence.Family][]byte{
		persistence.FamilyUsers: []byte(`{"new":true}`),
		persistence.FamilyItems: []byte(`{"new":true}`),
	}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wal.json"), payload, 0o644))

	b, err := NewFileBackend(dir, "wal.json", logger.NewNoopLogger())
	require.NoError(t, err)

	for _, f := range []persistence.Family{persistence.FamilyUsers, persistence.FamilyItems} {
		data, err := b.Load(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, `{"new":true}`, string(data), f)
	}
	_, err = os.Stat(filepath.Join(dir, "wal.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileBackendRecoversBeforeNextLoad(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, "", logger.NewNoopLogger())
	require.NoError(t, err)

	payload, err := codecJSON.Marshal(journal{Snapshots: map[persistence.Family][]byte{
		persistence.FamilyNotifications: []byte(`[]`),
	}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultJournalName), payload, 0o644))

	data, err := b.Load(context.Background(), persistence.FamilyNotifications)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestFileBackendJournalIsTheCommitPoint(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, "", logger.NewNoopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	// Setup: users.json cannot be replaced while a non-empty directory sits in its place
	usersPath := filepath.Join(dir, "users.json")
	require.NoError(t, os.MkdirAll(filepath.Join(usersPath, "blocker"), 0o755))

	// Execute
	err = b.Commit(ctx, map[persistence.Family][]byte{
		persistence.FamilyUsers: []byte(`{"a":1}`),
		persistence.FamilyItems: []byte(`[1]`),
	})

	// Assertions: the journaled commit succeeded and is what readers see
	require.NoError(t, err)
	for family, want := range map[persistence.Family]string{
		persistence.FamilyUsers: `{"a":1}`,
		persistence.FamilyItems: `[1]`,
	} {
		data, err := b.Load(ctx, family)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), family)
	}
	_, err = os.Stat(filepath.Join(dir, DefaultJournalName))
	assert.NoError(t, err, "journal stays until it is applied")

	t.Run("a later single-family commit joins the pending journal", func(t *testing.T) {
		require.NoError(t, b.Commit(ctx, map[persistence.Family][]byte{
			persistence.FamilyItems: []byte(`[2]`),
		}))

		data, err := b.Load(ctx, persistence.FamilyItems)
		require.NoError(t, err)
		assert.Equal(t, `[2]`, string(data))
	})

	t.Run("the journal is applied once the path is free", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(usersPath))

		data, err := b.Load(ctx, persistence.FamilyUsers)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))

		onDisk, err := os.ReadFile(filepath.Join(dir, "items.json"))
		require.NoError(t, err)
		assert.Equal(t, `[2]`, string(onDisk))
		_, err = os.Stat(filepath.Join(dir, DefaultJournalName))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileBackendWithUnitOfWork(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir, "", logger.NewNoopLogger())
	require.NoError(t, err)

	uow := newTestUnitOfWork(t, b)
	require.NoError(t, uow.Initialize(context.Background()))

	// a second process start sees the seeded data
	b2, err := NewFileBackend(dir, "", logger.NewNoopLogger())
	require.NoError(t, err)
	uow2 := newTestUnitOfWork(t, b2)

	err = uow2.Read(context.Background(), persistence.Families(), func(ctx context.Context, tx persistence.Transaction) error {
		_, err := tx.Users().GetByName(ctx, "admin")
		if err != nil {
			return err
		}
		_, err = tx.Items().GetByID(ctx, 1)
		return err
	})
	assert.NoError(t, err)
}
