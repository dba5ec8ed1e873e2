// Package storetest builds in-memory record stores for use case tests
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/store"
	timeadapter "github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/time"
)

// AdminName is the seeded level-3 admin
const AdminName = "admin"

// Fixture is a seeded in-memory store
type Fixture struct {
	t            *testing.T
	Backend      *store.MemoryBackend
	UoW          *store.UnitOfWork
	TimeProvider core.TimeProvider
}

// New returns a store seeded with the admin (balance 1000.00) and the starter catalog
func New(t *testing.T) *Fixture {
	t.Helper()
	return NewWithLockTimeout(t, 2*core.Second)
}

// NewWithLockTimeout is New with a custom bound on every lock wait
func NewWithLockTimeout(t *testing.T, lockTimeout core.Duration) *Fixture {
	t.Helper()

	tp := timeadapter.NewRealTimeProvider()
	backend := store.NewMemoryBackend()
	seed := store.Seed{
		AdminName:         AdminName,
		AdminPasswordHash: "admin123",
		AdminBalance:      100000,
		Items:             store.DefaultSeedItems(),
	}
	uow := store.NewUnitOfWork(backend, seed, lockTimeout, logger.NewNoopLogger(), tp)
	require.NoError(t, uow.Initialize(context.Background()))

	return &Fixture{t: t, Backend: backend, UoW: uow, TimeProvider: tp}
}

// AddUser stores a user with the given role and balance in cents
func (f *Fixture) AddUser(name string, role entity.Role, balance int64) *entity.User {
	f.t.Helper()

	u, err := entity.NewUser(name, "secret", balance, role, f.TimeProvider)
	require.NoError(f.t, err)
	err = f.UoW.Execute(context.Background(), []persistence.Family{persistence.FamilyUsers},
		func(ctx context.Context, tx persistence.Transaction) error {
			return tx.Users().Create(ctx, u)
		})
	require.NoError(f.t, err)
	return u
}

// AddItem lists an item for seller and returns it with its assigned ID
func (f *Fixture) AddItem(seller string, draft entity.ItemDraft) *entity.Item {
	f.t.Helper()

	var item *entity.Item
	err := f.UoW.Execute(context.Background(), []persistence.Family{persistence.FamilyItems},
		func(ctx context.Context, tx persistence.Transaction) error {
			id, err := tx.Items().NextID(ctx)
			if err != nil {
				return err
			}
			item, err = entity.NewItem(id, draft, seller, entity.DefaultImage, f.TimeProvider)
			if err != nil {
				return err
			}
			return tx.Items().Create(ctx, item)
		})
	require.NoError(f.t, err)
	return item
}

// DeleteUser removes a user directly, leaving their items and notifications behind
func (f *Fixture) DeleteUser(name string) {
	f.t.Helper()

	err := f.UoW.Execute(context.Background(), []persistence.Family{persistence.FamilyUsers},
		func(ctx context.Context, tx persistence.Transaction) error {
			return tx.Users().Delete(ctx, name)
		})
	require.NoError(f.t, err)
}

// User reads the committed state of a user
func (f *Fixture) User(name string) *entity.User {
	f.t.Helper()

	var u *entity.User
	err := f.UoW.Read(context.Background(), []persistence.Family{persistence.FamilyUsers},
		func(ctx context.Context, tx persistence.Transaction) error {
			var err error
			u, err = tx.Users().GetByName(ctx, name)
			return err
		})
	require.NoError(f.t, err)
	return u
}

// Item reads the committed state of an item
func (f *Fixture) Item(id uint64) *entity.Item {
	f.t.Helper()

	var it *entity.Item
	err := f.UoW.Read(context.Background(), []persistence.Family{persistence.FamilyItems},
		func(ctx context.Context, tx persistence.Transaction) error {
			var err error
			it, err = tx.Items().GetByID(ctx, id)
			return err
		})
	require.NoError(f.t, err)
	return it
}

// Notifications reads every committed notification
func (f *Fixture) Notifications() []*entity.Notification {
	f.t.Helper()

	var list []*entity.Notification
	err := f.UoW.Read(context.Background(), []persistence.Family{persistence.FamilyNotifications},
		func(ctx context.Context, tx persistence.Transaction) error {
			var err error
			list, err = tx.Notifications().List(ctx)
			return err
		})
	require.NoError(f.t, err)
	return list
}
