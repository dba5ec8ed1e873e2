package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/store/storetest"
	mockcore "github.com/amirhossein-jamali/marketplace/mocks/port/core"
)

func newUseCase(t *testing.T, fx *storetest.Fixture) *UseCase {
	t.Helper()
	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Error(mock.Anything, mock.Anything).Maybe()
	return NewAdminUseCase(fx.UoW, ledger.NewLedger(fx.TimeProvider, mockLogger), fx.TimeProvider, mockLogger)
}

func TestPromote(t *testing.T) {
	ctx := context.Background()

	t.Run("Level 3 makes a buyer a level 2 admin", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("bob", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		// Execute
		promoted, err := uc.Promote(ctx, storetest.AdminName, "bob", entity.Admin(2))

		// Assertions
		require.NoError(t, err)
		assert.Equal(t, entity.Admin(2), promoted.Role)
		assert.Equal(t, entity.Admin(2), fx.User("bob").Role)

		notices := fx.Notifications()
		require.Len(t, notices, 1)
		assert.Equal(t, entity.NotificationAdmin, notices[0].Type)
		assert.Equal(t, storetest.AdminName, notices[0].From)
		assert.Contains(t, notices[0].Message, "bob")
	})

	t.Run("Level 2 cannot grant level 2", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("ops", entity.Admin(2), 0)
		fx.AddUser("bob", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		// Execute
		_, err := uc.Promote(ctx, "ops", "bob", entity.Admin(2))

		// Assertions
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, entity.Buyer(), fx.User("bob").Role)
		assert.Empty(t, fx.Notifications())
	})

	t.Run("Level 2 grants level 1 and seller", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("ops", entity.Admin(2), 0)
		fx.AddUser("bob", entity.Buyer(), 0)
		fx.AddUser("carol", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		_, err := uc.Promote(ctx, "ops", "bob", entity.Admin(1))
		require.NoError(t, err)
		_, err = uc.Promote(ctx, "ops", "carol", entity.Seller())
		require.NoError(t, err)

		assert.Equal(t, entity.Admin(1), fx.User("bob").Role)
		assert.Equal(t, entity.Seller(), fx.User("carol").Role)
	})

	t.Run("Self promotion is forbidden", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("ops", entity.Admin(2), 0)
		uc := newUseCase(t, fx)

		_, err := uc.Promote(ctx, "ops", "ops", entity.Admin(1))
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Nobody can grant level 3", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("bob", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		_, err := uc.Promote(ctx, storetest.AdminName, "bob", entity.Admin(3))
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Seller cannot promote", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("bob", entity.Seller(), 0)
		fx.AddUser("alice", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		_, err := uc.Promote(ctx, "bob", "alice", entity.Seller())
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Unknown target and invalid role", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		_, err := uc.Promote(ctx, storetest.AdminName, "ghost", entity.Seller())
		assert.ErrorIs(t, err, errs.ErrUserNotFound)

		_, err = uc.Promote(ctx, storetest.AdminName, "ghost", entity.Role{})
		assert.ErrorIs(t, err, errs.ErrInvalidRole)
	})
}

func TestAddFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("Level 2 credits a user", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("ops", entity.Admin(2), 0)
		fx.AddUser("alice", entity.Buyer(), 1000)
		uc := newUseCase(t, fx)

		// Execute
		user, err := uc.AddFunds(ctx, "ops", "alice", 2550)

		// Assertions
		require.NoError(t, err)
		assert.Equal(t, "35.50", user.GetBalance())
		alice := fx.User("alice")
		assert.Equal(t, int64(3550), alice.Balance())
		require.Len(t, alice.History, 1)
		assert.Equal(t, entity.HistoryDeposit, alice.History[0].Kind)
		assert.Equal(t, "ops", alice.History[0].Counterparty)
	})

	t.Run("Admin tops up own account", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		_, err := uc.AddFunds(ctx, storetest.AdminName, storetest.AdminName, 100)
		require.NoError(t, err)
		assert.Equal(t, "1001.00", fx.User(storetest.AdminName).GetBalance())
	})

	t.Run("Level 1 is forbidden", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("mod", entity.Admin(1), 0)
		fx.AddUser("alice", entity.Buyer(), 1000)
		uc := newUseCase(t, fx)

		_, err := uc.AddFunds(ctx, "mod", "alice", 100)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, int64(1000), fx.User("alice").Balance())
	})

	t.Run("Amount must be positive", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		_, err := uc.AddFunds(ctx, storetest.AdminName, storetest.AdminName, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Level 3 deletes a seller whose items remain", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("bob", entity.Seller(), 0)
		item := fx.AddItem("bob", entity.ItemDraft{Name: "Lamp", Price: 100, Stock: 1})
		uc := newUseCase(t, fx)

		// Execute
		err := uc.DeleteUser(ctx, storetest.AdminName, "bob")

		// Assertions
		require.NoError(t, err)
		users, err := uc.ListUsers(ctx, storetest.AdminName)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "bob", fx.Item(item.ID).Seller)
	})

	t.Run("Cannot delete self", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		err := uc.DeleteUser(ctx, storetest.AdminName, storetest.AdminName)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Level 2 is forbidden", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("ops", entity.Admin(2), 0)
		fx.AddUser("alice", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		err := uc.DeleteUser(ctx, "ops", "alice")
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("Unknown user", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		err := uc.DeleteUser(ctx, storetest.AdminName, "ghost")
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	fx := storetest.New(t)
	fx.AddUser("mod", entity.Admin(1), 0)
	fx.AddUser("alice", entity.Buyer(), 0)
	uc := newUseCase(t, fx)

	users, err := uc.ListUsers(ctx, "mod")
	require.NoError(t, err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"admin", "alice", "mod"}, names)

	_, err = uc.ListUsers(ctx, "alice")
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

func TestRepairFamily(t *testing.T) {
	ctx := context.Background()
	owner := &entity.Session{Username: storetest.AdminName, Role: entity.Admin(3)}
	notifs := []persistence.Family{persistence.FamilyNotifications}
	noop := func(context.Context, persistence.Transaction) error { return nil }

	t.Run("Quarantine is lifted once the family decodes", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		uc := newUseCase(t, fx)
		fx.Backend.Put(persistence.FamilyNotifications, []byte("{not json"))
		require.ErrorIs(t, fx.UoW.Read(ctx, notifs, noop), errs.ErrStoreCorrupt)

		// Execute: still corrupt
		err := uc.RepairFamily(ctx, owner, persistence.FamilyNotifications)
		assert.ErrorIs(t, err, errs.ErrStoreCorrupt)

		// Execute: fixed by the operator
		fx.Backend.Put(persistence.FamilyNotifications, []byte("[]"))
		err = uc.RepairFamily(ctx, owner, persistence.FamilyNotifications)

		// Assertions
		require.NoError(t, err)
		assert.NoError(t, fx.UoW.Read(ctx, notifs, noop))
	})

	t.Run("Requires level 3", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		err := uc.RepairFamily(ctx, &entity.Session{Username: "ops", Role: entity.Admin(2)}, persistence.FamilyUsers)
		assert.ErrorIs(t, err, errs.ErrForbidden)

		err = uc.RepairFamily(ctx, nil, persistence.FamilyUsers)
		assert.ErrorIs(t, err, errs.ErrAuth)
	})

	t.Run("Stored role wins over a stale session", func(t *testing.T) {
		// Setup: the session was issued before ops was demoted
		fx := storetest.New(t)
		uc := newUseCase(t, fx)
		fx.AddUser("ops", entity.Admin(1), 0)
		stale := &entity.Session{Username: "ops", Role: entity.Admin(3)}

		// Execute
		err := uc.RepairFamily(ctx, stale, persistence.FamilyNotifications)

		// Assertions
		assert.ErrorIs(t, err, errs.ErrForbidden)

		err = uc.RepairFamily(ctx, &entity.Session{Username: "ghost", Role: entity.Admin(3)}, persistence.FamilyItems)
		assert.ErrorIs(t, err, errs.ErrAuth)
	})

	t.Run("Unknown family", func(t *testing.T) {
		fx := storetest.New(t)
		uc := newUseCase(t, fx)

		err := uc.RepairFamily(ctx, owner, persistence.Family("orders"))
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}
