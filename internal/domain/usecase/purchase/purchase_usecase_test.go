package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/catalog"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/store/storetest"
	mockcore "github.com/amirhossein-jamali/marketplace/mocks/port/core"
)

func newUseCase(t *testing.T, fx *storetest.Fixture) *UseCase {
	t.Helper()

	mockLogger := mockcore.NewMockLogger(t)
	mockLogger.EXPECT().Debug(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()
	mockLogger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()

	cat := catalog.NewCatalogUseCase(fx.UoW, nil, fx.TimeProvider, mockLogger)
	return NewPurchaseUseCase(fx.UoW, cat, ledger.NewLedger(fx.TimeProvider, mockLogger), mockLogger)
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Alice buys two fidget toys from the admin", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 10000)
		uc := newUseCase(t, fx)

		// Execute
		receipt, err := uc.Purchase(ctx, "alice", 1, 2)

		// Assertions
		require.NoError(t, err)
		assert.Equal(t, int64(5000), receipt.Total)
		assert.Equal(t, "50.00", receipt.GetTotal())
		assert.True(t, receipt.SellerCredited)

		alice := fx.User("alice")
		assert.Equal(t, "50.00", alice.GetBalance())
		require.Len(t, alice.History, 1)
		assert.Equal(t, entity.HistoryPurchase, alice.History[0].Kind)
		assert.Equal(t, "Fidget Toy", alice.History[0].ItemName)

		admin := fx.User(storetest.AdminName)
		assert.Equal(t, "1050.00", admin.GetBalance())
		require.Len(t, admin.History, 1)
		assert.Equal(t, "alice", admin.History[0].Counterparty)

		assert.Equal(t, 98, fx.Item(1).Stock)
	})

	t.Run("Insufficient funds leaves every record untouched", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 2000)
		uc := newUseCase(t, fx)

		// Execute
		_, err := uc.Purchase(ctx, "alice", 1, 1)

		// Assertions
		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, int64(2000), fx.User("alice").Balance())
		assert.Equal(t, 100, fx.Item(1).Stock)
		assert.Equal(t, "1000.00", fx.User(storetest.AdminName).GetBalance())
	})

	t.Run("Stock is checked before funds", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 0)
		uc := newUseCase(t, fx)

		_, err := uc.Purchase(ctx, "alice", 1, 101)
		assert.ErrorIs(t, err, errs.ErrOutOfStock)
	})

	t.Run("Invalid quantity", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 10000)
		uc := newUseCase(t, fx)

		_, err := uc.Purchase(ctx, "alice", 1, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
	})

	t.Run("Unknown item and buyer", func(t *testing.T) {
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 10000)
		uc := newUseCase(t, fx)

		_, err := uc.Purchase(ctx, "alice", 7, 1)
		assert.ErrorIs(t, err, errs.ErrItemNotFound)

		_, err = uc.Purchase(ctx, "nobody", 1, 1)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("Item of a deleted seller is a sink transfer", func(t *testing.T) {
		// Setup
		fx := storetest.New(t)
		fx.AddUser("alice", entity.Buyer(), 10000)
		item := fx.AddItem("ghost", entity.ItemDraft{Name: "Orphan", Price: 1000, Stock: 1})
		uc := newUseCase(t, fx)

		// Execute
		receipt, err := uc.Purchase(ctx, "alice", item.ID, 1)

		// Assertions
		require.NoError(t, err)
		assert.False(t, receipt.SellerCredited)
		assert.Equal(t, int64(9000), fx.User("alice").Balance())
		assert.Equal(t, 0, fx.Item(item.ID).Stock)
	})
}

func TestPurchaseConcurrentLastUnit(t *testing.T) {
	// Setup
	fx := storetest.New(t)
	item := fx.AddItem(storetest.AdminName, entity.ItemDraft{Name: "Last One", Price: 500, Stock: 1})
	buyers := []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8"}
	for _, name := range buyers {
		fx.AddUser(name, entity.Buyer(), 1000)
	}
	uc := newUseCase(t, fx)

	// Execute
	var wg sync.WaitGroup
	results := make([]error, len(buyers))
	for i, name := range buyers {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, results[i] = uc.Purchase(context.Background(), name, item.ID, 1)
		}(i, name)
	}
	wg.Wait()

	// Assertions
	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, errs.ErrOutOfStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, fx.Item(item.ID).Stock)

	var total int64
	for _, name := range buyers {
		total += fx.User(name).Balance()
	}
	assert.Equal(t, int64(len(buyers)*1000-500), total)
	assert.Equal(t, int64(100500), fx.User(storetest.AdminName).Balance())
}

func TestPurchaseConcurrentBalance(t *testing.T) {
	// Setup
	fx := storetest.New(t)
	fx.AddUser("alice", entity.Buyer(), 10000)
	uc := newUseCase(t, fx)

	// Execute: 10 purchases of 25.00 against a 100.00 balance
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Purchase(context.Background(), "alice", 1, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	// Assertions
	assert.Equal(t, 4, succeeded)
	assert.Equal(t, int64(0), fx.User("alice").Balance())
	assert.Equal(t, 96, fx.Item(1).Stock)
	assert.Len(t, fx.User("alice").History, 4)
}
