package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/marketplace/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemDraftValidate(t *testing.T) {
	testCases := []struct {
		name      string
		draft     ItemDraft
		errorType error
	}{
		{"valid", ItemDraft{Name: " Lamp ", Price: 999, Stock: 0}, nil},
		{"empty name", ItemDraft{Name: "  ", Price: 999, Stock: 1}, errs.ErrInvalidInput},
		{"zero price", ItemDraft{Name: "Lamp", Price: 0, Stock: 1}, errs.ErrInvalidAmount},
		{"negative stock", ItemDraft{Name: "Lamp", Price: 1, Stock: -1}, errs.ErrInvalidQuantity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.errorType == nil {
				assert.NoError(t, err)
				assert.Equal(t, "Lamp", tc.draft.Name)
				return
			}
			assert.ErrorIs(t, err, tc.errorType)
		})
	}
}

func TestNewItem(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	item, err := NewItem(1, ItemDraft{Name: "Fidget Toy", Price: 2500, Description: "A fun stress-relieving toy", Stock: 100}, "admin", "", mockTime)
	require.NoError(t, err)

	assert.Equal(t, DefaultImage, item.Image)
	assert.Equal(t, "25.00", item.GetPrice())
	assert.True(t, item.OwnedBy("admin"))
	assert.False(t, item.OwnedBy("bob"))
	assert.Equal(t, fixedTime, item.CreatedAt)

	_, err = NewItem(0, ItemDraft{Name: "x", Price: 1}, "admin", "", mockTime)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestItemDecrementStock(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	item, err := NewItem(7, ItemDraft{Name: "Lamp", Price: 1000, Stock: 3}, "bob", "lamp.png", mockTime)
	require.NoError(t, err)

	require.NoError(t, item.DecrementStock(2, mockTime))
	assert.Equal(t, 1, item.Stock)

	err = item.DecrementStock(2, mockTime)
	assert.ErrorIs(t, err, errs.ErrOutOfStock)
	var detailed *errs.OutOfStockError
	require.ErrorAs(t, err, &detailed)
	assert.Equal(t, uint64(7), detailed.ItemID)
	assert.Equal(t, 1, item.Stock)

	assert.ErrorIs(t, item.DecrementStock(0, mockTime), errs.ErrInvalidQuantity)
}

func TestItemTotal(t *testing.T) {
	item := &Item{ID: 1, Price: 2500}

	total, err := item.Total(2)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total)

	_, err = item.Total(0)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
}

func TestItemApply(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	item, err := NewItem(2, ItemDraft{Name: "Lamp", Price: 1000, Stock: 3}, "bob", "lamp.png", mockTime)
	require.NoError(t, err)

	require.NoError(t, item.Apply(ItemDraft{Name: "Desk Lamp", Price: 1200, Description: "bright", Stock: 5}, mockTime))
	assert.Equal(t, "Desk Lamp", item.Name)
	assert.Equal(t, "lamp.png", item.Image)
	assert.Equal(t, "bob", item.Seller)

	assert.Error(t, item.Apply(ItemDraft{Name: "", Price: 1}, mockTime))
	assert.Equal(t, "Desk Lamp", item.Name)
}
