package usecase

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// PurchaseUseCase defines the buy operation
type PurchaseUseCase interface {
	// Purchase buys quantity units of an item. Stock is checked before funds;
	// on any failure neither the buyer, the seller nor the item changes.
	Purchase(ctx context.Context, buyer string, itemID uint64, quantity int) (*entity.Receipt, error)
}
