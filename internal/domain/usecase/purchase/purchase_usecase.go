package purchase

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/access"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/catalog"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
)

var families = []persistence.Family{persistence.FamilyUsers, persistence.FamilyItems}

// UseCase buys items: one stock decrement and one ledger transfer in a single unit of work
type UseCase struct {
	uow     persistence.UnitOfWork
	catalog *catalog.UseCase
	ledger  *ledger.Ledger
	logger  coreport.Logger
}

// NewPurchaseUseCase creates a new purchase UseCase
func NewPurchaseUseCase(
	uow persistence.UnitOfWork,
	catalog *catalog.UseCase,
	ledger *ledger.Ledger,
	logger coreport.Logger,
) *UseCase {
	return &UseCase{
		uow:     uow,
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
	}
}

var _ usecase.PurchaseUseCase = (*UseCase)(nil)

// Purchase buys quantity units of an item for buyer.
// Stock is checked before funds, so a buyer who can afford nothing still sees OutOfStock first.
func (u *UseCase) Purchase(ctx context.Context, buyer string, itemID uint64, quantity int) (*entity.Receipt, error) {
	var receipt *entity.Receipt
	err := u.uow.Execute(ctx, families, func(ctx context.Context, tx persistence.Transaction) error {
		account, err := tx.Users().GetByName(ctx, buyer)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(account, entity.Buyer(), "purchase"); err != nil {
			return err
		}

		item, err := u.catalog.DecrementStock(ctx, tx.Items(), itemID, quantity)
		if err != nil {
			return err
		}
		total, err := item.Total(quantity)
		if err != nil {
			return err
		}

		receipt, err = u.ledger.Transfer(ctx, tx.Users(), account, item.Seller, total, ledger.Line{
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: quantity,
		})
		return err
	})
	if err != nil {
		u.logger.Debug("Purchase rejected", map[string]any{
			"buyer":    buyer,
			"item_id":  itemID,
			"quantity": quantity,
			"error":    err.Error(),
		})
		return nil, err
	}

	u.logger.Info("Purchase completed", map[string]any{
		"buyer":           receipt.Buyer,
		"seller":          receipt.Seller,
		"item_id":         receipt.ItemID,
		"quantity":        receipt.Quantity,
		"total":           receipt.GetTotal(),
		"seller_credited": receipt.SellerCredited,
	})
	return receipt, nil
}
