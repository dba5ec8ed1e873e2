package catalog

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/access"
)

var (
	readFamilies  = []persistence.Family{persistence.FamilyItems}
	writeFamilies = []persistence.Family{persistence.FamilyUsers, persistence.FamilyItems}
)

// UseCase handles item listings
type UseCase struct {
	uow          persistence.UnitOfWork
	images       persistence.ImageStore
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewCatalogUseCase creates a new catalog UseCase
func NewCatalogUseCase(
	uow persistence.UnitOfWork,
	images persistence.ImageStore,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UseCase {
	return &UseCase{
		uow:          uow,
		images:       images,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ usecase.CatalogUseCase = (*UseCase)(nil)

// ListCatalog returns every item ordered by ID
func (u *UseCase) ListCatalog(ctx context.Context) ([]*entity.Item, error) {
	var items []*entity.Item
	err := u.uow.Read(ctx, readFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		items, err = tx.Items().List(ctx)
		return err
	})
	return items, err
}

// ViewItem returns one item
func (u *UseCase) ViewItem(ctx context.Context, id uint64) (*entity.Item, error) {
	var item *entity.Item
	err := u.uow.Read(ctx, readFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		item, err = tx.Items().GetByID(ctx, id)
		return err
	})
	return item, err
}

// ListBySeller returns the items listed by seller
func (u *UseCase) ListBySeller(ctx context.Context, seller string) ([]*entity.Item, error) {
	var items []*entity.Item
	err := u.uow.Read(ctx, readFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		items, err = tx.Items().ListBySeller(ctx, seller)
		return err
	})
	return items, err
}

// loadOwned loads actor and an item they own
func loadOwned(ctx context.Context, tx persistence.Transaction, actor string, id uint64, action string) (*entity.Item, error) {
	user, err := tx.Users().GetByName(ctx, actor)
	if err != nil {
		return nil, err
	}
	item, err := tx.Items().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwner(user, item, action); err != nil {
		return nil, err
	}
	return item, nil
}

// DecrementStock removes quantity units of an item inside an open transaction
func (u *UseCase) DecrementStock(ctx context.Context, items persistence.ItemRepository, id uint64, quantity int) (*entity.Item, error) {
	item, err := items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.DecrementStock(quantity, u.timeProvider); err != nil {
		return nil, err
	}
	if err := items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
