package catalog

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/access"
)

// CreateItem lists a new item for the acting seller
func (u *UseCase) CreateItem(ctx context.Context, actor string, draft entity.ItemDraft, image *usecase.ImageUpload) (*entity.Item, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	imageName, err := u.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	var item *entity.Item
	err = u.uow.Execute(ctx, writeFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		seller, err := tx.Users().GetByName(ctx, actor)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(seller, entity.Seller(), "create item"); err != nil {
			return err
		}

		id, err := tx.Items().NextID(ctx)
		if err != nil {
			return err
		}
		item, err = entity.NewItem(id, draft, seller.Username, imageName, u.timeProvider)
		if err != nil {
			return err
		}
		return tx.Items().Create(ctx, item)
	})
	if err != nil {
		u.discardImage(ctx, imageName)
		return nil, err
	}

	u.logger.Info("Item created", map[string]any{
		"item_id": item.ID,
		"seller":  item.Seller,
		"price":   item.GetPrice(),
		"stock":   item.Stock,
	})
	return item, nil
}

// saveImage stores an upload before the transaction starts, returning the default image when there is none
func (u *UseCase) saveImage(ctx context.Context, image *usecase.ImageUpload) (string, error) {
	if image == nil || image.Content == nil {
		return entity.DefaultImage, nil
	}
	return u.images.Save(ctx, image.Filename, image.Content)
}

// discardImage removes an image that is no longer referenced by any item
func (u *UseCase) discardImage(ctx context.Context, name string) {
	if name == "" || name == entity.DefaultImage {
		return
	}
	if err := u.images.Remove(ctx, name); err != nil {
		u.logger.Warn("Failed to remove image", map[string]any{
			"image": name,
			"error": err.Error(),
		})
	}
}
