package catalog

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
)

// UpdateItem edits an item owned by the acting seller. A new image replaces the
// old one, which is removed once the change is committed.
func (u *UseCase) UpdateItem(
	ctx context.Context,
	actor string,
	id uint64,
	draft entity.ItemDraft,
	image *usecase.ImageUpload,
) (*entity.Item, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	newImage := ""
	if image != nil && image.Content != nil {
		name, err := u.images.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, err
		}
		newImage = name
	}

	var item *entity.Item
	oldImage := ""
	err := u.uow.Execute(ctx, writeFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		item, err = loadOwned(ctx, tx, actor, id, fmt.Sprintf("edit item %d", id))
		if err != nil {
			return err
		}
		if err := item.Apply(draft, u.timeProvider); err != nil {
			return err
		}
		if newImage != "" {
			oldImage = item.Image
			item.Image = newImage
		}
		return tx.Items().Update(ctx, item)
	})
	if err != nil {
		u.discardImage(ctx, newImage)
		return nil, err
	}

	u.discardImage(ctx, oldImage)
	u.logger.Info("Item updated", map[string]any{
		"item_id": item.ID,
		"seller":  item.Seller,
	})
	return item, nil
}

// DeleteItem removes an item owned by the acting seller together with its image
func (u *UseCase) DeleteItem(ctx context.Context, actor string, id uint64) error {
	image := ""
	err := u.uow.Execute(ctx, writeFamilies, func(ctx context.Context, tx persistence.Transaction) error {
		item, err := loadOwned(ctx, tx, actor, id, fmt.Sprintf("delete item %d", id))
		if err != nil {
			return err
		}
		image = item.Image
		return tx.Items().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	u.discardImage(ctx, image)
	u.logger.Info("Item deleted", map[string]any{
		"item_id": id,
		"seller":  actor,
	})
	return nil
}
