package usecase

import (
	"context"
	"io"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// ImageUpload is an optional image attached to an item create or edit
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CatalogUseCase defines item listing operations
type CatalogUseCase interface {
	// ListCatalog returns every item ordered by ID
	ListCatalog(ctx context.Context) ([]*entity.Item, error)

	// ViewItem returns one item
	ViewItem(ctx context.Context, id uint64) (*entity.Item, error)

	// ListBySeller returns the items listed by seller
	ListBySeller(ctx context.Context, seller string) ([]*entity.Item, error)

	// CreateItem lists a new item for the acting seller
	CreateItem(ctx context.Context, actor string, draft entity.ItemDraft, image *ImageUpload) (*entity.Item, error)

	// UpdateItem edits an item owned by the acting seller, optionally replacing its image
	UpdateItem(ctx context.Context, actor string, id uint64, draft entity.ItemDraft, image *ImageUpload) (*entity.Item, error)

	// DeleteItem removes an item owned by the acting seller
	DeleteItem(ctx context.Context, actor string, id uint64) error
}
