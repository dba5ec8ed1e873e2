package persistence

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// ItemRepository reads and writes catalog items inside a unit of work
type ItemRepository interface {
	// GetByID retrieves an item by ID
	//
	// Possible errors:
	// - ErrItemNotFound: If no item has that ID
	GetByID(ctx context.Context, id uint64) (*entity.Item, error)

	// List returns every item ordered by ID
	List(ctx context.Context) ([]*entity.Item, error)

	// ListBySeller returns the items of one seller ordered by ID
	ListBySeller(ctx context.Context, seller string) ([]*entity.Item, error)

	// NextID reserves a fresh item ID. IDs are never reused, even after deletion.
	NextID(ctx context.Context) (uint64, error)

	// Create adds a new item
	Create(ctx context.Context, item *entity.Item) error

	// Update replaces a stored item
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	Update(ctx context.Context, item *entity.Item) error

	// Delete removes an item
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	Delete(ctx context.Context, id uint64) error
}
