package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// itemRepository is the items family loaded into one unit of work
type itemRepository struct {
	items  map[uint64]*entity.Item
	lastID uint64 // highest id ever issued
	dirty  bool
}

func newItemRepository(items map[uint64]*entity.Item, lastID uint64) *itemRepository {
	if items == nil {
		items = make(map[uint64]*entity.Item)
	}
	return &itemRepository{items: items, lastID: lastID}
}

func (r *itemRepository) GetByID(_ context.Context, id uint64) (*entity.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrItemNotFound, id)
	}
	return it.Clone(), nil
}

func (r *itemRepository) List(_ context.Context) ([]*entity.Item, error) {
	return r.filter(func(*entity.Item) bool { return true }), nil
}

func (r *itemRepository) ListBySeller(_ context.Context, seller string) ([]*entity.Item, error) {
	return r.filter(func(it *entity.Item) bool { return it.OwnedBy(seller) }), nil
}

func (r *itemRepository) filter(keep func(*entity.Item) bool) []*entity.Item {
	out := make([]*entity.Item, 0, len(r.items))
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID returns max(last issued, max existing) + 1 and records it as issued
func (r *itemRepository) NextID(_ context.Context) (uint64, error) {
	next := r.lastID
	for id := range r.items {
		if id > next {
			next = id
		}
	}
	next++
	r.lastID = next
	r.dirty = true
	return next, nil
}

func (r *itemRepository) Create(_ context.Context, item *entity.Item) error {
	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("%w: item id %d already in use", errs.ErrInvalidInput, item.ID)
	}
	r.items[item.ID] = item.Clone()
	if item.ID > r.lastID {
		r.lastID = item.ID
	}
	r.dirty = true
	return nil
}

func (r *itemRepository) Update(_ context.Context, item *entity.Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("%w: %d", errs.ErrItemNotFound, item.ID)
	}
	r.items[item.ID] = item.Clone()
	r.dirty = true
	return nil
}

func (r *itemRepository) Delete(_ context.Context, id uint64) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %d", errs.ErrItemNotFound, id)
	}
	delete(r.items, id)
	r.dirty = true
	return nil
}

func (r *itemRepository) encode() ([]byte, error) {
	return encodeItems(r.items, r.lastID)
}
