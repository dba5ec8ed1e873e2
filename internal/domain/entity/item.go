package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
)

// DefaultImage is the placeholder image shared by items without an upload. It is never deleted.
const DefaultImage = "default_item.jpg"

// MaxItemNameLength bounds the length of an item name in runes
const MaxItemNameLength = 200

// ItemDraft carries the seller-editable fields of an item
type ItemDraft struct {
	Name        string
	Price       int64 // cents, > 0
	Description string
	Stock       int
}

// Validate trims the draft and checks its fields
func (d *ItemDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)

	if d.Name == "" || len([]rune(d.Name)) > MaxItemNameLength {
		return fmt.Errorf("%w: item name must be 1-%d characters", errs.ErrInvalidInput, MaxItemNameLength)
	}
	if d.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", errs.ErrInvalidAmount)
	}
	if d.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", errs.ErrInvalidQuantity)
	}
	return nil
}

// Item is a catalog listing owned by a seller
type Item struct {
	ID          uint64
	Name        string
	Price       int64 // cents
	Description string
	Image       string
	Seller      string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem builds an item from a validated draft
func NewItem(id uint64, draft ItemDraft, seller, image string, timeProvider coreport.TimeProvider) (*Item, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: item id must be positive", errs.ErrInvalidInput)
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if image == "" {
		image = DefaultImage
	}

	now := timeProvider.Now()
	return &Item{
		ID:          id,
		Name:        draft.Name,
		Price:       draft.Price,
		Description: draft.Description,
		Image:       image,
		Seller:      seller,
		Stock:       draft.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply replaces the editable fields with those of draft
func (i *Item) Apply(draft ItemDraft, timeProvider coreport.TimeProvider) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	i.Name = draft.Name
	i.Price = draft.Price
	i.Description = draft.Description
	i.Stock = draft.Stock
	i.UpdatedAt = timeProvider.Now()
	return nil
}

// GetPrice returns the price as a string with 2 decimal places
func (i *Item) GetPrice() string {
	return AmountInCentsToString(i.Price)
}

// OwnedBy reports whether username is the item's seller
func (i *Item) OwnedBy(username string) bool {
	return i.Seller == username
}

// Total returns the cost of quantity units
func (i *Item) Total(quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidQuantity)
	}
	return MultiplyAmount(i.Price, quantity)
}

// DecrementStock removes quantity units, failing without change if fewer are available
func (i *Item) DecrementStock(quantity int, timeProvider coreport.TimeProvider) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidQuantity)
	}
	if i.Stock < quantity {
		return errs.NewOutOfStockError(i.ID, quantity, i.Stock)
	}
	i.Stock -= quantity
	i.UpdatedAt = timeProvider.Now()
	return nil
}

// Clone returns a copy of the item
func (i *Item) Clone() *Item {
	c := *i
	return &c
}
