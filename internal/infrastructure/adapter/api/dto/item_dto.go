package dto

import (
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// ItemForm is the multipart form of an item create or edit. The image file is read separately.
type ItemForm struct {
	Name        string `form:"name" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Description string `form:"description"`
	Stock       int    `form:"stock"`
}

// Draft converts the form into a domain draft
func (f ItemForm) Draft() (entity.ItemDraft, error) {
	price, err := entity.ValidatePositiveAmount(f.Price)
	if err != nil {
		return entity.ItemDraft{}, err
	}
	return entity.ItemDraft{
		Name:        f.Name,
		Price:       price,
		Description: f.Description,
		Stock:       f.Stock,
	}, nil
}

// ItemResponse is the public view of a catalog item
type ItemResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ImageURL    string    `json:"imageUrl"`
	Seller      string    `json:"seller"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewItemResponse maps an item to its API form
func NewItemResponse(i *entity.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Price:       i.GetPrice(),
		Description: i.Description,
		Image:       i.Image,
		ImageURL:    "/images/" + i.Image,
		Seller:      i.Seller,
		Stock:       i.Stock,
		UpdatedAt:   i.UpdatedAt,
	}
}

// NewItemListResponse maps a list of items
func NewItemListResponse(items []*entity.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, NewItemResponse(i))
	}
	return out
}
