package dto

import (
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// DefaultQuantity is bought when a request names no quantity
const DefaultQuantity = 1

// PurchaseRequest is the body of a buy
type PurchaseRequest struct {
	ItemID   uint64 `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

// NewPurchaseRequest returns a request to bind into; an omitted quantity stays at the default
func NewPurchaseRequest() PurchaseRequest {
	return PurchaseRequest{Quantity: DefaultQuantity}
}

// ReceiptResponse summarizes a completed purchase
type ReceiptResponse struct {
	ItemID         uint64    `json:"itemId"`
	ItemName       string    `json:"itemName"`
	Quantity       int       `json:"quantity"`
	Total          string    `json:"total"`
	Seller         string    `json:"seller"`
	Balance        string    `json:"balance"`
	SellerCredited bool      `json:"sellerCredited"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewReceiptResponse maps a receipt to its API form
func NewReceiptResponse(r *entity.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ItemID:         r.ItemID,
		ItemName:       r.ItemName,
		Quantity:       r.Quantity,
		Total:          r.GetTotal(),
		Seller:         r.Seller,
		Balance:        entity.AmountInCentsToString(r.BuyerBalance),
		SellerCredited: r.SellerCredited,
		Timestamp:      r.Timestamp,
	}
}
