package entity

import "time"

// Receipt summarizes a completed purchase
type Receipt struct {
	ItemID       uint64
	ItemName     string
	Quantity     int
	Total        int64
	Buyer        string
	Seller       string
	BuyerBalance int64
	Timestamp    time.Time
	// SellerCredited is false when the seller account no longer exists and the
	// payment was debited without a matching credit
	SellerCredited bool
}

// GetTotal returns the total as a string with 2 decimal places
func (r *Receipt) GetTotal() string {
	return AmountInCentsToString(r.Total)
}
