// Package ledger moves money between accounts and records it in their history
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
)

// Line describes what a transfer paid for
type Line struct {
	ItemID   uint64
	ItemName string
	Quantity int
}

// Ledger applies balance changes inside an open unit of work
type Ledger struct {
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewLedger creates a new Ledger
func NewLedger(timeProvider coreport.TimeProvider, logger coreport.Logger) *Ledger {
	return &Ledger{
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Transfer debits buyer and credits seller by amountInCents and appends the matching
// history entries. buyer must be loaded from users in the same transaction.
//
// If the seller account no longer exists the buyer is still debited and the receipt
// reports SellerCredited=false.
func (l *Ledger) Transfer(
	ctx context.Context,
	users persistence.UserRepository,
	buyer *entity.User,
	sellerName string,
	amountInCents int64,
	line Line,
) (*entity.Receipt, error) {
	if amountInCents <= 0 {
		return nil, fmt.Errorf("%w: transfer must be positive", errs.ErrInvalidAmount)
	}

	var seller *entity.User
	if sellerName == buyer.Username {
		seller = buyer
	} else {
		s, err := users.GetByName(ctx, sellerName)
		switch {
		case err == nil:
			seller = s
		case errors.Is(err, errs.ErrUserNotFound):
			l.logger.Warn("Seller account missing, payment is not credited", map[string]any{
				"buyer":   buyer.Username,
				"seller":  sellerName,
				"item_id": line.ItemID,
				"amount":  entity.AmountInCentsToString(amountInCents),
			})
		default:
			return nil, err
		}
	}

	if err := buyer.Debit(amountInCents, l.timeProvider); err != nil {
		return nil, err
	}
	if seller != nil {
		if err := seller.Credit(amountInCents, l.timeProvider); err != nil {
			return nil, err
		}
	}

	now := l.timeProvider.Now()
	buyer.AppendHistory(entity.HistoryEntry{
		Kind:      entity.HistoryPurchase,
		ItemID:    line.ItemID,
		ItemName:  line.ItemName,
		Quantity:  line.Quantity,
		Total:     amountInCents,
		Timestamp: now,
	})
	if seller != nil {
		seller.AppendHistory(entity.HistoryEntry{
			Kind:         entity.HistorySale,
			ItemID:       line.ItemID,
			ItemName:     line.ItemName,
			Quantity:     line.Quantity,
			Total:        amountInCents,
			Counterparty: buyer.Username,
			Timestamp:    now,
		})
	}

	if err := users.Update(ctx, buyer); err != nil {
		return nil, err
	}
	if seller != nil && seller != buyer {
		if err := users.Update(ctx, seller); err != nil {
			return nil, err
		}
	}

	return &entity.Receipt{
		ItemID:         line.ItemID,
		ItemName:       line.ItemName,
		Quantity:       line.Quantity,
		Total:          amountInCents,
		Buyer:          buyer.Username,
		Seller:         sellerName,
		BuyerBalance:   buyer.Balance(),
		Timestamp:      now,
		SellerCredited: seller != nil,
	}, nil
}

// Deposit credits target with amountInCents on behalf of actor
func (l *Ledger) Deposit(
	ctx context.Context,
	users persistence.UserRepository,
	actor string,
	target *entity.User,
	amountInCents int64,
) error {
	if err := target.Credit(amountInCents, l.timeProvider); err != nil {
		return err
	}
	target.AppendHistory(entity.HistoryEntry{
		Kind:         entity.HistoryDeposit,
		Total:        amountInCents,
		Counterparty: actor,
		Timestamp:    l.timeProvider.Now(),
	})
	return users.Update(ctx, target)
}
