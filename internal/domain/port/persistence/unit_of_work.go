package persistence

import (
	"context"
)

// Transaction exposes the repositories of the families locked by a unit of work.
// Asking for a family that was not declared is a programming error and panics.
type Transaction interface {
	Users() UserRepository
	Items() ItemRepository
	Notifications() NotificationRepository
}

// TxFunc is the body of a logical transaction
type TxFunc func(ctx context.Context, tx Transaction) error

// UnitOfWork runs logical transactions against the record store
type UnitOfWork interface {
	// Execute locks families for writing, loads them, runs fn and commits every
	// modified family at once. If fn returns an error nothing is committed.
	//
	// Possible errors:
	// - ErrStoreBusy: If a family lock is not acquired within the lock timeout
	// - ErrStoreCorrupt: If a family cannot be decoded or is quarantined
	// - any error returned by fn
	Execute(ctx context.Context, families []Family, fn TxFunc) error

	// Read locks families for reading and runs fn. Changes made by fn are discarded.
	Read(ctx context.Context, families []Family, fn TxFunc) error

	// Repair re-reads a quarantined family and lifts the quarantine if it now decodes
	//
	// Possible errors:
	// - ErrStoreCorrupt: If the family still fails to decode
	Repair(ctx context.Context, family Family) error
}
