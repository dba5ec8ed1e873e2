package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
)

// UnitOfWork implements persistence.UnitOfWork over a SnapshotBackend.
// Each logical transaction loads its families fresh, so nothing is cached between transactions.
type UnitOfWork struct {
	backend      persistence.SnapshotBackend
	locks        *lockSet
	seed         Seed
	logger       coreport.Logger
	timeProvider coreport.TimeProvider

	mu          sync.Mutex
	quarantined map[persistence.Family]error
}

// NewUnitOfWork creates a unit of work. lockTimeout bounds every lock wait.
func NewUnitOfWork(
	backend persistence.SnapshotBackend,
	seed Seed,
	lockTimeout coreport.Duration,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
) *UnitOfWork {
	return &UnitOfWork{
		backend:      backend,
		locks:        newLockSet(lockTimeout, timeProvider),
		seed:         seed,
		logger:       logger,
		timeProvider: timeProvider,
		quarantined:  make(map[persistence.Family]error),
	}
}

// Initialize writes the seed of every family that has never been committed.
// A corrupt family is reported but does not stop the others from loading.
func (u *UnitOfWork) Initialize(ctx context.Context) error {
	var corrupt error
	for _, f := range persistence.Families() {
		err := u.Execute(ctx, []persistence.Family{f}, func(context.Context, persistence.Transaction) error { return nil })
		if err == nil {
			continue
		}
		if !errs.IsStoreCorruptError(err) {
			return err
		}
		corrupt = errors.Join(corrupt, err)
	}
	return corrupt
}

// Execute runs fn as one logical transaction and commits every changed family at once
func (u *UnitOfWork) Execute(ctx context.Context, families []persistence.Family, fn persistence.TxFunc) error {
	return u.run(ctx, families, true, fn)
}

// Read runs fn under shared locks and discards its changes
func (u *UnitOfWork) Read(ctx context.Context, families []persistence.Family, fn persistence.TxFunc) error {
	return u.run(ctx, families, false, fn)
}

func (u *UnitOfWork) run(ctx context.Context, families []persistence.Family, write bool, fn persistence.TxFunc) error {
	families, err := normalizeFamilies(families)
	if err != nil {
		return err
	}

	release, err := u.locks.acquire(ctx, families, write)
	if err != nil {
		u.logger.Warn("Failed to lock record families", map[string]any{
			"families": families,
			"error":    err.Error(),
		})
		return err
	}
	defer release()

	start := u.timeProvider.Now()
	tx, err := u.begin(ctx, families)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if !write {
		return nil
	}

	snapshots, err := tx.encodeDirty()
	if err != nil {
		u.logger.Error("Failed to encode record families", map[string]any{"error": err.Error()})
		return fmt.Errorf("%w: %v", errs.ErrInternalServer, err)
	}
	if len(snapshots) == 0 {
		return nil
	}

	if err := u.backend.Commit(ctx, snapshots); err != nil {
		u.logger.Error("Failed to commit record families", map[string]any{
			"families": families,
			"error":    err.Error(),
		})
		return fmt.Errorf("%w: commit: %v", errs.ErrInternalServer, err)
	}

	u.logger.Debug("Committed record families", map[string]any{
		"families":    families,
		"duration_ms": u.timeProvider.Since(start).Std().Milliseconds(),
	})
	return nil
}

// Repair re-validates family and lifts its quarantine if it decodes
func (u *UnitOfWork) Repair(ctx context.Context, family persistence.Family) error {
	families, err := normalizeFamilies([]persistence.Family{family})
	if err != nil {
		return err
	}

	release, err := u.locks.acquire(ctx, families, true)
	if err != nil {
		return err
	}
	defer release()

	u.mu.Lock()
	delete(u.quarantined, family)
	u.mu.Unlock()

	tx := &transaction{}
	if err := u.load(ctx, tx, family); err != nil {
		return err
	}

	u.logger.Info("Record family passed validation", map[string]any{"family": family})
	return nil
}

func (u *UnitOfWork) begin(ctx context.Context, families []persistence.Family) (*transaction, error) {
	tx := &transaction{}
	for _, f := range families {
		if err := u.load(ctx, tx, f); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// load fills tx with family, seeding it if it was never committed and
// quarantining it if it cannot be decoded
func (u *UnitOfWork) load(ctx context.Context, tx *transaction, family persistence.Family) error {
	u.mu.Lock()
	cause, blocked := u.quarantined[family]
	u.mu.Unlock()
	if blocked {
		return errs.NewStoreCorruptError(string(family), cause)
	}

	data, err := u.backend.Load(ctx, family)
	if errors.Is(err, persistence.ErrSnapshotNotFound) {
		return u.seedFamily(tx, family)
	}
	if err != nil {
		u.logger.Error("Failed to load record family", map[string]any{
			"family": family,
			"error":  err.Error(),
		})
		return fmt.Errorf("%w: load %s: %v", errs.ErrInternalServer, family, err)
	}

	if err := tx.decode(family, data); err != nil {
		u.mu.Lock()
		u.quarantined[family] = err
		u.mu.Unlock()

		corrupt := errs.NewStoreCorruptError(string(family), err)
		u.logger.Error("Record family is corrupt and has been quarantined", errs.LogFields(corrupt))
		return corrupt
	}
	return nil
}

func (u *UnitOfWork) seedFamily(tx *transaction, family persistence.Family) error {
	u.logger.Info("Seeding record family", map[string]any{"family": family})

	switch family {
	case persistence.FamilyUsers:
		users, err := u.seed.users(u.timeProvider)
		if err != nil {
			return err
		}
		tx.users = newUserRepository(users)
		tx.users.dirty = true
	case persistence.FamilyItems:
		items, lastID, err := u.seed.items(u.timeProvider)
		if err != nil {
			return err
		}
		tx.items = newItemRepository(items, lastID)
		tx.items.dirty = true
	case persistence.FamilyNotifications:
		tx.notifications = newNotificationRepository(nil)
		tx.notifications.dirty = true
	}
	return nil
}

// transaction is the in-memory state of the families locked by one unit of work
type transaction struct {
	users         *userRepository
	items         *itemRepository
	notifications *notificationRepository
}

func (t *transaction) Users() persistence.UserRepository {
	if t.users == nil {
		panic("users family is not part of this transaction")
	}
	return t.users
}

func (t *transaction) Items() persistence.ItemRepository {
	if t.items == nil {
		panic("items family is not part of this transaction")
	}
	return t.items
}

func (t *transaction) Notifications() persistence.NotificationRepository {
	if t.notifications == nil {
		panic("notifications family is not part of this transaction")
	}
	return t.notifications
}

func (t *transaction) decode(family persistence.Family, data []byte) error {
	switch family {
	case persistence.FamilyUsers:
		users, err := decodeUsers(data)
		if err != nil {
			return err
		}
		t.users = newUserRepository(users)
	case persistence.FamilyItems:
		items, lastID, err := decodeItems(data)
		if err != nil {
			return err
		}
		t.items = newItemRepository(items, lastID)
	case persistence.FamilyNotifications:
		list, err := decodeNotifications(data)
		if err != nil {
			return err
		}
		t.notifications = newNotificationRepository(list)
	}
	return nil
}

func (t *transaction) encodeDirty() (map[persistence.Family][]byte, error) {
	snapshots := make(map[persistence.Family][]byte)
	if t.users != nil && t.users.dirty {
		data, err := t.users.encode()
		if err != nil {
			return nil, err
		}
		snapshots[persistence.FamilyUsers] = data
	}
	if t.items != nil && t.items.dirty {
		data, err := t.items.encode()
		if err != nil {
			return nil, err
		}
		snapshots[persistence.FamilyItems] = data
	}
	if t.notifications != nil && t.notifications.dirty {
		data, err := t.notifications.encode()
		if err != nil {
			return nil, err
		}
		snapshots[persistence.FamilyNotifications] = data
	}
	return snapshots, nil
}
