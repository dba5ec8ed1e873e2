package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/access"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
)

// Minimum admin levels of each tool
const (
	ListUsersLevel  = 1
	AddFundsLevel   = 2
	DeleteUserLevel = 3
	RepairLevel     = 3
)

var (
	usersOnly      = []persistence.Family{persistence.FamilyUsers}
	usersAndNotifs = []persistence.Family{persistence.FamilyUsers, persistence.FamilyNotifications}
)

// UseCase implements the administrator tools
type UseCase struct {
	uow          persistence.UnitOfWork
	ledger       *ledger.Ledger
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewAdminUseCase creates a new admin UseCase
func NewAdminUseCase(
	uow persistence.UnitOfWork,
	ledger *ledger.Ledger,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UseCase {
	return &UseCase{
		uow:          uow,
		ledger:       ledger,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ usecase.AdminUseCase = (*UseCase)(nil)

// loadPair loads the acting admin and the target account
func loadPair(ctx context.Context, users persistence.UserRepository, actor, target string) (*entity.User, *entity.User, error) {
	admin, err := users.GetByName(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	user, err := users.GetByName(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	return admin, user, nil
}

// Promote gives target a new role and records an admin notice
func (u *UseCase) Promote(ctx context.Context, actor, target string, role entity.Role) (*entity.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRole, role)
	}

	var promoted *entity.User
	err := u.uow.Execute(ctx, usersAndNotifs, func(ctx context.Context, tx persistence.Transaction) error {
		admin, user, err := loadPair(ctx, tx.Users(), actor, target)
		if err != nil {
			return err
		}
		if err := access.AuthorizeGrant(admin, user, role); err != nil {
			return err
		}

		previous := user.Role
		if err := user.SetRole(role, u.timeProvider); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		promoted = user

		notice := entity.NewAdminNotice(actor,
			fmt.Sprintf("%s changed the role of %s from %s to %s", actor, target, previous, role), u.timeProvider)
		return tx.Notifications().Append(ctx, notice)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("User role changed", map[string]any{
		"actor":  actor,
		"target": target,
		"role":   role.String(),
	})
	return promoted, nil
}

// AddFunds credits a user's balance
func (u *UseCase) AddFunds(ctx context.Context, actor, target string, amountInCents int64) (*entity.User, error) {
	if amountInCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", errs.ErrInvalidAmount)
	}

	var credited *entity.User
	err := u.uow.Execute(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		admin, user, err := loadPair(ctx, tx.Users(), actor, target)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(admin, entity.Admin(AddFundsLevel), "add funds"); err != nil {
			return err
		}
		if actor == target {
			user = admin
		}
		if err := u.ledger.Deposit(ctx, tx.Users(), actor, user, amountInCents); err != nil {
			return err
		}
		credited = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("Funds added", map[string]any{
		"actor":   actor,
		"target":  target,
		"amount":  entity.AmountInCentsToString(amountInCents),
		"balance": credited.GetBalance(),
	})
	return credited, nil
}

// DeleteUser removes an account. Items listed by the user stay in the catalog.
func (u *UseCase) DeleteUser(ctx context.Context, actor, target string) error {
	err := u.uow.Execute(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		admin, err := tx.Users().GetByName(ctx, actor)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(admin, entity.Admin(DeleteUserLevel), "delete users"); err != nil {
			return err
		}
		if actor == target {
			return errs.NewForbiddenError(actor, "delete users", "cannot delete own account")
		}
		return tx.Users().Delete(ctx, target)
	})
	if err != nil {
		return err
	}

	u.logger.Warn("User deleted", map[string]any{
		"actor":  actor,
		"target": target,
	})
	return nil
}

// ListUsers returns every account ordered by name
func (u *UseCase) ListUsers(ctx context.Context, actor string) ([]*entity.User, error) {
	var users []*entity.User
	err := u.uow.Read(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		admin, err := tx.Users().GetByName(ctx, actor)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(admin, entity.Admin(ListUsersLevel), "list users"); err != nil {
			return err
		}
		users, err = tx.Users().List(ctx)
		return err
	})
	return users, err
}

// RepairFamily lifts the quarantine of a family. The verified session is checked
// first; the actor's stored role is checked as well unless users is the family
// being repaired.
func (u *UseCase) RepairFamily(ctx context.Context, actor *entity.Session, family persistence.Family) error {
	if actor == nil {
		return errs.ErrAuth
	}
	if err := access.Authorize(actor.Username, actor.Role, entity.Admin(RepairLevel), "repair the record store"); err != nil {
		return err
	}
	if family.Rank() < 0 {
		return fmt.Errorf("%w: unknown record family %q", errs.ErrInvalidInput, family)
	}

	// the session is all there is while users itself is quarantined
	if family != persistence.FamilyUsers {
		err := u.uow.Read(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
			current, err := tx.Users().GetByName(ctx, actor.Username)
			if errors.Is(err, errs.ErrUserNotFound) {
				return errs.ErrAuth
			}
			if err != nil {
				return err
			}
			return access.AuthorizeUser(current, entity.Admin(RepairLevel), "repair the record store")
		})
		if err != nil {
			return err
		}
	}

	if err := u.uow.Repair(ctx, family); err != nil {
		u.logger.Error("Record family repair failed", map[string]any{
			"actor":  actor.Username,
			"family": string(family),
			"error":  err.Error(),
		})
		return err
	}

	u.logger.Info("Record family repaired", map[string]any{
		"actor":  actor.Username,
		"family": string(family),
	})
	return nil
}
