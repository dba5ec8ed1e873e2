package usecase

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
)

// AdminUseCase defines administrator tools
type AdminUseCase interface {
	// Promote changes the role of target. The actor must outrank both the
	// requested level and the target's current level.
	Promote(ctx context.Context, actor, target string, role entity.Role) (*entity.User, error)

	// AddFunds credits amountInCents to target and records a deposit
	AddFunds(ctx context.Context, actor, target string, amountInCents int64) (*entity.User, error)

	// DeleteUser removes an account other than the actor's own
	DeleteUser(ctx context.Context, actor, target string) error

	// ListUsers returns every account ordered by name
	ListUsers(ctx context.Context, actor string) ([]*entity.User, error)

	// RepairFamily lifts the quarantine of a record family after an operator fixed it.
	// The actor is taken from the verified session since the users family may be the damaged one.
	RepairFamily(ctx context.Context, actor *entity.Session, family persistence.Family) error
}
