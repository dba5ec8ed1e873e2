package persistence

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// UserRepository reads and writes users inside a unit of work.
// Returned users are copies; changes are kept only after Update.
type UserRepository interface {
	// GetByName retrieves a user by username
	//
	// Possible errors:
	// - ErrUserNotFound: If no user has that name
	GetByName(ctx context.Context, username string) (*entity.User, error)

	// Exists checks if a user with the given name exists
	Exists(ctx context.Context, username string) (bool, error)

	// Create adds a new user
	//
	// Possible errors:
	// - ErrUsernameTaken: If the name is already registered
	Create(ctx context.Context, user *entity.User) error

	// Update replaces a stored user
	//
	// Possible errors:
	// - ErrUserNotFound: If the user doesn't exist
	Update(ctx context.Context, user *entity.User) error

	// Delete removes a user
	//
	// Possible errors:
	// - ErrUserNotFound: If the user doesn't exist
	Delete(ctx context.Context, username string) error

	// List returns every user ordered by name
	List(ctx context.Context) ([]*entity.User, error)
}
