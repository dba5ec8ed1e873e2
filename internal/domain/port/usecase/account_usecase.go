package usecase

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// RegisterRequest carries the fields of a new account
type RegisterRequest struct {
	Username string
	Password string
}

// MailboxView is a user's mailbox as shown once; reading it marks every entry read
type MailboxView struct {
	Entries []entity.MailboxEntry
	Unread  int
}

// DashboardView is the landing page of a user. Which fields are filled depends on the role:
// buyers get Catalog, sellers get OwnItems, admins get Users, Catalog and Notifications.
type DashboardView struct {
	Profile       *entity.User
	Catalog       []*entity.Item
	OwnItems      []*entity.Item
	Users         []*entity.User
	Notifications []*entity.Notification
}

// AccountUseCase defines account and session operations
type AccountUseCase interface {
	// Register creates a buyer with the configured starting balance
	Register(ctx context.Context, req RegisterRequest) (*entity.User, error)

	// Login verifies credentials and issues a session.
	// An unknown user and a wrong password fail the same way.
	Login(ctx context.Context, username, password string) (*entity.Session, error)

	// Authenticate verifies a session token
	Authenticate(ctx context.Context, token string) (*entity.Session, error)

	// Profile returns the current state of a user
	Profile(ctx context.Context, username string) (*entity.User, error)

	// Mailbox returns the user's mailbox and marks it read
	Mailbox(ctx context.Context, username string) (*MailboxView, error)

	// Dashboard returns the role-specific landing view
	Dashboard(ctx context.Context, username string) (*DashboardView, error)
}
