package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/security"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/workflow"
)

// DefaultStartingBalance is credited to every new account (100.00)
const DefaultStartingBalance int64 = 10000

// MaxPasswordLength is the longest secret bcrypt can hash
const MaxPasswordLength = 72

var (
	usersOnly = []persistence.Family{persistence.FamilyUsers}
	all       = persistence.Families()
)

// Config holds the account settings
type Config struct {
	StartingBalance int64 // cents
}

// UseCase handles registration, sessions and per-user views
type UseCase struct {
	uow          persistence.UnitOfWork
	hasher       security.PasswordHasher
	issuer       security.SessionIssuer
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewAccountUseCase creates a new account UseCase
func NewAccountUseCase(
	uow persistence.UnitOfWork,
	hasher security.PasswordHasher,
	issuer security.SessionIssuer,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UseCase {
	return &UseCase{
		uow:          uow,
		hasher:       hasher,
		issuer:       issuer,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ usecase.AccountUseCase = (*UseCase)(nil)

// Register creates a buyer account with the configured starting balance
func (u *UseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*entity.User, error) {
	name, err := entity.ValidateUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Password) == "" || len(req.Password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be 1-%d bytes", errs.ErrInvalidInput, MaxPasswordLength)
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := entity.NewUser(name, hash, u.config.StartingBalance, entity.Buyer(), u.timeProvider)
	if err != nil {
		return nil, err
	}

	err = u.uow.Execute(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("User registered", map[string]any{
		"username": user.Username,
		"balance":  user.GetBalance(),
	})
	return user, nil
}

// Login checks credentials and issues a session. The hash comparison runs
// outside every lock; a stored hash in an outdated format is replaced afterwards.
func (u *UseCase) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	name := strings.TrimSpace(username)

	var user *entity.User
	err := u.uow.Read(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		user, err = tx.Users().GetByName(ctx, name)
		return err
	})
	if errors.Is(err, errs.ErrUserNotFound) {
		err = errs.ErrAuth
	}
	if err == nil && u.hasher.Compare(user.PasswordHash, password) != nil {
		err = errs.ErrAuth
	}
	if err != nil {
		if errors.Is(err, errs.ErrAuth) {
			u.logger.Warn("Failed login attempt", map[string]any{"username": username})
		}
		return nil, err
	}

	if u.hasher.NeedsUpgrade(user.PasswordHash) {
		u.upgradeHash(ctx, user, password)
	}
	return u.issuer.Issue(user)
}

// upgradeHash replaces an outdated stored hash unless it changed since it was verified.
// A failed upgrade does not fail the login.
func (u *UseCase) upgradeHash(ctx context.Context, user *entity.User, password string) {
	hash, err := u.hasher.Hash(password)
	if err == nil {
		verified := user.PasswordHash
		err = u.uow.Execute(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
			stored, err := tx.Users().GetByName(ctx, user.Username)
			if err != nil {
				return err
			}
			if stored.PasswordHash != verified {
				return nil
			}
			stored.PasswordHash = hash
			return tx.Users().Update(ctx, stored)
		})
	}
	if err != nil {
		u.logger.Warn("Failed to upgrade stored password hash", map[string]any{
			"username": user.Username,
			"error":    err.Error(),
		})
		return
	}

	u.logger.Info("Upgraded stored password hash", map[string]any{"username": user.Username})
}

// Authenticate verifies a session token
func (u *UseCase) Authenticate(_ context.Context, token string) (*entity.Session, error) {
	return u.issuer.Verify(token)
}

// Profile returns the current state of a user
func (u *UseCase) Profile(ctx context.Context, username string) (*entity.User, error) {
	var user *entity.User
	err := u.uow.Read(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		var err error
		user, err = tx.Users().GetByName(ctx, username)
		return err
	})
	return user, err
}

// Mailbox returns every mailbox entry with the unread count and marks them all read
func (u *UseCase) Mailbox(ctx context.Context, username string) (*usecase.MailboxView, error) {
	var view *usecase.MailboxView
	err := u.uow.Execute(ctx, usersOnly, func(ctx context.Context, tx persistence.Transaction) error {
		user, err := tx.Users().GetByName(ctx, username)
		if err != nil {
			return err
		}

		view = &usecase.MailboxView{
			Entries: append([]entity.MailboxEntry(nil), user.Mailbox...),
			Unread:  user.MarkMailboxRead(),
		}
		if view.Unread == 0 {
			return nil
		}
		return tx.Users().Update(ctx, user)
	})
	return view, err
}

// Dashboard returns the landing view of a user, chosen by role
func (u *UseCase) Dashboard(ctx context.Context, username string) (*usecase.DashboardView, error) {
	var view *usecase.DashboardView
	err := u.uow.Read(ctx, all, func(ctx context.Context, tx persistence.Transaction) error {
		user, err := tx.Users().GetByName(ctx, username)
		if err != nil {
			return err
		}
		view = &usecase.DashboardView{Profile: user}

		switch user.Role.Kind() {
		case entity.RoleBuyer:
			view.Catalog, err = tx.Items().List(ctx)
		case entity.RoleSeller:
			view.OwnItems, err = tx.Items().ListBySeller(ctx, user.Username)
		case entity.RoleAdmin:
			if view.Users, err = tx.Users().List(ctx); err != nil {
				return err
			}
			if view.Catalog, err = tx.Items().List(ctx); err != nil {
				return err
			}
			view.Notifications, err = workflow.AdminVisible(ctx, tx.Notifications())
		default:
			err = fmt.Errorf("%w: %v", errs.ErrInvalidRole, user.Role)
		}
		return err
	})
	return view, err
}
