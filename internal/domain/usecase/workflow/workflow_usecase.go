package workflow

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
)

// Mailbox messages delivered to the requester
const (
	ApprovedMessage = "Your seller request has been approved!"
	RejectedMessage = "Your seller request has been rejected."
)

var families = []persistence.Family{persistence.FamilyUsers, persistence.FamilyNotifications}

// UseCase runs the seller-request workflow
type UseCase struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewWorkflowUseCase creates a new workflow UseCase
func NewWorkflowUseCase(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UseCase {
	return &UseCase{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ usecase.WorkflowUseCase = (*UseCase)(nil)

// RequestSellerStatus files a pending seller request. Only buyers may ask,
// and only one request per user may be pending at a time.
func (u *UseCase) RequestSellerStatus(ctx context.Context, username string) (*entity.Notification, error) {
	var request *entity.Notification
	err := u.uow.Execute(ctx, families, func(ctx context.Context, tx persistence.Transaction) error {
		user, err := tx.Users().GetByName(ctx, username)
		if err != nil {
			return err
		}
		if user.Role.Kind() != entity.RoleBuyer {
			return errs.NewForbiddenError(username, "request seller status", fmt.Sprintf("already %s", user.Role))
		}

		pending, err := tx.Notifications().FindPending(ctx, username, entity.NotificationSellerRequest)
		if err != nil {
			return err
		}
		if pending != nil {
			return errs.NewDuplicateRequestError(username, pending.ID)
		}

		request = entity.NewSellerRequest(username, u.timeProvider)
		return tx.Notifications().Append(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("Seller request filed", map[string]any{
		"username":   username,
		"request_id": request.ID,
	})
	return request, nil
}

// ProcessNotification approves or rejects a pending seller request.
// A notification that is no longer pending is returned unchanged.
func (u *UseCase) ProcessNotification(
	ctx context.Context,
	actor, id string,
	decision entity.Decision,
) (*entity.Notification, error) {
	if decision != entity.DecisionApprove && decision != entity.DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", errs.ErrInvalidInput, decision)
	}

	var notification *entity.Notification
	changed := false
	err := u.uow.Execute(ctx, families, func(ctx context.Context, tx persistence.Transaction) error {
		admin, err := tx.Users().GetByName(ctx, actor)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(admin, entity.Admin(entity.MinAdminLevel), "process notifications"); err != nil {
			return err
		}

		notification, err = tx.Notifications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !notification.Resolve(decision, actor, u.timeProvider) {
			return nil
		}
		changed = true

		if notification.Type == entity.NotificationSellerRequest {
			if err := u.settleRequest(ctx, tx.Users(), notification.From, decision); err != nil {
				return err
			}
		}
		return tx.Notifications().Update(ctx, notification)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		u.logger.Info("Notification processed", map[string]any{
			"notification_id": notification.ID,
			"from":            notification.From,
			"status":          string(notification.Status),
			"processed_by":    actor,
		})
	}
	return notification, nil
}

// settleRequest applies a decision to the requester's account and mailbox.
// The request of a deleted account is closed without touching any account.
func (u *UseCase) settleRequest(ctx context.Context, users persistence.UserRepository, requester string, decision entity.Decision) error {
	user, err := users.GetByName(ctx, requester)
	if errors.Is(err, errs.ErrUserNotFound) {
		u.logger.Warn("Seller request closed for deleted account", map[string]any{
			"username": requester,
			"decision": string(decision),
		})
		return nil
	}
	if err != nil {
		return err
	}

	if decision == entity.DecisionApprove {
		// an admin promoted in the meantime keeps the higher role
		if user.Role.Kind() == entity.RoleBuyer {
			if err := user.SetRole(entity.Seller(), u.timeProvider); err != nil {
				return err
			}
		}
		user.Notify(ApprovedMessage, entity.MailboxSuccess, u.timeProvider)
	} else {
		user.Notify(RejectedMessage, entity.MailboxWarning, u.timeProvider)
	}
	return users.Update(ctx, user)
}

// ListNotifications returns admin notices and pending seller requests
func (u *UseCase) ListNotifications(ctx context.Context, actor string) ([]*entity.Notification, error) {
	var visible []*entity.Notification
	err := u.uow.Read(ctx, families, func(ctx context.Context, tx persistence.Transaction) error {
		admin, err := tx.Users().GetByName(ctx, actor)
		if err != nil {
			return err
		}
		if err := access.AuthorizeUser(admin, entity.Admin(entity.MinAdminLevel), "list notifications"); err != nil {
			return err
		}
		visible, err = AdminVisible(ctx, tx.Notifications())
		return err
	})
	return visible, err
}

// AdminVisible filters the notifications shown to admins
func AdminVisible(ctx context.Context, notifications persistence.NotificationRepository) ([]*entity.Notification, error) {
	all, err := notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]*entity.Notification, 0, len(all))
	for _, n := range all {
		if n.VisibleToAdmins() {
			visible = append(visible, n)
		}
	}
	return visible, nil
}
