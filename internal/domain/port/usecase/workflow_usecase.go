package usecase

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// WorkflowUseCase defines the seller-request workflow
type WorkflowUseCase interface {
	// RequestSellerStatus files a pending seller request for a buyer
	RequestSellerStatus(ctx context.Context, username string) (*entity.Notification, error)

	// ProcessNotification approves or rejects a pending request.
	// Processing an already settled notification returns it unchanged.
	ProcessNotification(ctx context.Context, actor, id string, decision entity.Decision) (*entity.Notification, error)

	// ListNotifications returns the notifications visible to admins
	ListNotifications(ctx context.Context, actor string) ([]*entity.Notification, error)
}
