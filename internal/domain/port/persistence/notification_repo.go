package persistence

import (
	"context"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// NotificationRepository reads and appends notifications inside a unit of work
type NotificationRepository interface {
	// GetByID retrieves a notification by ID
	//
	// Possible errors:
	// - ErrNotificationNotFound: If no notification has that ID
	GetByID(ctx context.Context, id string) (*entity.Notification, error)

	// List returns every notification in creation order
	List(ctx context.Context) ([]*entity.Notification, error)

	// FindPending returns the pending notification of the given type sent by from, or nil
	FindPending(ctx context.Context, from string, notificationType entity.NotificationType) (*entity.Notification, error)

	// Append stores a new notification
	Append(ctx context.Context, notification *entity.Notification) error

	// Update replaces a stored notification
	//
	// Possible errors:
	// - ErrNotificationNotFound: If the notification doesn't exist
	Update(ctx context.Context, notification *entity.Notification) error
}
