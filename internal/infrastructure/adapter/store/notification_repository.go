package store

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// notificationRepository is the notifications family loaded into one unit of work
type notificationRepository struct {
	list  []*entity.Notification
	index map[string]int
	dirty bool
}

func newNotificationRepository(list []*entity.Notification) *notificationRepository {
	index := make(map[string]int, len(list))
	for i, n := range list {
		index[n.ID] = i
	}
	return &notificationRepository{list: list, index: index}
}

func (r *notificationRepository) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotificationNotFound, id)
	}
	return r.list[i].Clone(), nil
}

func (r *notificationRepository) List(_ context.Context) ([]*entity.Notification, error) {
	out := make([]*entity.Notification, 0, len(r.list))
	for _, n := range r.list {
		out = append(out, n.Clone())
	}
	return out, nil
}

func (r *notificationRepository) FindPending(_ context.Context, from string, notificationType entity.NotificationType) (*entity.Notification, error) {
	for _, n := range r.list {
		if n.From == from && n.Type == notificationType && n.IsPending() {
			return n.Clone(), nil
		}
	}
	return nil, nil
}

func (r *notificationRepository) Append(_ context.Context, notification *entity.Notification) error {
	if _, ok := r.index[notification.ID]; ok {
		return fmt.Errorf("%w: notification id %s already in use", errs.ErrInvalidInput, notification.ID)
	}
	r.index[notification.ID] = len(r.list)
	r.list = append(r.list, notification.Clone())
	r.dirty = true
	return nil
}

func (r *notificationRepository) Update(_ context.Context, notification *entity.Notification) error {
	i, ok := r.index[notification.ID]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrNotificationNotFound, notification.ID)
	}
	r.list[i] = notification.Clone()
	r.dirty = true
	return nil
}

func (r *notificationRepository) encode() ([]byte, error) {
	return encodeNotifications(r.list)
}
