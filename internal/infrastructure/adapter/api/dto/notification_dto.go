package dto

import (
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// DecisionRequest is the body of processing a notification
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// NotificationResponse is the admin view of a notification
type NotificationResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	From        string     `json:"from"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	ProcessedBy string     `json:"processedBy,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// NewNotificationResponse maps a notification to its API form
func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		From:        n.From,
		Message:     n.Message,
		Status:      string(n.Status),
		Timestamp:   n.Timestamp,
		ProcessedBy: n.ProcessedBy,
		ProcessedAt: n.ProcessedAt,
	}
}

// NewNotificationListResponse maps a list of notifications
func NewNotificationListResponse(list []*entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}
