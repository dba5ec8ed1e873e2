package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/google/uuid"
)

// NotificationType distinguishes workflow requests from admin audit records
type NotificationType string

const (
	NotificationSellerRequest NotificationType = "seller_request"
	NotificationAdmin         NotificationType = "admin"
)

// NotificationStatus is the lifecycle state of a notification
type NotificationStatus string

const (
	StatusPending  NotificationStatus = "pending"
	StatusApproved NotificationStatus = "approved"
	StatusRejected NotificationStatus = "rejected"
)

// Decision is an admin's verdict on a pending request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts "approve" or "reject" in any case
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", errs.ErrInvalidInput, s)
	}
}

// Notification is an administrator-facing record. Notifications are never deleted.
type Notification struct {
	ID          string
	Type        NotificationType
	From        string
	Message     string
	Status      NotificationStatus
	Timestamp   time.Time
	ProcessedBy string
	ProcessedAt *time.Time
}

// NewSellerRequest creates a pending request from username to become a seller
func NewSellerRequest(username string, timeProvider coreport.TimeProvider) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Type:      NotificationSellerRequest,
		From:      username,
		Message:   fmt.Sprintf("%s wants to become a seller", username),
		Status:    StatusPending,
		Timestamp: timeProvider.Now(),
	}
}

// NewAdminNotice creates an already-settled audit record of an admin action
func NewAdminNotice(actor, message string, timeProvider coreport.TimeProvider) *Notification {
	now := timeProvider.Now()
	return &Notification{
		ID:          uuid.NewString(),
		Type:        NotificationAdmin,
		From:        actor,
		Message:     message,
		Status:      StatusApproved,
		Timestamp:   now,
		ProcessedBy: actor,
		ProcessedAt: &now,
	}
}

// IsPending reports whether the notification still awaits a decision
func (n *Notification) IsPending() bool {
	return n.Status == StatusPending
}

// Resolve applies decision if the notification is pending.
// It returns false and leaves the record unchanged otherwise.
func (n *Notification) Resolve(decision Decision, actor string, timeProvider coreport.TimeProvider) bool {
	if !n.IsPending() {
		return false
	}

	switch decision {
	case DecisionApprove:
		n.Status = StatusApproved
	case DecisionReject:
		n.Status = StatusRejected
	default:
		return false
	}

	now := timeProvider.Now()
	n.ProcessedBy = actor
	n.ProcessedAt = &now
	return true
}

// VisibleToAdmins reports whether the record belongs on an admin dashboard
func (n *Notification) VisibleToAdmins() bool {
	return n.Type == NotificationAdmin || (n.Type == NotificationSellerRequest && n.IsPending())
}

// Clone returns a copy of the notification
func (n *Notification) Clone() *Notification {
	c := *n
	if n.ProcessedAt != nil {
		at := *n.ProcessedAt
		c.ProcessedAt = &at
	}
	return &c
}
