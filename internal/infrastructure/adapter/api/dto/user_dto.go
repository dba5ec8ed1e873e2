package dto

import (
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
)

// HistoryEntryResponse is one line of an account history
type HistoryEntryResponse struct {
	Kind         string    `json:"kind"`
	ItemID       uint64    `json:"itemId,omitempty"`
	ItemName     string    `json:"itemName,omitempty"`
	Quantity     int       `json:"quantity,omitempty"`
	Total        string    `json:"total"`
	Counterparty string    `json:"counterparty,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserResponse is the public view of an account; the credential hash is never exposed
type UserResponse struct {
	Username   string                 `json:"username"`
	Balance    string                 `json:"balance"`
	Role       string                 `json:"role"`
	AdminLevel int                    `json:"adminLevel,omitempty"`
	History    []HistoryEntryResponse `json:"history"`
	Unread     int                    `json:"unread"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// MailboxEntryResponse is one mailbox message
type MailboxEntryResponse struct {
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// MailboxResponse lists a user's mailbox as it was before being marked read
type MailboxResponse struct {
	Entries []MailboxEntryResponse `json:"entries"`
	Unread  int                    `json:"unread"`
}

// DashboardResponse is the role-specific landing view
type DashboardResponse struct {
	Profile       UserResponse           `json:"profile"`
	Catalog       []ItemResponse         `json:"catalog,omitempty"`
	OwnItems      []ItemResponse         `json:"ownItems,omitempty"`
	Users         []UserResponse         `json:"users,omitempty"`
	Notifications []NotificationResponse `json:"notifications,omitempty"`
}

// NewUserResponse maps a user to its API form
func NewUserResponse(u *entity.User) UserResponse {
	history := make([]HistoryEntryResponse, 0, len(u.History))
	for _, h := range u.History {
		history = append(history, HistoryEntryResponse{
			Kind:         string(h.Kind),
			ItemID:       h.ItemID,
			ItemName:     h.ItemName,
			Quantity:     h.Quantity,
			Total:        entity.AmountInCentsToString(h.Total),
			Counterparty: h.Counterparty,
			Timestamp:    h.Timestamp,
		})
	}

	return UserResponse{
		Username:   u.Username,
		Balance:    u.GetBalance(),
		Role:       string(u.Role.Kind()),
		AdminLevel: u.Role.Level(),
		History:    history,
		Unread:     u.UnreadCount(),
		CreatedAt:  u.CreatedAt,
	}
}

// NewUserListResponse maps a list of users
func NewUserListResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// NewMailboxResponse maps a mailbox view
func NewMailboxResponse(view *usecase.MailboxView) MailboxResponse {
	entries := make([]MailboxEntryResponse, 0, len(view.Entries))
	for _, e := range view.Entries {
		entries = append(entries, MailboxEntryResponse{
			Message:   e.Message,
			Level:     string(e.Level),
			Read:      e.Read,
			CreatedAt: e.CreatedAt,
		})
	}
	return MailboxResponse{Entries: entries, Unread: view.Unread}
}

// NewDashboardResponse maps a dashboard view
func NewDashboardResponse(view *usecase.DashboardView) DashboardResponse {
	resp := DashboardResponse{Profile: NewUserResponse(view.Profile)}
	if view.Catalog != nil {
		resp.Catalog = NewItemListResponse(view.Catalog)
	}
	if view.OwnItems != nil {
		resp.OwnItems = NewItemListResponse(view.OwnItems)
	}
	if view.Users != nil {
		resp.Users = NewUserListResponse(view.Users)
	}
	if view.Notifications != nil {
		resp.Notifications = NewNotificationListResponse(view.Notifications)
	}
	return resp
}
