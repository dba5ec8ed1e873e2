package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var codecJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const indent = "    "

// timestamp layouts accepted when decoding; the first one is used when encoding
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// notificationIDSpace namespaces ids derived for legacy notifications stored without one
var notificationIDSpace = uuid.MustParse("6f1c0d52-2f57-4f5e-9a55-1f6f3b7f2e10")

type historyRecord struct {
	Type      string      `json:"type"`
	ItemID    uint64      `json:"item_id,omitempty"`
	ItemName  string      `json:"item_name,omitempty"`
	Quantity  int         `json:"quantity,omitempty"`
	Total     json.Number `json:"total"`
	Buyer     string      `json:"buyer,omitempty"`
	Admin     string      `json:"admin,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type mailboxRecord struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	Timestamp string `json:"timestamp"`
}

type userRecord struct {
	Password      string          `json:"password"`
	Balance       json.Number     `json:"balance"`
	History       []historyRecord `json:"history"`
	Role          string          `json:"role"`
	AdminLevel    int             `json:"admin_level,omitempty"`
	Notifications []mailboxRecord `json:"notifications"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

type itemRecord struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Seller      string      `json:"seller"`
	Stock       int         `json:"stock"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

type itemsFile struct {
	LastID uint64       `json:"last_id"`
	Items  []itemRecord `json:"items"`
}

type notificationRecord struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	From        string `json:"from"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	ProcessedBy string `json:"processed_by,omitempty"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayouts[0])
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseMoney(n json.Number) (int64, error) {
	s := n.String()
	if s == "" {
		return 0, nil
	}
	// Older files hold floats such as 1000.0 or 49.999999; they are rounded half
	// up to the nearest cent. Negative amounts are rejected below.
	roundUp := false
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > entity.MaxDecimalPlaces {
		roundUp = s[i+1+entity.MaxDecimalPlaces] >= '5'
		s = s[:i+1+entity.MaxDecimalPlaces]
	}
	cents, err := entity.ValidateAndConvertAmount(s)
	if err != nil || !roundUp {
		return cents, err
	}
	return cents + 1, nil
}

func money(cents int64) json.Number {
	return json.Number(entity.AmountInCentsToString(cents))
}

// encodeUsers renders the users family as a JSON object keyed by username
func encodeUsers(users map[string]*entity.User) ([]byte, error) {
	records := make(map[string]userRecord, len(users))
	for name, u := range users {
		rec := userRecord{
			Password:      u.PasswordHash,
			Balance:       money(u.Balance()),
			History:       make([]historyRecord, 0, len(u.History)),
			Role:          string(u.Role.Kind()),
			AdminLevel:    u.Role.Level(),
			Notifications: make([]mailboxRecord, 0, len(u.Mailbox)),
			CreatedAt:     formatTime(u.CreatedAt),
			UpdatedAt:     formatTime(u.UpdatedAt),
		}
		for _, h := range u.History {
			hr := historyRecord{
				Type:      string(h.Kind),
				ItemID:    h.ItemID,
				ItemName:  h.ItemName,
				Quantity:  h.Quantity,
				Total:     money(h.Total),
				Timestamp: formatTime(h.Timestamp),
			}
			switch h.Kind {
			case entity.HistorySale:
				hr.Buyer = h.Counterparty
			case entity.HistoryDeposit:
				hr.Admin = h.Counterparty
			}
			rec.History = append(rec.History, hr)
		}
		for _, m := range u.Mailbox {
			rec.Notifications = append(rec.Notifications, mailboxRecord{
				Message:   m.Message,
				Type:      string(m.Level),
				Read:      m.Read,
				Timestamp: formatTime(m.CreatedAt),
			})
		}
		records[name] = rec
	}
	return codecJSON.MarshalIndent(records, "", indent)
}

// decodeUsers parses and validates the users family
func decodeUsers(data []byte) (map[string]*entity.User, error) {
	var records map[string]userRecord
	if err := codecJSON.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	users := make(map[string]*entity.User, len(records))
	for name, rec := range records {
		u, err := decodeUser(name, rec)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", name, err)
		}
		users[name] = u
	}
	return users, nil
}

func decodeUser(name string, rec userRecord) (*entity.User, error) {
	if _, err := entity.ValidateUsername(name); err != nil {
		return nil, err
	}
	role, err := entity.NewRole(rec.Role, rec.AdminLevel)
	if err != nil {
		return nil, err
	}
	balance, err := parseMoney(rec.Balance)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	u := &entity.User{
		Username:     name,
		PasswordHash: rec.Password,
		Role:         role,
		History:      make([]entity.HistoryEntry, 0, len(rec.History)),
		Mailbox:      make([]entity.MailboxEntry, 0, len(rec.Notifications)),
	}
	if err := u.SetBalance(balance); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(rec.CreatedAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(rec.UpdatedAt); err != nil {
		return nil, err
	}

	for i, hr := range rec.History {
		entry, err := decodeHistory(hr)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		u.History = append(u.History, entry)
	}

	for i, mr := range rec.Notifications {
		at, err := parseTime(mr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("notifications[%d]: %w", i, err)
		}
		level := entity.MailboxLevel(mr.Type)
		switch level {
		case entity.MailboxSuccess, entity.MailboxWarning, entity.MailboxInfo:
		case "":
			level = entity.MailboxInfo
		default:
			return nil, fmt.Errorf("notifications[%d]: unknown type %q", i, mr.Type)
		}
		u.Mailbox = append(u.Mailbox, entity.MailboxEntry{
			Message:   mr.Message,
			Level:     level,
			Read:      mr.Read,
			CreatedAt: at,
		})
	}
	return u, nil
}

func decodeHistory(hr historyRecord) (entity.HistoryEntry, error) {
	kind := entity.HistoryKind(hr.Type)
	entry := entity.HistoryEntry{
		Kind:     kind,
		ItemID:   hr.ItemID,
		ItemName: hr.ItemName,
		Quantity: hr.Quantity,
	}
	switch kind {
	case entity.HistoryPurchase:
	case entity.HistorySale:
		entry.Counterparty = hr.Buyer
	case entity.HistoryDeposit:
		entry.Counterparty = hr.Admin
	default:
		return entry, fmt.Errorf("unknown history type %q", hr.Type)
	}
	if hr.Quantity < 0 {
		return entry, fmt.Errorf("negative quantity %d", hr.Quantity)
	}

	var err error
	if entry.Total, err = parseMoney(hr.Total); err != nil {
		return entry, fmt.Errorf("total: %w", err)
	}
	if entry.Timestamp, err = parseTime(hr.Timestamp); err != nil {
		return entry, err
	}
	return entry, nil
}

// encodeItems renders the items family together with the id high-water mark
func encodeItems(items map[uint64]*entity.Item, lastID uint64) ([]byte, error) {
	file := itemsFile{LastID: lastID, Items: make([]itemRecord, 0, len(items))}
	for _, it := range items {
		file.Items = append(file.Items, itemRecord{
			ID:          it.ID,
			Name:        it.Name,
			Price:       money(it.Price),
			Description: it.Description,
			Image:       it.Image,
			Seller:      it.Seller,
			Stock:       it.Stock,
			CreatedAt:   formatTime(it.CreatedAt),
			UpdatedAt:   formatTime(it.UpdatedAt),
		})
	}
	sort.Slice(file.Items, func(i, j int) bool { return file.Items[i].ID < file.Items[j].ID })
	return codecJSON.MarshalIndent(file, "", indent)
}

// decodeItems parses the items family. A bare JSON array is accepted as a file
// written before the high-water mark was stored.
func decodeItems(data []byte) (map[uint64]*entity.Item, uint64, error) {
	var file itemsFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := codecJSON.Unmarshal(trimmed, &file.Items); err != nil {
			return nil, 0, err
		}
	} else if err := codecJSON.Unmarshal(data, &file); err != nil {
		return nil, 0, err
	}

	items := make(map[uint64]*entity.Item, len(file.Items))
	for _, rec := range file.Items {
		if rec.ID == 0 {
			return nil, 0, fmt.Errorf("item with id 0")
		}
		if _, dup := items[rec.ID]; dup {
			return nil, 0, fmt.Errorf("duplicate item id %d", rec.ID)
		}
		if rec.Stock < 0 {
			return nil, 0, fmt.Errorf("item %d: negative stock %d", rec.ID, rec.Stock)
		}
		price, err := parseMoney(rec.Price)
		if err != nil {
			return nil, 0, fmt.Errorf("item %d price: %w", rec.ID, err)
		}
		image := rec.Image
		if image == "" {
			image = entity.DefaultImage
		}

		it := &entity.Item{
			ID:          rec.ID,
			Name:        rec.Name,
			Price:       price,
			Description: rec.Description,
			Image:       image,
			Seller:      rec.Seller,
			Stock:       rec.Stock,
		}
		if it.CreatedAt, err = parseTime(rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("item %d: %w", rec.ID, err)
		}
		if it.UpdatedAt, err = parseTime(rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("item %d: %w", rec.ID, err)
		}
		items[rec.ID] = it
	}
	return items, file.LastID, nil
}

// encodeNotifications renders the notifications family in creation order
func encodeNotifications(list []*entity.Notification) ([]byte, error) {
	records := make([]notificationRecord, 0, len(list))
	for _, n := range list {
		rec := notificationRecord{
			ID:          n.ID,
			Type:        string(n.Type),
			From:        n.From,
			Message:     n.Message,
			Status:      string(n.Status),
			Timestamp:   formatTime(n.Timestamp),
			ProcessedBy: n.ProcessedBy,
		}
		if n.ProcessedAt != nil {
			rec.ProcessedAt = formatTime(*n.ProcessedAt)
		}
		records = append(records, rec)
	}
	return codecJSON.MarshalIndent(records, "", indent)
}

// decodeNotifications parses the notifications family. Records without an id
// get one derived from their position and content so repeated loads agree.
func decodeNotifications(data []byte) ([]*entity.Notification, error) {
	var records []notificationRecord
	if err := codecJSON.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	list := make([]*entity.Notification, 0, len(records))
	for i, rec := range records {
		n, err := decodeNotification(i, rec)
		if err != nil {
			return nil, fmt.Errorf("notification[%d]: %w", i, err)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("duplicate notification id %s", n.ID)
		}
		seen[n.ID] = true
		list = append(list, n)
	}
	return list, nil
}

func decodeNotification(index int, rec notificationRecord) (*entity.Notification, error) {
	n := &entity.Notification{
		ID:          rec.ID,
		Type:        entity.NotificationType(rec.Type),
		From:        rec.From,
		Message:     rec.Message,
		Status:      entity.NotificationStatus(rec.Status),
		ProcessedBy: rec.ProcessedBy,
	}

	switch n.Type {
	case entity.NotificationSellerRequest, entity.NotificationAdmin:
	default:
		return nil, fmt.Errorf("unknown type %q", rec.Type)
	}
	switch n.Status {
	case entity.StatusPending, entity.StatusApproved, entity.StatusRejected:
	default:
		return nil, fmt.Errorf("unknown status %q", rec.Status)
	}

	var err error
	if n.Timestamp, err = parseTime(rec.Timestamp); err != nil {
		return nil, err
	}
	if rec.ProcessedAt != "" {
		at, err := parseTime(rec.ProcessedAt)
		if err != nil {
			return nil, err
		}
		n.ProcessedAt = &at
	}
	if n.ID == "" {
		seed := fmt.Sprintf("%d|%s|%s|%s", index, rec.Type, rec.From, rec.Timestamp)
		n.ID = uuid.NewSHA1(notificationIDSpace, []byte(seed)).String()
	}
	return n, nil
}
