package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
)

// MaxUsernameLength bounds the length of a username in runes
const MaxUsernameLength = 64

// HistoryKind tags a user's history entry
type HistoryKind string

const (
	HistoryPurchase HistoryKind = "purchase"
	HistorySale     HistoryKind = "sale"
	HistoryDeposit  HistoryKind = "deposit"
)

// HistoryEntry is one append-only line of a user's account history.
// Counterparty is the buyer on a sale entry and the crediting admin on a deposit.
type HistoryEntry struct {
	Kind         HistoryKind
	ItemID       uint64
	ItemName     string
	Quantity     int
	Total        int64
	Counterparty string
	Timestamp    time.Time
}

// MailboxLevel is the display severity of a mailbox entry
type MailboxLevel string

const (
	MailboxSuccess MailboxLevel = "success"
	MailboxWarning MailboxLevel = "warning"
	MailboxInfo    MailboxLevel = "info"
)

// MailboxEntry is a message delivered to a single user
type MailboxEntry struct {
	Message   string
	Level     MailboxLevel
	Read      bool
	CreatedAt time.Time
}

// User represents a marketplace account
type User struct {
	Username     string
	PasswordHash string
	balance      int64 // cents, never negative
	History      []HistoryEntry
	Role         Role
	Mailbox      []MailboxEntry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateUsername trims name and checks it is usable as an account key
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", errs.ErrInvalidUsername)
	}
	if len([]rune(name)) > MaxUsernameLength {
		return "", fmt.Errorf("%w: longer than %d characters", errs.ErrInvalidUsername, MaxUsernameLength)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' {
			return "", fmt.Errorf("%w: %q contains a forbidden character", errs.ErrInvalidUsername, name)
		}
	}
	return name, nil
}

// NewUser creates a user with the given credential hash, starting balance and role
func NewUser(username, passwordHash string, balanceInCents int64, role Role, timeProvider coreport.TimeProvider) (*User, error) {
	name, err := ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if balanceInCents < 0 {
		return nil, errs.ErrNegativeAmount
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRole, role)
	}

	now := timeProvider.Now()
	return &User{
		Username:     name,
		PasswordHash: passwordHash,
		balance:      balanceInCents,
		History:      []HistoryEntry{},
		Role:         role,
		Mailbox:      []MailboxEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Balance returns the current balance in cents
func (u *User) Balance() int64 {
	return u.balance
}

// GetBalance returns the balance as a string with 2 decimal places
func (u *User) GetBalance() string {
	return AmountInCentsToString(u.balance)
}

// SetBalance overwrites the balance when a user is rebuilt from storage
func (u *User) SetBalance(balanceInCents int64) error {
	if balanceInCents < 0 {
		return errs.ErrNegativeAmount
	}
	u.balance = balanceInCents
	return nil
}

// CanAfford reports whether the balance covers amountInCents
func (u *User) CanAfford(amountInCents int64) bool {
	return u.balance >= amountInCents
}

// Debit subtracts amountInCents, refusing to go below zero
func (u *User) Debit(amountInCents int64, timeProvider coreport.TimeProvider) error {
	if amountInCents <= 0 {
		return fmt.Errorf("%w: debit must be positive", errs.ErrInvalidAmount)
	}
	if !u.CanAfford(amountInCents) {
		return errs.NewInsufficientFundsError(u.Username, AmountInCentsToString(amountInCents), u.GetBalance())
	}

	u.balance -= amountInCents
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// Credit adds amountInCents to the balance
func (u *User) Credit(amountInCents int64, timeProvider coreport.TimeProvider) error {
	if amountInCents <= 0 {
		return fmt.Errorf("%w: credit must be positive", errs.ErrInvalidAmount)
	}
	sum, err := AddAmount(u.balance, amountInCents)
	if err != nil {
		return err
	}

	u.balance = sum
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// AppendHistory records an entry; history is never rewritten
func (u *User) AppendHistory(entry HistoryEntry) {
	u.History = append(u.History, entry)
}

// Notify delivers an unread message to the user's mailbox
func (u *User) Notify(message string, level MailboxLevel, timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	u.Mailbox = append(u.Mailbox, MailboxEntry{
		Message:   message,
		Level:     level,
		CreatedAt: now,
	})
	u.UpdatedAt = now
}

// UnreadCount returns the number of unread mailbox entries
func (u *User) UnreadCount() int {
	unread := 0
	for _, m := range u.Mailbox {
		if !m.Read {
			unread++
		}
	}
	return unread
}

// MarkMailboxRead marks every entry read and returns how many were unread
func (u *User) MarkMailboxRead() int {
	unread := 0
	for i := range u.Mailbox {
		if !u.Mailbox[i].Read {
			u.Mailbox[i].Read = true
			unread++
		}
	}
	return unread
}

// SetRole changes the user's role
func (u *User) SetRole(role Role, timeProvider coreport.TimeProvider) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRole, role)
	}
	u.Role = role
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// Clone returns a deep copy so callers can mutate it without touching the original
func (u *User) Clone() *User {
	c := *u
	c.History = append([]HistoryEntry(nil), u.History...)
	c.Mailbox = append([]MailboxEntry(nil), u.Mailbox...)
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	if c.Mailbox == nil {
		c.Mailbox = []MailboxEntry{}
	}
	return &c
}
