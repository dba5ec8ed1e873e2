package error

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidInput      = 4000
	CodeInsufficientFunds = 4001
	CodeOutOfStock        = 4002
	CodeAuth              = 4010
	CodeForbidden         = 4030
	CodeUserNotFound      = 4040
	CodeItemNotFound      = 4041
	CodeNotifNotFound     = 4042
	CodeNotFound          = 4043
	CodeDuplicateRequest  = 4090
	CodeUsernameTaken     = 4091
	CodeStoreBusy         = 4230

	// 5xxx - Server errors
	CodeInternalServer = 5000
	CodeStoreCorrupt   = 5030
)

// Base error types
var (
	// ErrAuth is returned when a username/secret pair does not match
	ErrAuth = errors.New("invalid username or password")

	// ErrForbidden is returned on a role, level or ownership violation
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound is the parent of every "missing record" error
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrItemNotFound is returned when the requested item doesn't exist
	ErrItemNotFound = fmt.Errorf("item %w", ErrNotFound)

	// ErrNotificationNotFound is returned when the requested notification doesn't exist
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	// ErrInsufficientFunds is returned when a buyer cannot cover a purchase
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOutOfStock is returned when an item has fewer units than requested
	ErrOutOfStock = errors.New("not enough stock available")

	// ErrDuplicateRequest is returned when a user already has a pending seller request
	ErrDuplicateRequest = errors.New("a pending seller request already exists")

	// ErrUsernameTaken is returned on registration with an existing name
	ErrUsernameTaken = errors.New("username already exists")

	// ErrStoreCorrupt is returned when a persisted record family cannot be decoded
	ErrStoreCorrupt = errors.New("record store is corrupt")

	// ErrStoreBusy is returned when a family lock could not be acquired in time
	ErrStoreBusy = errors.New("record store is busy")

	// ErrInvalidInput is the parent of every malformed-input error
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAmount is returned when a money amount format is invalid
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount format", ErrInvalidInput)

	// ErrNegativeAmount is returned when a money amount is negative
	ErrNegativeAmount = fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)

	// ErrAmountOverflow is returned when an amount is too large to represent
	ErrAmountOverflow = fmt.Errorf("%w: amount is too large", ErrInvalidInput)

	// ErrInvalidQuantity is returned when a quantity or stock count is out of range
	ErrInvalidQuantity = fmt.Errorf("%w: invalid quantity", ErrInvalidInput)

	// ErrInvalidFileType is returned when an image extension is not allow-listed
	ErrInvalidFileType = fmt.Errorf("%w: invalid file type", ErrInvalidInput)

	// ErrInvalidUsername is returned when a username is empty or malformed
	ErrInvalidUsername = fmt.Errorf("%w: invalid username", ErrInvalidInput)

	// ErrInvalidRole is returned for an unknown role or out-of-range admin level
	ErrInvalidRole = fmt.Errorf("%w: invalid role", ErrInvalidInput)

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return CodeAuth
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrItemNotFound):
		return CodeItemNotFound
	case errors.Is(err, ErrNotificationNotFound):
		return CodeNotifNotFound
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrOutOfStock):
		return CodeOutOfStock
	case errors.Is(err, ErrDuplicateRequest):
		return CodeDuplicateRequest
	case errors.Is(err, ErrUsernameTaken):
		return CodeUsernameTaken
	case errors.Is(err, ErrStoreBusy):
		return CodeStoreBusy
	case errors.Is(err, ErrStoreCorrupt):
		return CodeStoreCorrupt
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeInternalServer
	}
}

// Message returns the human-readable text shown to users for err
func Message(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "Invalid username or password"
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to perform this action"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, ErrNotificationNotFound):
		return "Invalid notification"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, ErrOutOfStock):
		return "Not enough stock available"
	case errors.Is(err, ErrDuplicateRequest):
		return "You already have a pending seller request"
	case errors.Is(err, ErrUsernameTaken):
		return "Username already exists"
	case errors.Is(err, ErrStoreBusy):
		return "The store is busy, please try again"
	case errors.Is(err, ErrStoreCorrupt):
		return "Stored data is damaged and must be repaired by an administrator"
	case errors.Is(err, ErrInvalidFileType):
		return "Invalid file type"
	case errors.Is(err, ErrInvalidInput):
		msg := err.Error()
		if i := strings.Index(msg, ErrInvalidInput.Error()); i >= 0 {
			msg = msg[i:]
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	default:
		return "Internal server error"
	}
}

// InsufficientFundsError provides detailed error information for a failed debit
type InsufficientFundsError struct {
	Username string
	Amount   string
	Balance  string
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %s: required %s, available %s",
		e.Username, e.Amount, e.Balance)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_funds",
		"username":   e.Username,
		"amount":     e.Amount,
		"balance":    e.Balance,
		"error_code": CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(username, amount, balance string) error {
	return &InsufficientFundsError{Username: username, Amount: amount, Balance: balance}
}

// OutOfStockError provides detailed information about a failed stock decrement
type OutOfStockError struct {
	ItemID    uint64
	Requested int
	Available int
}

// Error implements the error interface
func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("item %d out of stock: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// Is checks if the target error is an ErrOutOfStock
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// LogFields returns a map of fields for structured logging
func (e *OutOfStockError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "out_of_stock",
		"item_id":    e.ItemID,
		"requested":  e.Requested,
		"available":  e.Available,
		"error_code": CodeOutOfStock,
	}
}

// NewOutOfStockError creates a new detailed out-of-stock error
func NewOutOfStockError(itemID uint64, requested, available int) error {
	return &OutOfStockError{ItemID: itemID, Requested: requested, Available: available}
}

// ForbiddenError describes which rule rejected an actor
type ForbiddenError struct {
	Actor  string
	Action string
	Reason string
}

// Error implements the error interface
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s may not %s: %s", e.Actor, e.Action, e.Reason)
}

// Is checks if the target error is an ErrForbidden
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// LogFields returns a map of fields for structured logging
func (e *ForbiddenError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "forbidden",
		"actor":      e.Actor,
		"action":     e.Action,
		"reason":     e.Reason,
		"error_code": CodeForbidden,
	}
}

// NewForbiddenError creates a new detailed forbidden error
func NewForbiddenError(actor, action, reason string) error {
	return &ForbiddenError{Actor: actor, Action: action, Reason: reason}
}

// DuplicateRequestError provides detailed information about a repeated seller request
type DuplicateRequestError struct {
	Username  string
	RequestID string
}

// Error implements the error interface
func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("user %s already has pending seller request %s", e.Username, e.RequestID)
}

// Is checks if the target error is an ErrDuplicateRequest
func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicateRequest
}

// NewDuplicateRequestError creates a new detailed duplicate request error
func NewDuplicateRequestError(username, requestID string) error {
	return &DuplicateRequestError{Username: username, RequestID: requestID}
}

// StoreCorruptError reports a record family that failed to decode
type StoreCorruptError struct {
	Family string
	Err    error
}

// Error implements the error interface
func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("record family %q is corrupt: %v", e.Family, e.Err)
}

// Is checks if the target error is an ErrStoreCorrupt
func (e *StoreCorruptError) Is(target error) bool {
	return target == ErrStoreCorrupt
}

// Unwrap returns the underlying decode error
func (e *StoreCorruptError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *StoreCorruptError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "store_corrupt",
		"family":     e.Family,
		"error":      e.Err.Error(),
		"error_code": CodeStoreCorrupt,
	}
}

// NewStoreCorruptError creates a new store corruption error
func NewStoreCorruptError(family string, err error) error {
	return &StoreCorruptError{Family: family, Err: err}
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbiddenError checks if the error is a role, level or ownership violation
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInvalidInputError checks if the error is any malformed-input error
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreCorruptError checks if the error reports a corrupt record family
func IsStoreCorruptError(err error) bool {
	return errors.Is(err, ErrStoreCorrupt)
}

// LogFields extracts structured fields from detailed errors, falling back to the message
func LogFields(err error) map[string]any {
	var fielder interface{ LogFields() map[string]any }
	if errors.As(err, &fielder) {
		return fielder.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}
