package persistence

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// Family names one independently persisted collection of records
type Family string

const (
	FamilyUsers         Family = "users"
	FamilyItems         Family = "items"
	FamilyNotifications Family = "notifications"
)

// Families returns every family in lock order. Locks are always taken in this order.
func Families() []Family {
	return []Family{FamilyUsers, FamilyItems, FamilyNotifications}
}

// Rank returns the position of f in lock order, or -1 if f is unknown
func (f Family) Rank() int {
	for i, known := range Families() {
		if f == known {
			return i
		}
	}
	return -1
}

// ParseFamily validates a family name
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	if f.Rank() < 0 {
		return "", fmt.Errorf("%w: unknown record family %q", errs.ErrInvalidInput, s)
	}
	return f, nil
}
