package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// RoleKind enumerates the three kinds of account
type RoleKind string

const (
	RoleBuyer  RoleKind = "buyer"
	RoleSeller RoleKind = "seller"
	RoleAdmin  RoleKind = "admin"
)

// Admin levels range from 1 (moderator) to 3 (owner)
const (
	MinAdminLevel = 1
	MaxAdminLevel = 3
)

// Role is a closed variant: Buyer, Seller or Admin(level).
// The zero value is not a valid role; use the constructors.
type Role struct {
	kind  RoleKind
	level int
}

// Buyer returns the default role of a registered user
func Buyer() Role { return Role{kind: RoleBuyer} }

// Seller returns the role allowed to list items
func Seller() Role { return Role{kind: RoleSeller} }

// Admin returns an admin role of the given level. Out-of-range levels are clamped;
// use NewRole to validate untrusted input.
func Admin(level int) Role {
	if level < MinAdminLevel {
		level = MinAdminLevel
	}
	if level > MaxAdminLevel {
		level = MaxAdminLevel
	}
	return Role{kind: RoleAdmin, level: level}
}

// NewRole builds a role from its persisted or requested form.
// The level is only meaningful for admins and is ignored otherwise.
func NewRole(kind string, level int) (Role, error) {
	switch RoleKind(strings.ToLower(strings.TrimSpace(kind))) {
	case RoleBuyer:
		return Buyer(), nil
	case RoleSeller:
		return Seller(), nil
	case RoleAdmin:
		if level < MinAdminLevel || level > MaxAdminLevel {
			return Role{}, fmt.Errorf("%w: admin level %d out of range %d-%d",
				errs.ErrInvalidRole, level, MinAdminLevel, MaxAdminLevel)
		}
		return Role{kind: RoleAdmin, level: level}, nil
	default:
		return Role{}, fmt.Errorf("%w: unknown role %q", errs.ErrInvalidRole, kind)
	}
}

// Kind returns the role kind
func (r Role) Kind() RoleKind { return r.kind }

// Level returns the admin level, or 0 for non-admins
func (r Role) Level() int { return r.level }

// IsAdmin reports whether the role is an admin of any level
func (r Role) IsAdmin() bool { return r.kind == RoleAdmin }

// IsValid reports whether r was built by one of the constructors
func (r Role) IsValid() bool {
	switch r.kind {
	case RoleBuyer, RoleSeller:
		return r.level == 0
	case RoleAdmin:
		return r.level >= MinAdminLevel && r.level <= MaxAdminLevel
	}
	return false
}

// Satisfies reports whether a holder of r meets the required role.
// Any user satisfies Buyer; Seller needs the seller role; Admin(N) needs an admin of level N or higher.
func (r Role) Satisfies(required Role) bool {
	switch required.kind {
	case RoleBuyer:
		return r.IsValid()
	case RoleSeller:
		return r.kind == RoleSeller
	case RoleAdmin:
		return r.kind == RoleAdmin && r.level >= required.level
	}
	return false
}

func (r Role) String() string {
	if r.kind == RoleAdmin {
		return fmt.Sprintf("admin(%d)", r.level)
	}
	return string(r.kind)
}
