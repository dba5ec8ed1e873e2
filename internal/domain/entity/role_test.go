package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	t.Run("Valid roles", func(t *testing.T) {
		testCases := []struct {
			kind     string
			level    int
			expected Role
		}{
			{"buyer", 0, Buyer()},
			{"Seller", 2, Seller()},
			{"admin", 1, Admin(1)},
			{" admin ", 3, Admin(3)},
		}

		for _, tc := range testCases {
			t.Run(tc.kind, func(t *testing.T) {
				role, err := NewRole(tc.kind, tc.level)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, role)
			})
		}
	})

	t.Run("Invalid roles", func(t *testing.T) {
		for _, tc := range []struct {
			kind  string
			level int
		}{{"admin", 0}, {"admin", 4}, {"owner", 1}, {"", 0}} {
			_, err := NewRole(tc.kind, tc.level)
			assert.ErrorIs(t, err, errs.ErrInvalidRole)
		}
	})
}

func TestRoleSatisfies(t *testing.T) {
	testCases := []struct {
		name     string
		holder   Role
		required Role
		expected bool
	}{
		{"buyer as buyer", Buyer(), Buyer(), true},
		{"seller as buyer", Seller(), Buyer(), true},
		{"admin as buyer", Admin(1), Buyer(), true},
		{"buyer as seller", Buyer(), Seller(), false},
		{"seller as seller", Seller(), Seller(), true},
		{"admin as seller", Admin(3), Seller(), false},
		{"admin 1 as admin 2", Admin(1), Admin(2), false},
		{"admin 2 as admin 2", Admin(2), Admin(2), true},
		{"admin 3 as admin 1", Admin(3), Admin(1), true},
		{"seller as admin", Seller(), Admin(1), false},
		{"zero role as buyer", Role{}, Buyer(), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.holder.Satisfies(tc.required))
		})
	}
}

func TestAdminClampsLevel(t *testing.T) {
	assert.Equal(t, MinAdminLevel, Admin(-2).Level())
	assert.Equal(t, MaxAdminLevel, Admin(9).Level())
	assert.Equal(t, "admin(2)", Admin(2).String())
	assert.Equal(t, "seller", Seller().String())
	assert.Zero(t, Seller().Level())
}
