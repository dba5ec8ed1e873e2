package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{"record not found", gorm.ErrRecordNotFound, persistence.ErrSnapshotNotFound},
		{"wrapped record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), persistence.ErrSnapshotNotFound},
		{"deadlock", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), errs.ErrStoreBusy},
		{"serialization", errors.New("could not serialize access due to concurrent update: serialization failure"), errs.ErrStoreBusy},
		{"context deadline", context.DeadlineExceeded, errs.ErrStoreBusy},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), errs.ErrDatabaseConnection},
		{"statement timeout", errors.New("canceling statement due to statement timeout"), errs.ErrStoreBusy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Execute
			mapped := mapper.MapError(tc.err, "commit")

			// Assertions
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, mapper.MapError(nil, "load"))
	})

	t.Run("unknown errors keep their cause", func(t *testing.T) {
		cause := errors.New("syntax error at or near")

		mapped := mapper.MapError(cause, "load users")

		assert.ErrorIs(t, mapped, cause)
		assert.Contains(t, mapped.Error(), "load users")
	})
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, isTransientError(errors.New("connection refused")))
	assert.True(t, isTransientError(errors.New("FATAL: the database system is starting up")))
	assert.True(t, isTransientError(errors.New("unexpected EOF")))
	assert.False(t, isTransientError(errors.New("password authentication failed")))
	assert.False(t, isTransientError(nil))
}
