package entity

import (
	"math"
	"strings"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/marketplace/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid user creation", func(t *testing.T) {
		user, err := NewUser(" alice ", "hash", 10000, Buyer(), mockTime)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(10000), user.Balance())
		assert.Equal(t, "100.00", user.GetBalance())
		assert.Equal(t, Buyer(), user.Role)
		assert.Empty(t, user.History)
		assert.Empty(t, user.Mailbox)
		assert.Equal(t, fixedTime, user.CreatedAt)
		assert.Equal(t, fixedTime, user.UpdatedAt)
	})

	t.Run("Invalid usernames", func(t *testing.T) {
		for _, name := range []string{"", "   ", "a b", "a/b", strings.Repeat("x", MaxUsernameLength+1)} {
			user, err := NewUser(name, "hash", 0, Buyer(), mockTime)
			assert.ErrorIs(t, err, errs.ErrInvalidUsername, name)
			assert.Nil(t, user)
		}
	})

	t.Run("Negative balance", func(t *testing.T) {
		_, err := NewUser("bob", "hash", -1, Buyer(), mockTime)
		assert.ErrorIs(t, err, errs.ErrNegativeAmount)
	})

	t.Run("Zero role", func(t *testing.T) {
		_, err := NewUser("bob", "hash", 0, Role{}, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRole)
	})
}

func TestUserDebit(t *testing.T) {
	initialTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updateTime := time.Date(2023, 1, 1, 13, 0, 0, 0, time.UTC)

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(initialTime).Once()

	user, err := NewUser("alice", "hash", 10000, Buyer(), mockTime)
	require.NoError(t, err)

	t.Run("Valid debit", func(t *testing.T) {
		mockTimeLocal := coremocks.NewMockTimeProvider(t)
		mockTimeLocal.EXPECT().Now().Return(updateTime).Once()

		require.NoError(t, user.Debit(5000, mockTimeLocal))
		assert.Equal(t, "50.00", user.GetBalance())
		assert.Equal(t, updateTime, user.UpdatedAt)
	})

	t.Run("Exact balance debit", func(t *testing.T) {
		mockTimeLocal := coremocks.NewMockTimeProvider(t)
		mockTimeLocal.EXPECT().Now().Return(updateTime).Once()

		require.NoError(t, user.Debit(5000, mockTimeLocal))
		assert.Equal(t, int64(0), user.Balance())
	})

	t.Run("Insufficient balance leaves user untouched", func(t *testing.T) {
		err := user.Debit(1, mockTime)

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		var detailed *errs.InsufficientFundsError
		require.ErrorAs(t, err, &detailed)
		assert.Equal(t, "0.01", detailed.Amount)
		assert.Equal(t, "0.00", detailed.Balance)
		assert.Equal(t, int64(0), user.Balance())
	})

	t.Run("Non-positive debit", func(t *testing.T) {
		assert.ErrorIs(t, user.Debit(0, mockTime), errs.ErrInvalidAmount)
		assert.ErrorIs(t, user.Debit(-5, mockTime), errs.ErrInvalidAmount)
	})
}

func TestUserCredit(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	user, err := NewUser("bob", "hash", 100, Seller(), mockTime)
	require.NoError(t, err)

	require.NoError(t, user.Credit(2500, mockTime))
	assert.Equal(t, "26.00", user.GetBalance())

	assert.ErrorIs(t, user.Credit(0, mockTime), errs.ErrInvalidAmount)

	require.NoError(t, user.SetBalance(math.MaxInt64))
	assert.ErrorIs(t, user.Credit(1, mockTime), errs.ErrAmountOverflow)
	assert.Equal(t, int64(math.MaxInt64), user.Balance())
}

func TestUserMailbox(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	user, err := NewUser("bob", "hash", 0, Buyer(), mockTime)
	require.NoError(t, err)

	user.Notify("Your seller request has been approved!", MailboxSuccess, mockTime)
	user.Notify("hello", MailboxInfo, mockTime)
	assert.Equal(t, 2, user.UnreadCount())

	assert.Equal(t, 2, user.MarkMailboxRead())
	assert.Equal(t, 0, user.UnreadCount())
	assert.Equal(t, 0, user.MarkMailboxRead())
	assert.True(t, user.Mailbox[0].Read)
	assert.Equal(t, MailboxSuccess, user.Mailbox[0].Level)
}

func TestUserClone(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	user, err := NewUser("alice", "hash", 10000, Buyer(), mockTime)
	require.NoError(t, err)
	user.AppendHistory(HistoryEntry{Kind: HistoryPurchase, ItemID: 1, Quantity: 1, Total: 2500})

	clone := user.Clone()
	require.NoError(t, clone.Debit(2500, mockTime))
	clone.AppendHistory(HistoryEntry{Kind: HistoryPurchase, ItemID: 2})
	clone.Notify("x", MailboxInfo, mockTime)

	assert.Equal(t, int64(10000), user.Balance())
	assert.Len(t, user.History, 1)
	assert.Empty(t, user.Mailbox)
	assert.Equal(t, int64(7500), clone.Balance())
}

func TestUserSetRole(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Now()).Maybe()

	user, err := NewUser("bob", "hash", 0, Buyer(), mockTime)
	require.NoError(t, err)

	require.NoError(t, user.SetRole(Admin(2), mockTime))
	assert.Equal(t, 2, user.Role.Level())
	assert.ErrorIs(t, user.SetRole(Role{}, mockTime), errs.ErrInvalidRole)
}
