package security

import (
	"testing"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), errs.ErrAuth)
	assert.False(t, h.NeedsUpgrade(hash))

	_, err = h.Hash("")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestBcryptHasherPlainTextLegacyHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	assert.NoError(t, h.Compare("admin123", "admin123"))
	assert.ErrorIs(t, h.Compare("admin123", "admin"), errs.ErrAuth)
	assert.ErrorIs(t, h.Compare("", ""), errs.ErrAuth)
	assert.True(t, h.NeedsUpgrade("admin123"))
}

func TestBcryptHasherCostUpgrade(t *testing.T) {
	weak, err := NewBcryptHasher(bcrypt.MinCost).Hash("pw")
	require.NoError(t, err)

	strong := NewBcryptHasher(bcrypt.MinCost + 1)
	assert.True(t, strong.NeedsUpgrade(weak))
	assert.NoError(t, strong.Compare(weak, "pw"))
}
