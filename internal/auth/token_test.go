package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/society-be/internal/models"
)

func TestTokenManager(t *testing.T) {
	account := models.Account{ID: "acc-1", Email: "a@society.local", Role: models.RoleResident, MustChangePassword: true}

	t.Run("Should round-trip the subject and informational claims", func(t *testing.T) {
		tm := NewTokenManager("secret", "society-backend", time.Hour)
		raw, err := tm.Generate(account)
		require.NoError(t, err)

		claims, err := tm.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", claims.Subject)
		assert.Equal(t, models.RoleResident, claims.Role)
		assert.True(t, claims.MustChangePassword)
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		raw, err := NewTokenManager("other", "society-backend", time.Hour).Generate(account)
		require.NoError(t, err)
		_, err = NewTokenManager("secret", "society-backend", time.Hour).Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject tokens from another issuer", func(t *testing.T) {
		raw, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(account)
		require.NoError(t, err)
		_, err = NewTokenManager("secret", "society-backend", time.Hour).Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		tm := NewTokenManager("secret", "society-backend", time.Minute)
		tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := tm.Generate(account)
		require.NoError(t, err)
		tm.now = time.Now
		_, err = tm.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := NewTokenManager("secret", "i", time.Hour).Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("9876543210")
	require.NoError(t, err)
	assert.NotEqual(t, "9876543210", hash)
	assert.True(t, h.Verify(hash, "9876543210"))
	assert.False(t, h.Verify(hash, "987654321"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
