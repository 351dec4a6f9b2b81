package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	t.Run("round trip preserves claims", func(t *testing.T) {
		tm := NewTokenManager("test-secret", 60)

		token, expiresAt, err := tm.GenerateToken("admin@example.com", RoleAdmin)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.False(t, expiresAt.IsZero())

		claims, err := tm.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", claims.Email)
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		issuer := NewTokenManager("secret-a", 60)
		verifier := NewTokenManager("secret-b", 60)

		token, _, err := issuer.GenerateToken("admin@example.com", RoleAdmin)
		require.NoError(t, err)

		_, err = verifier.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		tm := NewTokenManager("test-secret", 60)
		_, err := tm.ParseToken("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hashed, "s3cret"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}
