package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateToken(42, "alice", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "kb-portal", claims.Issuer)
}

func TestParseTokenBadSignature(t *testing.T) {
	InitJWT("secret-a", time.Hour)
	token, err := GenerateToken(1, "bob", "user")
	require.NoError(t, err)

	InitJWT("secret-b", time.Hour)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
