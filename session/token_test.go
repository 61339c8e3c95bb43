package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := SignToken(secret, "sess-1", "user-1", "officer", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "officer", claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := SignToken([]byte("secret-a"), "sess-1", "user-1", "admin", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("secret-b"), raw)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := SignToken(secret, "sess-1", "user-1", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, raw)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken([]byte("test-secret"), "not-a-token")
	assert.Error(t, err)
}
