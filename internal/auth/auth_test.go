package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestKeys(t *testing.T) *Keys {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys, err := NewKeys(privateKey, &privateKey.PublicKey)
	require.NoError(t, err)
	return keys
}

func TestTokenRoundTrip(t *testing.T) {
	keys := newTestKeys(t)

	token, err := keys.GenerateToken("user-123", RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := keys.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	keys := newTestKeys(t)

	token, err := keys.GenerateToken("user-123", RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = keys.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenFromOtherKeyRejected(t *testing.T) {
	keys := newTestKeys(t)
	otherKeys := newTestKeys(t)

	token, err := otherKeys.GenerateToken("user-123", RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = keys.ValidateToken(token)
	require.Error(t, err)
}

func TestNewKeysRejectsNil(t *testing.T) {
	_, err := NewKeys(nil, nil)
	require.Error(t, err)
}
