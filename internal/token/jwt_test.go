package token

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	manager := NewJWT("test-secret")
	accountID := uuid.New()

	tokenString, err := manager.GenerateAccessToken(accountID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := manager.ParseAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, accountID, parsed)
}

func TestJWT_RefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWT("test-secret")
	accountID := uuid.New()

	tokenString, jti, err := manager.GenerateRefreshToken(accountID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotEmpty(t, jti)

	parsedID, parsedJTI, err := manager.ParseRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, accountID, parsedID)
	assert.Equal(t, jti, parsedJTI)
}

func TestJWT_TokenTypeMismatch(t *testing.T) {
	manager := NewJWT("test-secret")
	accountID := uuid.New()

	access, err := manager.GenerateAccessToken(accountID)
	require.NoError(t, err)
	refresh, _, err := manager.GenerateRefreshToken(accountID)
	require.NoError(t, err)

	_, _, err = manager.ParseRefreshToken(access)
	assert.Error(t, err)

	_, err = manager.ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	accountID := uuid.New()

	tokenString, err := NewJWT("secret-one").GenerateAccessToken(accountID)
	require.NoError(t, err)

	_, err = NewJWT("secret-two").ParseAccessToken(tokenString)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	manager := NewJWT("test-secret")

	_, err := manager.ParseAccessToken("not.a.token")
	assert.Error(t, err)

	_, _, err = manager.ParseRefreshToken("")
	assert.Error(t, err)
}
