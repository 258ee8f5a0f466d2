package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("test-secret-key-for-unit-tests-only!!", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestService()

	signed, expiresAt, err := s.CreateAccessToken("user_123", "editor")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := s.ParseAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.UserID)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := newTestService()

	signed, _, err := s.CreateRefreshToken("user_123", "session_456")
	require.NoError(t, err)

	claims, err := s.ParseRefreshToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.UserID)
	assert.Equal(t, "session_456", claims.SessionID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	s := newTestService()

	access, _, err := s.CreateAccessToken("user_123", "viewer")
	require.NoError(t, err)

	// access token 不能作为 refresh token 使用
	_, err = s.ParseRefreshToken(access)
	require.Error(t, err)

	refresh, _, err := s.CreateRefreshToken("user_123", "session_456")
	require.NoError(t, err)
	_, err = s.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	s := NewService("test-secret-key-for-unit-tests-only!!", -time.Minute, 24*time.Hour)

	signed, _, err := s.CreateAccessToken("user_123", "viewer")
	require.NoError(t, err)

	_, err = s.ParseAccessToken(signed)
	require.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	s := newTestService()
	other := NewService("another-secret-key-for-unit-tests!!!!!", 15*time.Minute, 24*time.Hour)

	signed, _, err := s.CreateAccessToken("user_123", "viewer")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(signed)
	require.Error(t, err)
}
