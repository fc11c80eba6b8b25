package auth

import (
	"testing"
	"time"

	"citamed/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "citamed",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, "ana@example.com", "patient")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "patient", claims.Role)
	assert.Equal(t, "citamed", claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, "ana@example.com", "patient")
	require.NoError(t, err)

	other := testJWTConfig()
	other.AccessSecret = "someone-else"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := GenerateAccessToken(cfg, 42, "ana@example.com", "patient")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateRefreshToken(cfg, 42)
	require.NoError(t, err)

	id, err := ParseRefreshToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateRefreshToken(cfg, 42)
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
