package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 60, cfg.GlobalRateLimit)
	assert.Equal(t, 5, cfg.ContactsRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CONTACTS_RATE_LIMIT", "20")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 20, cfg.ContactsRateLimit)
}

func TestLoadConfigRejectsBadAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ALGORITHM", "RS256")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HS256 or HS512")
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
