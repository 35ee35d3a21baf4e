package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PasswordSchemePlain, cfg.Auth.PasswordScheme)
	assert.Equal(t, TokenModeLegacy, cfg.Session.TokenMode)
	assert.Equal(t, "ontimely_client", cfg.Session.CookieName)
	assert.Zero(t, cfg.Session.TTL())
	assert.Equal(t, "/media", cfg.Uploads.PublicPrefix)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Second, cfg.Auth.SignupRetryDelay())
	assert.True(t, cfg.Logger.Development)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_PASSWORD_SCHEME", "BCRYPT")
	t.Setenv("SESSION_TOKEN_MODE", "jwt")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PasswordSchemeBcrypt, cfg.Auth.PasswordScheme)
	assert.Equal(t, TokenModeJWT, cfg.Session.TokenMode)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.False(t, cfg.Logger.Development)
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("AUTH_PASSWORD_SCHEME", "md5")
	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_PASSWORD_SCHEME")

	t.Setenv("AUTH_PASSWORD_SCHEME", "plain")
	t.Setenv("SESSION_TOKEN_MODE", "opaque")
	_, err = Load()
	assert.ErrorContains(t, err, "SESSION_TOKEN_MODE")
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
