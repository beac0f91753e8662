package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTHGATE_SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "authgate_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Session.RememberTTL)
	assert.Contains(t, cfg.Routes.Protected, "/documentos")
	assert.Contains(t, cfg.Routes.Admin, "/usuarios")
	assert.Contains(t, cfg.Routes.Public, "/login")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_SESSION_SECRET", "test-secret")
	t.Setenv("AUTHGATE_ENVIRONMENT", "production")
	t.Setenv("AUTHGATE_HTTP_PORT", "9999")
	t.Setenv("AUTHGATE_BACKEND_BASEURL", "https://api.example.gov.br/v1")
	t.Setenv("AUTHGATE_SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, "https://api.example.gov.br/v1", cfg.Backend.BaseURL)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("AUTHGATE_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.secret")
}
