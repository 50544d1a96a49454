package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_URL", "")
	t.Setenv("AUTH_INIT_TIMEOUT", "")
	t.Setenv("REDIS_ADDR", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://localhost:5000/api", c.GetAPIURL())
	require.Equal(t, 15*time.Second, c.GetAuthInitTimeout())
	require.Equal(t, "lms_portal_sid", c.GetSessionCookieName())
	require.Empty(t, c.GetRedisAddr())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("API_URL", "https://api.example.com/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("CORS_ORIGINS", "https://b.example.com, https://a.example.com")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://api.example.com/v1", c.GetAPIURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, 4, c.GetRedisDB())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://a.example.com"))
	require.Equal(t, "https://a.example.com, https://b.example.com", c.GetAllowedOrigins().String())
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "four")

	c := config.New()
	require.Equal(t, 10*time.Second, c.GetAPITimeout())
	require.Equal(t, 0, c.GetRedisDB())
}
