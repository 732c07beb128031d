package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("ORG_AUTO_REBUILD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Org.AutoRebuild)
	assert.Equal(t, 500*time.Millisecond, cfg.Org.RebuildDebounce())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://intranet.example.com, ,http://localhost:3000 ")
	t.Setenv("ORG_AUTO_REBUILD", "false")
	t.Setenv("ORG_CACHE_TTL_SECONDS", "0")
	t.Setenv("ORG_RULES_FILE", "/etc/org/rules.yaml")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.Equal(t, []string{"https://intranet.example.com", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Org.AutoRebuild)
	assert.Equal(t, time.Duration(0), cfg.Org.CacheTTL())
	assert.Equal(t, "/etc/org/rules.yaml", cfg.Org.RulesFile)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	assert.Error(t, err)
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
}
