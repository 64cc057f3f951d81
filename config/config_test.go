package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "bottom-driven", cfg.DefaultLayout)
	assert.Equal(t, "abort", cfg.FailurePolicy)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.MongoURI)
	assert.Empty(t, cfg.JWTKey)
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, 30*24*time.Hour, cfg.AuditRetention)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FUNNEL_PORT", "9090")
	t.Setenv("FUNNEL_DEFAULT_LAYOUT", "top-driven")
	t.Setenv("FUNNEL_SESSION_TTL", "5m")
	t.Setenv("FUNNEL_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("FUNNEL_MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "top-driven", cfg.DefaultLayout)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}
