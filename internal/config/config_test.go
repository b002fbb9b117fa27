package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.API.WriteTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.Delay)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, "8081", cfg.App.HTTPPort)
	assert.Equal(t, "1", cfg.App.DemoUserID)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstCapacity)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "user-webclient", cfg.Logger.ServiceName)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT_MS", "2000")
	t.Setenv("API_READ_TIMEOUT_MS", "750")
	t.Setenv("RETRY_MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY_MS", "0")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("HTTP_PORT", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.ConnectTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.API.ReadTimeout)
	assert.Equal(t, 2*time.Second, cfg.API.WriteTimeout)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Duration(0), cfg.Retry.Delay)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Empty(t, cfg.App.HTTPPort)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
	assert.Equal(t, "production", cfg.Logger.Environment)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "API_BASE_URL=http://users.internal:9000\nRETRY_MAX_RETRIES=1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://users.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "base url without scheme", key: "API_BASE_URL", val: "localhost:8080"},
		{name: "zero timeout", key: "API_TIMEOUT_MS", val: "0"},
		{name: "negative read timeout", key: "API_READ_TIMEOUT_MS", val: "-1"},
		{name: "negative retries", key: "RETRY_MAX_RETRIES", val: "-1"},
		{name: "negative delay", key: "RETRY_DELAY_MS", val: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestValidate_EnabledFeatures(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	withCache := *cfg
	withCache.Cache = CacheConfig{Enabled: true}
	assert.Error(t, withCache.Validate())

	withLimiter := *cfg
	withLimiter.RateLimit = RateLimitConfig{Enabled: true}
	assert.Error(t, withLimiter.Validate())
}
