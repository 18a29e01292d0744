package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.PhotoBackend)
	assert.NotEmpty(t, cfg.Timezone)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SESSION_TTL", "ADMIN_DEFAULT_PASSWORD", "TIMEZONE", "CORS_ALLOWED_ORIGINS", "PHOTO_BACKEND"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := Load()

	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "bos123", cfg.AdminDefaultPassword)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "local", cfg.PhotoBackend)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("PHOTO_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "visits")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "s3", cfg.PhotoBackend)
	assert.Equal(t, "visits", cfg.S3Bucket)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	assert.Equal(t, 12*time.Hour, Load().SessionTTL)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_ADDR=redis:6379\nLOG_LEVEL=debug\n"), 0600))
	t.Chdir(dir)

	// The real environment wins over the file.
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "")
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))
	t.Cleanup(func() { _ = os.Unsetenv("REDIS_ADDR") })

	cfg := Load()

	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}
