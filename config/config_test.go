package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	unset(t, "HTTP_ADDR", "APP_USERNAME", "APP_PASSWORD", "SESSION_BACKEND",
		"SESSION_TTL", "SESSION_COOKIE_SECURE", "WORDCLOUD_MAX_WORDS", "REVIEW_COLUMN")

	cfg := Load()
	assert.Equal(t, ":8501", cfg.HTTPAddr)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "1234", cfg.Password)
	assert.Equal(t, "review_text", cfg.ReviewField)
	assert.Equal(t, SESSION_BACKEND_MEMORY, cfg.SessionBackend)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SessionCookieSecure)
	assert.Equal(t, 200, cfg.MaxWords)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SESSION_BACKEND", "valkey")
	t.Setenv("SESSION_TTL", "60")
	t.Setenv("WORDCLOUD_MAX_WORDS", "not-a-number")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, SESSION_BACKEND_VALKEY, cfg.SessionBackend)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Equal(t, 200, cfg.MaxWords)
	assert.True(t, cfg.ValkeyTLS)
	assert.True(t, cfg.SessionCookieSecure)
}

// unset clears keys for the duration of the test; t.Setenv restores them afterwards.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
