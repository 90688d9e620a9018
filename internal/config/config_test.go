package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sliding_log", cfg.RateLimit.Algorithm)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window.Duration)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": "9000", "allowed_origins": ["https://example.com"]},
		"rate_limit": {"algorithm": "token_bucket", "max_requests": 3, "window": "10m"},
		"redis": {"host": "cache"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "token_bucket", cfg.RateLimit.Algorithm)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window.Duration)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.SweepInterval.Duration)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.GetRedisAddr())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": "9000"}, "rate_limit": {"max_requests": 3}}`)

	t.Setenv("PORT", "7000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.dev, https://b.dev,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window.Duration)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad json", body: `{`},
		{name: "bad duration", body: `{"rate_limit": {"window": "soon"}}`},
		{name: "zero limit", body: `{"rate_limit": {"max_requests": 0}}`},
		{name: "zero window", body: `{"rate_limit": {"window": "0s"}}`},
		{name: "sub-millisecond window", body: `{"rate_limit": {"window": "500us"}}`},
		{name: "sub-millisecond env window", body: `{}`, env: map[string]string{"RATE_LIMIT_WINDOW": "999us"}},
		{name: "unknown provider", body: `{"mail": {"provider": "pigeon"}}`},
		{name: "smtp without host", body: `{"mail": {"provider": "smtp"}}`},
		{name: "bad env int", body: `{}`, env: map[string]string{"RATE_LIMIT_MAX_REQUESTS": "five"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_SMTPProvider(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "contact@example.com")
	t.Setenv("CONTACT_TO", "me@example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, 2525, cfg.Mail.SMTP.Port)
	assert.Equal(t, "me@example.com", cfg.Mail.SMTP.To)
}
