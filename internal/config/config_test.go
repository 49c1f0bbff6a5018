package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("VERIFICATION_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.VerificationTokenTTL)
	require.Equal(t, 6, cfg.CommentRatePerMinute)
	require.Equal(t, "@hourly", cfg.TokenSweepSpec)
	require.False(t, cfg.MailEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("VERIFICATION_TOKEN_TTL", "2h")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "u")
	t.Setenv("SMTP_PASS", "p")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, 2*time.Hour, cfg.VerificationTokenTTL)
	require.True(t, cfg.MailEnabled())
}

func TestLoadRejectsNonPositiveRate(t *testing.T) {
	t.Setenv("COMMENT_RATE_PER_MINUTE", "0")

	_, err := Load()
	require.Error(t, err)
}
