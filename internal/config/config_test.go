package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.VerificationMaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "azure", cfg.LLMProvider)
	assert.Equal(t, 512, cfg.LLMMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLMRequestTimeout)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VERIFICATION_MAX_RETRIES", "3")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://bankofshash.com, https://staging.bankofshash.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.VerificationMaxRetries)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.True(t, cfg.RedisTLS)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, []string{"https://bankofshash.com", "https://staging.bankofshash.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}
