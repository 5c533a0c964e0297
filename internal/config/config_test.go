package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "HOSPITAL_MODEL", "GEOCODE_CACHE_SIZE", "REDIS_ADDR", "PROBE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Empty(t, cfg.OpenRouter.APIKey)
	assert.Equal(t, "perplexity/sonar", cfg.OpenRouter.Model)
	assert.Equal(t, 1200, cfg.OpenRouter.MaxTokens)
	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAI.Model)
	assert.Equal(t, 512, cfg.Geocoding.CacheSize)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 3*time.Second, cfg.Probe.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("LLM_TIMEOUT", "10s")
	t.Setenv("GEOCODE_CACHE_SIZE", "-3")
	t.Setenv("HOSPITAL_TEMPERATURE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "or-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, 10*time.Second, cfg.OpenRouter.Timeout)
	assert.Equal(t, 10*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 512, cfg.Geocoding.CacheSize)
	assert.InDelta(t, 0.2, cfg.OpenRouter.Temperature, 1e-9)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins())

	cfg.Server.CORSAllowOrigin = "https://finder.example.org"
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000", "https://finder.example.org"}, cfg.AllowedOrigins())

	cfg.Server.CORSAllowOrigin = "http://localhost:3000"
	assert.Len(t, cfg.AllowedOrigins(), 2)
}
