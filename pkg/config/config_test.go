package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industrial-ai-backend/internal/ai"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_MAINTENANCE_MODEL", "")
	t.Setenv("AI_REQUEST_TIMEOUT", "")
	t.Setenv("AI_MAX_RETRIES", "")
	t.Setenv("AI_RETRY_BACKOFF", "")

	cfg := Load()

	assert.Equal(t, "gemini-2.5-flash", cfg.MaintenanceModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.ConfiguratorModel)
	assert.Equal(t, 60*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "maintenance/{device_id}/report", cfg.MQTTTopicReport)
	assert.ErrorIs(t, cfg.Validate(), ai.ErrMissingAPIKey)
	assert.Equal(t, ai.DefaultRetryPolicy(), cfg.RetryPolicy())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AI_REQUEST_TIMEOUT", "90s")
	t.Setenv("AI_RETRY_BACKOFF", "0.5")
	t.Setenv("AI_MAX_RETRIES", "4")
	t.Setenv("AI_STRICT_FIELDS", "true")
	t.Setenv("MQTT_ENABLED", "false")

	cfg := Load()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, 90*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.AIRetryBackoff)
	assert.Equal(t, 4, cfg.AIMaxRetries)
	assert.True(t, cfg.AIStrictFields)
	assert.Equal(t, ai.RetryPolicy{MaxRetries: 4, Backoff: 500 * time.Millisecond, Timeout: 90 * time.Second}, cfg.RetryPolicy())
	assert.False(t, cfg.MQTTEnabled)
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("AI_MAX_RETRIES", "lots")
	t.Setenv("AI_REQUEST_TIMEOUT", "soon")
	t.Setenv("CLICKHOUSE_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 2, cfg.AIMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.AIRequestTimeout)
	assert.True(t, cfg.ClickHouseEnabled)
}

func TestLegacyAPIKeyVariable(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy")

	assert.Equal(t, "legacy", Load().GeminiAPIKey)
}
