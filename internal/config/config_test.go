package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/pulsebot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ModeLocal, cfg.Mode)
	assert.Equal(t, 50, cfg.MaxConcurrentSessions)
	assert.Equal(t, "24h0m0s", cfg.SessionMaxAge.String())
	assert.Equal(t, "1m0s", cfg.ReminderOffset.String())
	assert.InDelta(t, 0.3, cfg.LowResponseThreshold, 1e-9)
	assert.Equal(t, "30s", cfg.AnalysisTimeout.String())
	// No GCP project configured in local mode means the mock LLM.
	assert.True(t, cfg.UseMockLLM)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PULSE_MAX_SESSIONS", "7")
	t.Setenv("PULSE_REMINDER_OFFSET", "30s")
	t.Setenv("PULSE_LOW_RESPONSE_THRESHOLD", "0.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxConcurrentSessions)
	assert.Equal(t, "30s", cfg.ReminderOffset.String())
	assert.InDelta(t, 0.5, cfg.LowResponseThreshold, 1e-9)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PULSE_MAX_SESSIONS", "0")
	_, err := config.Load()
	require.Error(t, err)
}

func TestDiscordModeRequiresToken(t *testing.T) {
	t.Setenv("PULSE_MODE", "discord")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("PULSE_DISCORD_BOT_TOKEN", "token")
	t.Setenv("PULSE_USE_MOCK_LLM", "true")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ModeDiscord, cfg.Mode)
}
