package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Mode string

const (
	ModeLocal   Mode = "local"
	ModeDiscord Mode = "discord"
)

// Config holds every runtime knob, loaded from the environment.
type Config struct {
	Mode Mode   `env:"PULSE_MODE" envDefault:"local"`
	Port string `env:"PULSE_PORT" envDefault:"8080"`

	// Session engine limits.
	MaxConcurrentSessions int           `env:"PULSE_MAX_SESSIONS" envDefault:"50"`
	SessionMaxAge         time.Duration `env:"PULSE_SESSION_MAX_AGE" envDefault:"24h"`
	DefaultSessionMinutes int           `env:"PULSE_DEFAULT_SESSION_MINUTES" envDefault:"5"`
	ReminderOffset        time.Duration `env:"PULSE_REMINDER_OFFSET" envDefault:"1m"`
	LowResponseThreshold  float64       `env:"PULSE_LOW_RESPONSE_THRESHOLD" envDefault:"0.3"`
	AnalysisTimeout       time.Duration `env:"PULSE_ANALYSIS_TIMEOUT" envDefault:"30s"`

	// Language model backing the analysis pipeline.
	GCPProjectID string `env:"PULSE_GCP_PROJECT"`
	GCPLocation  string `env:"PULSE_GCP_LOCATION" envDefault:"us-central1"`
	ModelName    string `env:"PULSE_MODEL_NAME" envDefault:"gemini-2.5-flash"`
	UseMockLLM   bool   `env:"PULSE_USE_MOCK_LLM"`

	// Delivery collaborator (discord mode only).
	DiscordBotToken string `env:"PULSE_DISCORD_BOT_TOKEN"`
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	switch cfg.Mode {
	case ModeLocal, ModeDiscord:
	default:
		return nil, fmt.Errorf("unknown PULSE_MODE %q", cfg.Mode)
	}

	if cfg.Mode == ModeDiscord && cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("PULSE_DISCORD_BOT_TOKEN must be set in discord mode")
	}
	if !cfg.UseMockLLM && cfg.GCPProjectID == "" {
		// Local runs without credentials fall back to the mock client.
		if cfg.Mode == ModeLocal {
			cfg.UseMockLLM = true
		} else {
			return nil, fmt.Errorf("PULSE_GCP_PROJECT must be set unless PULSE_USE_MOCK_LLM=true")
		}
	}

	if cfg.MaxConcurrentSessions <= 0 {
		return nil, fmt.Errorf("PULSE_MAX_SESSIONS must be positive")
	}
	if cfg.DefaultSessionMinutes <= 0 {
		return nil, fmt.Errorf("PULSE_DEFAULT_SESSION_MINUTES must be positive")
	}
	if cfg.LowResponseThreshold < 0 || cfg.LowResponseThreshold > 1 {
		return nil, fmt.Errorf("PULSE_LOW_RESPONSE_THRESHOLD must be within [0,1]")
	}

	return cfg, nil
}
