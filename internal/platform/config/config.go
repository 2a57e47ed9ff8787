// Package config loads service configuration from the environment. A local
// .env file is honored when present; real deployments inject variables
// directly.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	Port       int    `env:"PORT" envDefault:"8080"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"9090"`
	BuildID    string `env:"BUILD_ID" envDefault:"dev"`

	// Generative fallback
	AITierEnabled bool    `env:"AI_TIER_ENABLED" envDefault:"true"`
	LLMAPIKey     string  `env:"LLM_API_KEY"`
	LLMModel      string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRPS        float64 `env:"LLM_RPS" envDefault:"1"`

	// External extraction API
	SpoonTierEnabled   bool   `env:"SPOON_TIER_ENABLED" envDefault:"true"`
	SpoonacularAPIKey  string `env:"SPOONACULAR_API_KEY"`
	SpoonacularBaseURL string `env:"SPOONACULAR_BASE_URL" envDefault:""`

	// Video transcript sidecar; empty disables the transcript tier.
	TranscriptServiceURL string        `env:"TRANSCRIPT_SERVICE_URL" envDefault:""`
	TranscriptBudget     time.Duration `env:"TRANSCRIPT_BUDGET" envDefault:"60s"`

	// Page fetching
	WebFetchRPS     float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"10s"`

	// Extraction behavior
	MinTriggerScore float64       `env:"MIN_TRIGGER_SCORE" envDefault:"0.60"`
	RequestBudget   time.Duration `env:"REQUEST_BUDGET" envDefault:"60s"`

	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values env tags cannot express: range checks and
// cross-field constraints.
func (c *Config) Validate() error {
	if c.AITierEnabled && c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required while AI_TIER_ENABLED is true")
	}

	if c.MinTriggerScore <= 0 || c.MinTriggerScore > 1 {
		return fmt.Errorf("MIN_TRIGGER_SCORE must be in (0, 1], got %v", c.MinTriggerScore)
	}

	if c.RequestBudget <= 0 {
		return fmt.Errorf("REQUEST_BUDGET must be positive, got %v", c.RequestBudget)
	}

	if c.WebFetchRPS <= 0 {
		return fmt.Errorf("WEB_FETCH_RPS must be positive, got %v", c.WebFetchRPS)
	}

	if c.Port == c.HealthPort {
		return fmt.Errorf("PORT and HEALTH_PORT must differ, both are %d", c.Port)
	}

	return nil
}
