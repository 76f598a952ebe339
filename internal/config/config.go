package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL   string `env:"DATABASE_URL,required"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`

	// Session limits
	MaxSessionsPerUser    int `env:"MAX_SESSIONS_PER_USER" envDefault:"10"`
	MaxMessagesPerSession int `env:"MAX_MESSAGES_PER_SESSION" envDefault:"100"`

	// Model catalog override (yaml file); built-in defaults when unset
	ModelsFile string `env:"MODELS_FILE"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
