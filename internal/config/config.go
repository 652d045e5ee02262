// Package config loads the bot configuration from the environment. A .env
// file in the working directory supplies defaults for local runs; real
// environment variables always win.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_TOKEN" validate:"required"`
	DatabaseURL   string `envconfig:"DATABASE_URL" validate:"required,url"`

	// SchedulerInterval is how often due polls are published and overdue
	// polls swept.
	SchedulerInterval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"60s" validate:"min=1s"`

	// HTTPAddr is the ops server listen address (health and stats API).
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load reads the .env file when present, processes the environment and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
