package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime settings, loaded from environment
// variables with sensible defaults for local development.
type Config struct {
	ListenAddr      string        `env:"INKVEIL_LISTEN_ADDR" envDefault:":8080"`
	DatabasePath    string        `env:"INKVEIL_DB_PATH" envDefault:"inkveil.db"`
	ShutdownTimeout time.Duration `env:"INKVEIL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
