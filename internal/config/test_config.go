package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadTestConfig loads the database settings of integration tests from TEST_DB_* variables.
// Without TEST_DB_HOST the returned config is empty so tests can fall back to their default DSN.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.ParseWithOptions(&cfg.Database, env.Options{Prefix: "TEST_"}); err != nil {
		return nil, fmt.Errorf("failed to parse test environment: %w", err)
	}
	if cfg.Database.Host == "" {
		return &Config{}, nil
	}
	return cfg, nil
}
