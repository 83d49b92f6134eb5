// Package config provides configuration for the application
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SyncMode selects how remote writes leave the process
type SyncMode string

const (
	// SyncLocal delivers writes from in-process workers
	SyncLocal SyncMode = "local"
	// SyncAsynq enqueues writes on Redis for the worker command
	SyncAsynq SyncMode = "asynq"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Sync      SyncConfig
	Timeouts  TimeoutConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" envDefault:"3306"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int `env:"SERVER_PORT" envDefault:"8080"`
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// JWTConfig holds the secret shared with the identity provider
type JWTConfig struct {
	Secret string `env:"JWT_SECRET"`
}

// SyncConfig holds remote write-back settings
type SyncConfig struct {
	Mode           SyncMode      `env:"SYNC_MODE" envDefault:"local"`
	Workers        int           `env:"SYNC_WORKERS" envDefault:"2"`
	QueueSize      int           `env:"SYNC_QUEUE_SIZE" envDefault:"256"`
	MaxAttempts    int           `env:"SYNC_MAX_ATTEMPTS" envDefault:"3"`
	AttemptTimeout time.Duration `env:"SYNC_ATTEMPT_TIMEOUT" envDefault:"5s"`
}

// TimeoutConfig holds the deadlines of lesson sessions
type TimeoutConfig struct {
	RemoteCall     time.Duration `env:"REMOTE_CALL_TIMEOUT" envDefault:"3s"`
	ProfileUpdate  time.Duration `env:"PROFILE_UPDATE_TIMEOUT" envDefault:"2s"`
	Completion     time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"5s"`
	Watchdog       time.Duration `env:"MONITOR_WATCHDOG" envDefault:"6s"`
	SlowCompletion time.Duration `env:"SLOW_COMPLETION_THRESHOLD" envDefault:"3s"`
	SessionIdle    time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionRetain  time.Duration `env:"SESSION_RETAIN_COMPLETED" envDefault:"5m"`
}

// TelemetryConfig holds tracing settings. Tracing is off without an endpoint.
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"questlingo"`
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.CORS.AllowedOrigins = cleanOrigins(cfg.CORS.AllowedOrigins)

	switch cfg.Sync.Mode {
	case SyncLocal, SyncAsynq:
	default:
		return nil, fmt.Errorf("invalid SYNC_MODE %q", cfg.Sync.Mode)
	}
	if cfg.Sync.Workers < 1 || cfg.Sync.QueueSize < 1 || cfg.Sync.MaxAttempts < 1 {
		return nil, errors.New("SYNC_WORKERS, SYNC_QUEUE_SIZE and SYNC_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

// ValidateDatabase checks the settings needed to reach the database
func (c *Config) ValidateDatabase() error {
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.Database.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServer checks the settings needed to serve the API
func (c *Config) ValidateServer() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// DSN returns the database connection string.
// clientFoundRows makes idempotent updates report matched rows.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func cleanOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
