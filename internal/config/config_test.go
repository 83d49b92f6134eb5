package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, SyncLocal, cfg.Sync.Mode)
	assert.Equal(t, 2, cfg.Sync.Workers)
	assert.Equal(t, 256, cfg.Sync.QueueSize)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.RemoteCall)
	assert.Equal(t, 2*time.Second, cfg.Timeouts.ProfileUpdate)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Completion)
	assert.Equal(t, 6*time.Second, cfg.Timeouts.Watchdog)
	assert.Equal(t, 30*time.Minute, cfg.Timeouts.SessionIdle)
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.SessionRetain)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "quest")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "questlingo")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SYNC_MODE", "asynq")
	t.Setenv("COMPLETION_TIMEOUT", "750ms")
	t.Setenv("JWT_SECRET", "jwt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, SyncAsynq, cfg.Sync.Mode)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.Completion)
	assert.Equal(t, "quest:secret@tcp(db:3307)/questlingo?parseTime=true&charset=utf8mb4&clientFoundRows=true", cfg.DSN())
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "sync mode", key: "SYNC_MODE", value: "kafka"},
		{name: "workers", key: "SYNC_WORKERS", value: "0"},
		{name: "port", key: "SERVER_PORT", value: "http"},
		{name: "duration", key: "REMOTE_CALL_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateDatabase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST, DB_USER, DB_PASSWORD, DB_NAME")

	cfg.Database = DatabaseConfig{Host: "db", User: "u", Password: "p", DBName: "n"}
	assert.NoError(t, cfg.ValidateDatabase())
	assert.EqualError(t, cfg.ValidateServer(), "JWT_SECRET is required")
}

func TestLoadTestConfig(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "")
	cfg, err := LoadTestConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.Host)

	t.Setenv("TEST_DB_HOST", "localhost")
	t.Setenv("TEST_DB_PORT", "3308")
	t.Setenv("TEST_DB_USER", "root")
	t.Setenv("TEST_DB_PASSWORD", "root")
	t.Setenv("TEST_DB_NAME", "questlingo_test")
	cfg, err = LoadTestConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3308, cfg.Database.Port)
	assert.Equal(t, "questlingo_test", cfg.Database.DBName)
}
