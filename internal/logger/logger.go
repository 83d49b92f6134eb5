// Package logger holds the process-wide zap logger
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process logger. It is a no-op logger until Init is called.
var Logger = zap.NewNop()

// Init builds the process logger for a level name (debug, info, warn, error).
// The debug level switches to the human readable development encoder.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Logger = l
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
