// Package logging wires a single zap logger used by every component of
// the server, so no component reaches for the standard library "log"
// package directly.
package logging

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process-wide logger is built.
type Config struct {
	// Level is the minimum level that is emitted.
	Level zapcore.Level `yaml:"level" mapstructure:"level"`
	// JSON selects JSON encoding (production / piped output) over the
	// console encoding used for interactive sessions.
	JSON bool `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the logging defaults used when no CLI flag or
// config file overrides them: info level, console encoding.
func DefaultConfig() Config {
	return Config{Level: zapcore.InfoLevel, JSON: false}
}

// Init builds the process-wide logger from cfg. It is called exactly
// once, from main, before any other component starts logging.
func Init(cfg Config) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "console"
	if cfg.JSON {
		encoding = "json"
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(cfg.Level),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// Sync flushes any buffered log entries. Errors from syncing a terminal
// stderr (ENOTTY) are expected and swallowed; anything else is reported.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !errors.Is(err, syscall.ENOTTY) {
		fmt.Fprintf(os.Stderr, "logging: sync: %v\n", err)
	}
}
