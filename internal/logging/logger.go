package logging

import (
	"strings"

	"go.uber.org/zap"
)

// Config holds logging configuration
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "console"
}

// New builds a logger writing to stderr. Unknown formats fall back to console
// output and unknown levels to warn, so a bad setting never blocks a command.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	switch strings.ToLower(cfg.Format) {
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.DisableStacktrace = true
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zapConfig.Level = level
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build()
}

// Component returns a child logger tagged with the component name.
func Component(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String("component", name))
}

// Sync flushes buffered entries. Syncing stderr fails on some platforms,
// which is not worth reporting.
func Sync(logger *zap.Logger) {
	if logger != nil {
		_ = logger.Sync()
	}
}
