package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantLevel zapcore.Level
	}{
		{
			name:      "Console format info level",
			config:    Config{Level: "info", Format: "console"},
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "JSON format debug level",
			config:    Config{Level: "debug", Format: "json"},
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:      "Invalid format defaults to console",
			config:    Config{Level: "error", Format: "invalid"},
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name:      "Invalid level defaults to warn",
			config:    Config{Level: "invalid", Format: "console"},
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "Empty config uses defaults",
			config:    Config{},
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "Case insensitive",
			config:    Config{Level: "INFO", Format: "JSON"},
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger")
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s should be disabled", tt.wantLevel-1)
			}
			Sync(logger)
		})
	}
}

func TestComponent(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := Component(zap.New(core), "backend")

	logger.Info("request sent", zap.String("path", "/upload"))

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "backend" {
		t.Errorf("component = %v, want %q", fields["component"], "backend")
	}
	if fields["path"] != "/upload" {
		t.Errorf("path = %v, want %q", fields["path"], "/upload")
	}
}

func TestComponent_NilLogger(t *testing.T) {
	logger := Component(nil, "audio")
	if logger == nil {
		t.Fatal("Component(nil) should return a usable logger")
	}
	logger.Info("ignored")
}
