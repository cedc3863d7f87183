package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/najoast/hebbnet/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      config.LogLevel
		want    zapcore.Level
		wantErr bool
	}{
		{in: config.LogLevelDebug, want: zapcore.DebugLevel},
		{in: config.LogLevelInfo, want: zapcore.InfoLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: config.LogLevelFatal, want: zapcore.FatalLevel},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, config.ErrInvalidLogLevel) {
				t.Errorf("ParseLevel(%q): expected ErrInvalidLogLevel, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestNewJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hebbnet.log")
	logger, err := New(config.LogConfig{
		Level:  config.LogLevelInfo,
		Format: config.LogFormatJSON,
		Output: path,
		Fields: map[string]string{"service": "hebbnet"},
	})
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("network started", zap.Int("neurons", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), data)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["msg"] != "network started" || entry["service"] != "hebbnet" || entry["neurons"] != float64(3) {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hebbnet.log")
	logger, err := New(config.LogConfig{Level: config.LogLevelWarn, Format: config.LogFormatText, Output: path})
	if err != nil {
		t.Fatalf("Failed to build logger: %v", err)
	}

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug to be disabled at warn")
	}

	if err := logger.SetLevel(config.LogLevelDebug); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug to be enabled after SetLevel")
	}

	if err := logger.SetLevel("loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
	if logger.Level.Level() != zapcore.DebugLevel {
		t.Errorf("Expected level to stay debug, got %v", logger.Level.Level())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
