package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.WarnLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"loud", zapcore.WarnLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrema.log")
	logger, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
	logger.Named("finder").Debug("scan complete")
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Config{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestEncodingFormat(t *testing.T) {
	if encodingFormat(true) != "console" {
		t.Error("development logs should use the console encoder")
	}
	if encodingFormat(false) != "json" {
		t.Error("production logs should use the json encoder")
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger should not be enabled")
	}
}
