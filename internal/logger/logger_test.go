package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestGetReturnsStableLogger(t *testing.T) {
	first := Get()
	second := Get()
	if first != second {
		t.Error("Expected Get to return the same logger instance")
	}
	// The level helpers must be callable on the returned logger.
	first.Info().Msg("logger smoke test")
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		SetLevel(tt.level)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("SetLevel(%q): global level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestHelpersAcceptNilFields(t *testing.T) {
	Info("info message", nil)
	Warn("warn message", nil)
	Error("error message", nil, nil)
	Debug("debug message", map[string]interface{}{"key": "value"})
}
