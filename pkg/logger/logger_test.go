package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	log := New("error")
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled for an error-level logger")
	}
	if !log.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled for an error-level logger")
	}
}
