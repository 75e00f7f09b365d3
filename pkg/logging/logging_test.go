package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/vsinha/replenish/pkg/config"
)

func TestNew_Levels(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         config.LogConfig
		expectLevel zapcore.Level
		expectError bool
	}{
		{"json debug", config.LogConfig{Level: "debug", Format: "json"}, zapcore.DebugLevel, false},
		{"console warn", config.LogConfig{Level: "warn", Format: "console"}, zapcore.WarnLevel, false},
		{"production default", config.LogConfig{Format: "json"}, zapcore.InfoLevel, false},
		{"invalid level", config.LogConfig{Level: "loud"}, zapcore.InfoLevel, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg)
			if tc.expectError {
				if err == nil {
					t.Fatal("Expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to build logger: %v", err)
			}
			if !logger.Core().Enabled(tc.expectLevel) {
				t.Errorf("Expected level %s to be enabled", tc.expectLevel)
			}
			if tc.expectLevel > zapcore.DebugLevel && logger.Core().Enabled(tc.expectLevel-1) {
				t.Errorf("Expected level below %s to be disabled", tc.expectLevel)
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("Expected a no-op logger for nil")
	}
}
