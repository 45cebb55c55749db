package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New("debug", true)
	if err != nil {
		t.Fatalf("New(debug, true) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
	logger.Debug("development logger ready")
}

// TestNewProductionLogger ensures the production logger respects the level.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New("warn", false)
	if err != nil {
		t.Fatalf("New(warn, false) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
