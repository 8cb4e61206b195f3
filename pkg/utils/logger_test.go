package utils

import "testing"

func TestNewLogger(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		logger, err := NewLogger(true, "")
		if err != nil {
			t.Fatalf("NewLogger(true, \"\") error: %v", err)
		}
		if logger == nil {
			t.Fatal("nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production", func(t *testing.T) {
		logger, err := NewLogger(false, "")
		if err != nil {
			t.Fatalf("NewLogger(false, \"\") error: %v", err)
		}
		if logger == nil {
			t.Fatal("nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("explicit level", func(t *testing.T) {
		logger, err := NewLogger(false, "warn")
		if err != nil {
			t.Fatalf("NewLogger with level: %v", err)
		}
		if logger.Core().Enabled(0) { // 0 is InfoLevel
			t.Error("info should be disabled at warn level")
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, err := NewLogger(false, "shouting"); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}
