package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"ERROR": zapcore.ErrorLevel,
	}
	for level, want := range cases {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("new(%q): %v", level, err)
		}
		if !logger.Core().Enabled(want) {
			t.Fatalf("level %q: expected %s enabled", level, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Fatalf("level %q: expected %s disabled", level, want-1)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
