package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	for _, tc := range []struct {
		env, level string
		debug      bool
	}{
		{"local", "", true},
		{"prod", "", false},
		{"prod", "debug", true},
		{"local", "warn", false},
	} {
		log, err := New("bet-maker", tc.env, tc.level)
		if err != nil {
			t.Fatalf("New(%s,%s): %v", tc.env, tc.level, err)
		}
		if got := log.Core().Enabled(zap.DebugLevel); got != tc.debug {
			t.Errorf("env=%s level=%q debug enabled = %v, want %v", tc.env, tc.level, got, tc.debug)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("line-provider", "prod", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
