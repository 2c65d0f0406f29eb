package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "LEVEL_DIR", "MAX_BOUNCES", "MIN_INTENSITY", "ESCAPE_DISTANCE", "TICK_RATE", "LOG_LEVEL", "ALLOWED_ORIGINS", "MAX_SEGMENTS"} {
		// Setenv registers the restore; unset so envconfig applies defaults
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.LevelDir != "levels" || cfg.DatabaseURL != "" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}

	tracer := cfg.Tracer()
	if tracer.MaxBounces != 100 || tracer.MinIntensity != 0.05 || tracer.EscapeDistance != 2000 || tracer.MaxSegments != 100000 {
		t.Errorf("Unexpected tracer defaults: %+v", tracer)
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("Expected 30 fps tick, got %v", cfg.TickInterval())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.SlogLevel())
	}
	if origins := cfg.Origins(); len(origins) != 2 {
		t.Errorf("Expected 2 default origins, got %v", origins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_BOUNCES", "12")
	t.Setenv("MIN_INTENSITY", "0.2")
	t.Setenv("TICK_RATE", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.MaxBounces != 12 || cfg.MinIntensity != 0.2 {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unparseable", "MAX_BOUNCES", "lots"},
		{"negative bounces", "MAX_BOUNCES", "-1"},
		{"bounces above limit", "MAX_BOUNCES", "5000"},
		{"intensity above one", "MIN_INTENSITY", "1.5"},
		{"intensity below floor", "MIN_INTENSITY", "0.000001"},
		{"zero segment budget", "MAX_SEGMENTS", "0"},
		{"zero escape", "ESCAPE_DISTANCE", "0"},
		{"zero tick rate", "TICK_RATE", "0"},
		{"bad log level", "LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
