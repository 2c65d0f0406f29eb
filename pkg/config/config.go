package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// Config is the host configuration, read from the environment
type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	DatabaseURL    string  `envconfig:"DATABASE_URL"`
	LevelDir       string  `envconfig:"LEVEL_DIR" default:"levels"`
	MaxBounces     int     `envconfig:"MAX_BOUNCES" default:"100"`
	MinIntensity   float64 `envconfig:"MIN_INTENSITY" default:"0.05"`
	EscapeDistance float64 `envconfig:"ESCAPE_DISTANCE" default:"2000"`
	MaxSegments    int     `envconfig:"MAX_SEGMENTS" default:"100000"`
	TickRate       int     `envconfig:"TICK_RATE" default:"30"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:*,127.0.0.1:*"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the tracer or frame loop cannot run with
func (c *Config) Validate() error {
	if c.MaxBounces < 0 || c.MaxBounces > scene.MaxBounceLimit {
		return fmt.Errorf("MAX_BOUNCES must be in [0, %d], got %d", scene.MaxBounceLimit, c.MaxBounces)
	}
	if c.MinIntensity < scene.MinIntensityFloor || c.MinIntensity > 1 {
		return fmt.Errorf("MIN_INTENSITY must be in [%v, 1], got %v", scene.MinIntensityFloor, c.MinIntensity)
	}
	if c.MaxSegments <= 0 {
		return fmt.Errorf("MAX_SEGMENTS must be positive, got %d", c.MaxSegments)
	}
	if c.EscapeDistance <= 0 {
		return fmt.Errorf("ESCAPE_DISTANCE must be positive, got %v", c.EscapeDistance)
	}
	if c.TickRate <= 0 || c.TickRate > 240 {
		return fmt.Errorf("TICK_RATE must be in (0, 240], got %d", c.TickRate)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Tracer returns the tracing limits
func (c *Config) Tracer() renderer.Config {
	return renderer.Config{
		MaxBounces:     c.MaxBounces,
		MinIntensity:   c.MinIntensity,
		EscapeDistance: c.EscapeDistance,
		MaxSegments:    c.MaxSegments,
	}
}

// TickInterval returns the time between frames of a live session
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Origins returns the websocket origin patterns
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
