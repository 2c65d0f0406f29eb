package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-optics-tracer/pkg/entity"
)

var ErrInvalidLevel = errors.New("invalid level")

// Limits on the tracer settings a level may carry
const (
	MaxBounceLimit    = 1000
	MinIntensityFloor = 0.01
)

// Settings are per-level overrides for the tracer. Zero values mean "use the
// host's configuration".
type Settings struct {
	MaxBounces     int     `json:"maxBounces,omitempty"`
	MinIntensity   float64 `json:"minIntensity,omitempty"`
	EscapeDistance float64 `json:"escapeDistance,omitempty"`
}

// Level is the serialized form of a scene
type Level struct {
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Group       string              `json:"group,omitempty"`
	Width       float64             `json:"width,omitempty"`
	Height      float64             `json:"height,omitempty"`
	Entities    []entity.Descriptor `json:"entities"`
	Settings    Settings            `json:"settings"`
}

// LoadLevel decodes a level from JSON
func LoadLevel(r io.Reader) (*Level, error) {
	var level Level
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// LoadLevelFile reads a level from a JSON file
func LoadLevelFile(path string) (*Level, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open level file: %w", err)
	}
	defer file.Close()

	level, err := LoadLevel(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return level, nil
}

// Validate checks the level-wide fields. Entity fields are checked by Build.
func (l *Level) Validate() error {
	if l.Width < 0 || l.Height < 0 {
		return fmt.Errorf("%w: negative play area %vx%v", ErrInvalidLevel, l.Width, l.Height)
	}
	if l.Settings.MaxBounces < 0 || l.Settings.MinIntensity < 0 || l.Settings.EscapeDistance < 0 {
		return fmt.Errorf("%w: settings must not be negative", ErrInvalidLevel)
	}
	if l.Settings.MaxBounces > MaxBounceLimit {
		return fmt.Errorf("%w: maxBounces %d above %d", ErrInvalidLevel, l.Settings.MaxBounces, MaxBounceLimit)
	}
	// Zero keeps the host's value
	if l.Settings.MinIntensity != 0 && (l.Settings.MinIntensity < MinIntensityFloor || l.Settings.MinIntensity > 1) {
		return fmt.Errorf("%w: minIntensity %v outside [%v, 1]", ErrInvalidLevel, l.Settings.MinIntensity, MinIntensityFloor)
	}
	seen := make(map[string]bool, len(l.Entities))
	for _, d := range l.Entities {
		if d.ID == "" {
			continue
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate entity id %q", ErrInvalidLevel, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// Build creates a fresh scene from the level. Wormholes whose partner is
// missing are kept; the tracer drops rays that enter them.
func (l *Level) Build() (*Scene, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	s := New(l.Name)
	if l.Width > 0 {
		s.Width = l.Width
	}
	if l.Height > 0 {
		s.Height = l.Height
	}

	for i, d := range l.Entities {
		if _, err := s.AddDescriptor(d); err != nil {
			return nil, fmt.Errorf("level %q entity %d: %w", l.Name, i, err)
		}
	}
	return s, nil
}

// Snapshot captures the scene's current entity poses as a level
func Snapshot(s *Scene, id string) *Level {
	level := &Level{
		ID:       id,
		Name:     s.Name,
		Width:    s.Width,
		Height:   s.Height,
		Entities: make([]entity.Descriptor, 0, s.Len()),
	}
	for _, e := range s.Entities() {
		level.Entities = append(level.Entities, entity.Describe(e))
	}
	return level
}
