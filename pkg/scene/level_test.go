package scene

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-optics-tracer/pkg/entity"
)

const sampleLevel = `{
  "name": "Sample",
  "width": 1024,
  "height": 768,
  "settings": {"maxBounces": 10},
  "entities": [
    {"id": "laser", "type": "laser", "x": 100, "y": 300},
    {"id": "mirror", "type": "mirror", "x": 400, "y": 300, "angle": -45},
    {"id": "target", "type": "target", "x": 400, "y": 80, "radius": 20}
  ]
}`

func TestLoadLevel(t *testing.T) {
	level, err := LoadLevel(strings.NewReader(sampleLevel))
	if err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	if level.Name != "Sample" || len(level.Entities) != 3 {
		t.Errorf("Unexpected level: %+v", level)
	}
	if level.Settings.MaxBounces != 10 {
		t.Errorf("Expected maxBounces 10, got %d", level.Settings.MaxBounces)
	}

	s, err := level.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Width != 1024 || s.Height != 768 {
		t.Errorf("Expected 1024x768 play area, got %vx%v", s.Width, s.Height)
	}
	mirror, ok := s.Lookup("mirror")
	if !ok || mirror.Kind() != entity.KindMirror {
		t.Fatalf("Expected mirror entity, got %v", mirror)
	}
}

func TestLoadLevelErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"name": `},
		{"unknown field", `{"name": "x", "entities": [], "bogus": 1}`},
		{"negative size", `{"name": "x", "width": -1, "entities": []}`},
		{"negative settings", `{"name": "x", "entities": [], "settings": {"maxBounces": -3}}`},
		{"bounces above limit", `{"name": "x", "entities": [], "settings": {"maxBounces": 5000}}`},
		{"intensity below floor", `{"name": "x", "entities": [], "settings": {"minIntensity": 1e-9}}`},
		{"intensity above one", `{"name": "x", "entities": [], "settings": {"minIntensity": 2}}`},
		{"duplicate ids", `{"name": "x", "entities": [{"id": "a", "type": "wall"}, {"id": "a", "type": "wall"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLevel(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("Expected ErrInvalidLevel, got %v", err)
			}
		})
	}
}

func TestBuildRejectsBadEntity(t *testing.T) {
	level := &Level{
		Name:     "bad",
		Entities: []entity.Descriptor{{Type: "unicorn"}},
	}
	_, err := level.Build()
	if !errors.Is(err, entity.ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

func TestBuildKeepsDanglingWormhole(t *testing.T) {
	level := &Level{
		Name: "dangling",
		Entities: []entity.Descriptor{
			{ID: "w", Type: entity.KindWormhole, X: 10, Y: 10, PartnerID: "gone"},
		},
	}
	s, err := level.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := s.DanglingWormholes(); len(got) != 1 {
		t.Errorf("Expected one dangling wormhole, got %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	level, _ := LoadLevel(strings.NewReader(sampleLevel))
	s, _ := level.Build()

	mirror, _ := s.Lookup("mirror")
	mirror.Pose().Position.X = 450

	snap := Snapshot(s, "lvl-1")
	if snap.ID != "lvl-1" || len(snap.Entities) != 3 {
		t.Fatalf("Unexpected snapshot: %+v", snap)
	}
	rebuilt, err := snap.Build()
	if err != nil {
		t.Fatalf("Rebuilding snapshot failed: %v", err)
	}
	moved, _ := rebuilt.Lookup("mirror")
	if moved.Pose().Position.X != 450 {
		t.Errorf("Expected moved mirror at x=450, got %v", moved.Pose().Position.X)
	}
}

func TestLoadLevelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	if err := os.WriteFile(path, []byte(sampleLevel), 0o644); err != nil {
		t.Fatal(err)
	}

	level, err := LoadLevelFile(path)
	if err != nil {
		t.Fatalf("LoadLevelFile failed: %v", err)
	}
	if level.Name != "Sample" {
		t.Errorf("Expected name Sample, got %q", level.Name)
	}

	if _, err := LoadLevelFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
