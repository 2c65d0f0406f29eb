package scene

import (
	"math"
	"testing"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
)

func newBasicScene(t *testing.T) (*Scene, *entity.Laser, *entity.Target) {
	t.Helper()
	s := New("test")
	laser := entity.NewLaser("laser", core.NewVec2(100, 300), 40, 20, 0)
	target := entity.NewTarget("target", core.NewVec2(700, 300), 20)
	if err := s.Add(laser); err != nil {
		t.Fatalf("Add(laser) failed: %v", err)
	}
	if err := s.Add(target); err != nil {
		t.Fatalf("Add(target) failed: %v", err)
	}
	return s, laser, target
}

func TestSceneAddDerivesMembership(t *testing.T) {
	s, laser, target := newBasicScene(t)
	_ = s.Add(entity.NewMirror("mirror", core.NewVec2(400, 100), 100, 6, 0))

	if s.Len() != 3 {
		t.Errorf("Expected 3 entities, got %d", s.Len())
	}
	if len(s.Lasers()) != 1 || s.Lasers()[0] != laser {
		t.Errorf("Expected lasers to contain only the laser, got %v", s.Lasers())
	}
	if len(s.Targets()) != 1 || s.Targets()[0] != target {
		t.Errorf("Expected targets to contain only the target, got %v", s.Targets())
	}
	if s.Width != DefaultWidth || s.Height != DefaultHeight {
		t.Errorf("Expected default play area, got %vx%v", s.Width, s.Height)
	}
}

func TestSceneAddRejectsDuplicateID(t *testing.T) {
	s, _, _ := newBasicScene(t)
	err := s.Add(entity.NewWall("laser", core.NewVec2(0, 0), 10, 10, 0))
	if err == nil {
		t.Fatal("Expected error for duplicate id")
	}
	if err := s.Add(nil); err == nil {
		t.Error("Expected error for nil entity")
	}
}

func TestSceneRemove(t *testing.T) {
	s, _, _ := newBasicScene(t)

	if !s.Remove("target") {
		t.Fatal("Expected Remove to report the target existed")
	}
	if s.Remove("target") {
		t.Error("Expected second Remove to report false")
	}
	if _, ok := s.Lookup("target"); ok {
		t.Error("Expected target to be gone from lookup")
	}
	if len(s.Targets()) != 0 {
		t.Errorf("Expected no targets after removal, got %d", len(s.Targets()))
	}
	if len(s.Lasers()) != 1 {
		t.Errorf("Expected laser membership to survive, got %d", len(s.Lasers()))
	}

	s.Clear()
	if s.Len() != 0 || len(s.Lasers()) != 0 {
		t.Error("Expected Clear to drop everything")
	}
	if err := s.Add(entity.NewTarget("target", core.NewVec2(0, 0), 5)); err != nil {
		t.Errorf("Expected id to be reusable after Clear, got %v", err)
	}
}

func TestSceneCastRay(t *testing.T) {
	s, laser, target := newBasicScene(t)
	ray := core.NewRay(core.NewVec2(0, 300), core.NewVec2(1, 0))

	tests := []struct {
		name     string
		ray      core.Ray
		ignore   entity.Entity
		want     entity.Entity
		distance float64
	}{
		{"closest wins", ray, nil, laser, 80},
		{"ignored entity skipped", ray, laser, target, 680},
		{"from inside housing", core.NewRay(core.NewVec2(100, 300), core.NewVec2(1, 0)), laser, target, 580},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := s.CastRay(tt.ray, tt.ignore)
			if !ok {
				t.Fatal("Expected a hit")
			}
			if hit.Entity != tt.want {
				t.Errorf("Expected hit on %s, got %s", tt.want.ID(), hit.Entity.ID())
			}
			if math.Abs(hit.Distance-tt.distance) > 1e-6 {
				t.Errorf("Expected distance %v, got %v", tt.distance, hit.Distance)
			}
		})
	}

	if _, ok := s.CastRay(core.NewRay(core.NewVec2(0, 0), core.NewVec2(-1, 0)), nil); ok {
		t.Error("Expected miss when pointing away")
	}
	if _, ok := New("empty").CastRay(ray, nil); ok {
		t.Error("Expected miss in empty scene")
	}
}

func TestSceneUpdateAndHits(t *testing.T) {
	s, _, target := newBasicScene(t)
	wormhole := entity.NewWormhole("w", core.NewVec2(400, 400), 20, "missing")
	_ = s.Add(wormhole)

	s.Update(0.5)
	if math.Abs(wormhole.Angle-math.Pi/2) > 1e-9 {
		t.Errorf("Expected wormhole angle π/2 after 0.5s, got %v", wormhole.Angle)
	}

	if s.Complete() {
		t.Error("Expected incomplete scene before any hit")
	}
	target.RecordHit(0.8, core.ColorWhite)
	if hit, total := s.TargetsHit(); hit != 1 || total != 1 {
		t.Errorf("Expected 1/1 targets hit, got %d/%d", hit, total)
	}
	if !s.Complete() {
		t.Error("Expected complete scene")
	}

	s.ResetHits()
	if target.IsHit() {
		t.Error("Expected ResetHits to clear target")
	}
	if New("empty").Complete() {
		t.Error("Expected scene without targets to never be complete")
	}
}

func TestSceneEntityAt(t *testing.T) {
	s, laser, target := newBasicScene(t)

	tests := []struct {
		name  string
		point core.Vec2
		want  entity.Entity
	}{
		{"inside target", core.NewVec2(700, 300), target},
		{"near target edge", core.NewVec2(725, 300), target},
		{"on laser", core.NewVec2(100, 300), laser},
		{"empty space", core.NewVec2(400, 50), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.EntityAt(tt.point, 10)
			if tt.want == nil {
				if ok {
					t.Errorf("Expected no entity, got %s", got.ID())
				}
				return
			}
			if !ok || got != tt.want {
				t.Errorf("Expected %s, got %v", tt.want.ID(), got)
			}
		})
	}
}

func TestSceneDanglingWormholes(t *testing.T) {
	s := New("portals")
	_ = s.Add(entity.NewWormhole("a", core.NewVec2(0, 0), 10, "b"))
	_ = s.Add(entity.NewWormhole("b", core.NewVec2(100, 0), 10, "a"))
	_ = s.Add(entity.NewWormhole("c", core.NewVec2(200, 0), 10, "nowhere"))

	dangling := s.DanglingWormholes()
	if len(dangling) != 1 || dangling[0] != "c" {
		t.Errorf("Expected [c], got %v", dangling)
	}
}
