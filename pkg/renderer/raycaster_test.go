package renderer

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

const tolerance = 1e-6

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func mustAdd(t *testing.T, s *scene.Scene, entities ...entity.Entity) {
	t.Helper()
	for _, e := range entities {
		if err := s.Add(e); err != nil {
			t.Fatalf("Add(%s) failed: %v", e.ID(), err)
		}
	}
}

func builtinScene(t *testing.T, name string) *scene.Scene {
	t.Helper()
	level, err := scene.Builtin(name)
	if err != nil {
		t.Fatalf("Builtin(%q) failed: %v", name, err)
	}
	s, err := level.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func vecNear(a, b core.Vec2) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}

func direction(s Segment) core.Vec2 {
	return s.P2.Subtract(s.P1).Normalize()
}

func TestTraceAllLaserHitsTarget(t *testing.T) {
	s := builtinScene(t, "basic")
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if !vecNear(segments[0].P2, core.NewVec2(680, 300)) {
		t.Errorf("Expected segment to end at (680, 300), got %v", segments[0].P2)
	}
	if segments[0].P1.X <= 120 || segments[0].P1.X > 120.1 {
		t.Errorf("Expected segment to start just past the laser's front face, got %v", segments[0].P1)
	}
	if segments[0].Kind != KindBeam || segments[0].Depth != 0 || segments[0].Intensity != 1 {
		t.Errorf("Unexpected segment fields: %+v", segments[0])
	}

	target, _ := s.Lookup("target")
	if !target.(entity.Detector).IsHit() {
		t.Error("Expected target to be hit")
	}
	if hit, total := s.TargetsHit(); hit != 1 || total != 1 {
		t.Errorf("Expected 1/1 targets hit, got %d/%d", hit, total)
	}
}

func TestTraceAllMirrorTurnsBeam(t *testing.T) {
	s := scene.New("mirror")
	mustAdd(t, s,
		entity.NewLaser("laser", core.NewVec2(100, 300), 40, 20, 0),
		entity.NewMirror("mirror", core.NewVec2(400, 300), 100, 6, -math.Pi/4),
		entity.NewTarget("target", core.NewVec2(400, 80), 20),
	)
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if !vecNear(direction(segments[0]), core.NewVec2(1, 0)) {
		t.Errorf("Expected first segment along +X, got %v", direction(segments[0]))
	}
	if !vecNear(direction(segments[1]), core.NewVec2(0, -1)) {
		t.Errorf("Expected reflected segment along -Y, got %v", direction(segments[1]))
	}
	if math.Abs(segments[1].Intensity-entity.MirrorReflectivity) > tolerance {
		t.Errorf("Expected reflected intensity %v, got %v", entity.MirrorReflectivity, segments[1].Intensity)
	}
	if !s.Complete() {
		t.Error("Expected target above the mirror to be hit")
	}
}

func TestTraceMaxBouncesBetweenParallelMirrors(t *testing.T) {
	s := scene.New("parallel")
	mustAdd(t, s,
		entity.NewMirror("left", core.NewVec2(200, 300), 400, 6, math.Pi/2),
		entity.NewMirror("right", core.NewVec2(600, 300), 400, 6, math.Pi/2),
	)

	config := DefaultConfig()
	config.MaxBounces = 2
	rc := NewRaycaster(s, config, nil)

	segments := rc.Trace(core.NewRay(core.NewVec2(400, 300), core.NewVec2(1, 0)), 1, core.ColorWhite, nil)
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if segment.Depth != i {
			t.Errorf("Segment %d: expected depth %d, got %d", i, i, segment.Depth)
		}
		if i > 0 && segment.Intensity > segments[i-1].Intensity {
			t.Errorf("Segment %d: intensity increased from %v to %v", i, segments[i-1].Intensity, segment.Intensity)
		}
	}
	if rc.Stats().DepthTerminated != 1 {
		t.Errorf("Expected one ray cut by depth, got %d", rc.Stats().DepthTerminated)
	}
}

func TestTraceDefaultBouncesTerminateByIntensity(t *testing.T) {
	s := scene.New("parallel")
	mustAdd(t, s,
		entity.NewMirror("left", core.NewVec2(200, 300), 400, 6, math.Pi/2),
		entity.NewMirror("right", core.NewVec2(600, 300), 400, 6, math.Pi/2),
	)
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.Trace(core.NewRay(core.NewVec2(400, 300), core.NewVec2(1, 0)), 1, core.ColorWhite, nil)

	// 0.95^n drops below 0.05 after 59 reflections
	expected := int(math.Ceil(math.Log(0.05)/math.Log(entity.MirrorReflectivity)))
	if len(segments) != expected {
		t.Errorf("Expected %d segments, got %d", expected, len(segments))
	}
	for _, segment := range segments {
		if segment.Intensity < DefaultConfig().MinIntensity {
			t.Errorf("Segment below minimum intensity: %v", segment.Intensity)
		}
	}
	if rc.Stats().IntensityTerminated != 1 {
		t.Errorf("Expected one ray cut by intensity, got %d", rc.Stats().IntensityTerminated)
	}
}

func TestTraceEscapeSegment(t *testing.T) {
	s := scene.New("alone")
	mustAdd(t, s, entity.NewLaser("laser", core.NewVec2(100, 300), 40, 20, 0))
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 1 {
		t.Fatalf("Expected 1 escape segment, got %d", len(segments))
	}
	if math.Abs(segments[0].Length()-2000) > tolerance {
		t.Errorf("Expected escape length 2000, got %v", segments[0].Length())
	}
	if rc.Stats().Escapes != 1 || rc.Stats().Hits != 0 {
		t.Errorf("Unexpected stats: %+v", rc.Stats())
	}
}

func TestTraceWormholeContinuesFromPartner(t *testing.T) {
	s := builtinScene(t, "wormhole")
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if !vecNear(segments[0].P2, core.NewVec2(380, 150)) {
		t.Errorf("Expected first segment to end on portal-a, got %v", segments[0].P2)
	}
	if !vecNear(segments[1].P1, core.NewVec2(200, 450)) {
		t.Errorf("Expected continuation from portal-b's center, got %v", segments[1].P1)
	}
	if !vecNear(direction(segments[1]), core.NewVec2(1, 0)) {
		t.Errorf("Expected direction preserved, got %v", direction(segments[1]))
	}
	if !s.Complete() {
		t.Error("Expected target behind portal-b to be hit")
	}
}

func TestTraceMissingPartnerDropsRay(t *testing.T) {
	s := scene.New("dangling")
	mustAdd(t, s,
		entity.NewLaser("laser", core.NewVec2(100, 300), 40, 20, 0),
		entity.NewSplitter("split", core.NewVec2(300, 300), 100, 4, -math.Pi/4),
		entity.NewWormhole("up", core.NewVec2(300, 100), 20, "gone"),
		entity.NewWormhole("right", core.NewVec2(600, 300), 20, "gone"),
	)
	logger := &recordingLogger{}
	rc := NewRaycaster(s, DefaultConfig(), logger)

	segments := rc.TraceAll()
	// laser -> splitter, splitter -> up, splitter -> right
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	if rc.Stats().DroppedTeleports != 2 {
		t.Errorf("Expected 2 dropped teleports, got %d", rc.Stats().DroppedTeleports)
	}
	if len(logger.messages) != 1 {
		t.Errorf("Expected one log message per trace, got %v", logger.messages)
	}
}

func TestTraceSplitterFeedsTwoTargets(t *testing.T) {
	s := builtinScene(t, "splitter")
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	for _, segment := range segments[1:] {
		if math.Abs(segment.Intensity-entity.SplitRatio) > tolerance {
			t.Errorf("Expected split intensity %v, got %v", entity.SplitRatio, segment.Intensity)
		}
	}
	if hit, total := s.TargetsHit(); hit != 2 || total != 2 {
		t.Errorf("Expected both targets hit, got %d/%d", hit, total)
	}
}

func TestTraceLensAtNormalIncidence(t *testing.T) {
	s := scene.New("lens")
	mustAdd(t, s,
		entity.NewLaser("laser", core.NewVec2(100, 300), 40, 20, 0),
		entity.NewLens("lens", core.NewVec2(400, 300), 60, 120, 0, 1.5),
		entity.NewTarget("target", core.NewVec2(700, 300), 20),
	)
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	for i, segment := range segments {
		if !vecNear(direction(segment), core.NewVec2(1, 0)) {
			t.Errorf("Segment %d bent at normal incidence: %v", i, direction(segment))
		}
	}
	if !s.Complete() {
		t.Error("Expected target behind lens to be hit")
	}
}

func TestTracePrismDispersesWhiteLight(t *testing.T) {
	s := builtinScene(t, "prism")
	rc := NewRaycaster(s, DefaultConfig(), nil)

	segments := rc.TraceAll()
	inside := map[core.Color]bool{}
	for _, segment := range segments {
		if segment.Depth == 1 {
			inside[segment.Color] = true
		}
	}
	for _, color := range []core.Color{core.ColorRed, core.ColorGreen, core.ColorBlue} {
		if !inside[color] {
			t.Errorf("Expected a %s ray inside the prism, got %v", color, inside)
		}
	}
	if segments[0].Color != core.ColorWhite {
		t.Errorf("Expected white incoming beam, got %s", segments[0].Color)
	}
}

func TestTraceFilters(t *testing.T) {
	s := builtinScene(t, "filters")
	rc := NewRaycaster(s, DefaultConfig(), nil)
	rc.TraceAll()

	red, _ := s.Lookup("target-red")
	redTarget := red.(*entity.Target)
	if !redTarget.IsHit() || redTarget.HitColor() != core.ColorRed {
		t.Errorf("Expected red hit on target-red, got hit=%v color=%s", redTarget.IsHit(), redTarget.HitColor())
	}
	if math.Abs(redTarget.HitIntensity()-entity.FilterTransmission) > tolerance {
		t.Errorf("Expected intensity %v, got %v", entity.FilterTransmission, redTarget.HitIntensity())
	}

	blocked, _ := s.Lookup("target-blocked")
	if blocked.(entity.Detector).IsHit() {
		t.Error("Expected blue beam to be stopped by the green filter")
	}
}

func TestTraceIntensityNeverIncreases(t *testing.T) {
	for _, name := range scene.BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s := builtinScene(t, name)
			rc := NewRaycaster(s, DefaultConfig(), nil)
			for _, segment := range rc.TraceAll() {
				if segment.Intensity > 1 || segment.Intensity < DefaultConfig().MinIntensity {
					t.Errorf("Segment intensity out of range: %+v", segment)
				}
				if !segment.P1.IsFinite() || !segment.P2.IsFinite() {
					t.Errorf("Non-finite segment: %+v", segment)
				}
			}
		})
	}
}

func TestTraceAllEdgeCases(t *testing.T) {
	t.Run("empty scene", func(t *testing.T) {
		rc := NewRaycaster(scene.New("empty"), DefaultConfig(), nil)
		segments := rc.TraceAll()
		if segments == nil || len(segments) != 0 {
			t.Errorf("Expected empty, non-nil list, got %v", segments)
		}
	})

	t.Run("inactive laser", func(t *testing.T) {
		s := builtinScene(t, "basic")
		laser, _ := s.Lookup("laser")
		laser.(*entity.Laser).Active = false
		rc := NewRaycaster(s, DefaultConfig(), nil)
		if segments := rc.TraceAll(); len(segments) != 0 {
			t.Errorf("Expected no segments from inactive laser, got %d", len(segments))
		}
	})

	t.Run("dim laser", func(t *testing.T) {
		s := builtinScene(t, "basic")
		laser, _ := s.Lookup("laser")
		laser.(*entity.Laser).Intensity = 0.01
		rc := NewRaycaster(s, DefaultConfig(), nil)
		if segments := rc.TraceAll(); len(segments) != 0 {
			t.Errorf("Expected no segments below minimum intensity, got %d", len(segments))
		}
		if rc.Stats().IntensityTerminated != 1 {
			t.Errorf("Expected intensity termination, got %+v", rc.Stats())
		}
	})

	t.Run("hits reset between frames", func(t *testing.T) {
		s := builtinScene(t, "basic")
		rc := NewRaycaster(s, DefaultConfig(), nil)
		rc.TraceAll()

		target, _ := s.Lookup("target")
		target.Pose().Position.Y = 500
		rc.TraceAll()
		if target.(entity.Detector).IsHit() {
			t.Error("Expected hit to be cleared after the target moved out of the beam")
		}
	})

	t.Run("zero direction", func(t *testing.T) {
		rc := NewRaycaster(builtinScene(t, "basic"), DefaultConfig(), nil)
		if segments := rc.Trace(core.NewRay(core.NewVec2(0, 0), core.Vec2{}), 1, core.ColorWhite, nil); len(segments) != 0 {
			t.Errorf("Expected zero-direction ray to be dropped, got %d", len(segments))
		}
	})
}

func TestClampMultiplier(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{1.5, 1},
		{-0.2, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampMultiplier(tt.in); got != tt.want {
			t.Errorf("clampMultiplier(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigWithSettings(t *testing.T) {
	config := DefaultConfig().WithSettings(scene.Settings{MaxBounces: 7})
	if config.MaxBounces != 7 {
		t.Errorf("Expected MaxBounces 7, got %d", config.MaxBounces)
	}
	if config.MinIntensity != 0.05 || config.EscapeDistance != 2000 {
		t.Errorf("Expected unset settings to keep defaults, got %+v", config)
	}
}

// splitterBetweenMirrors doubles the ray count on every pass through the splitter
func splitterBetweenMirrors(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New("branching")
	mustAdd(t, s,
		entity.NewMirror("left", core.NewVec2(200, 300), 400, 6, math.Pi/2),
		entity.NewSplitter("splitter", core.NewVec2(400, 300), 100, 4, math.Pi/2),
		entity.NewMirror("right", core.NewVec2(600, 300), 400, 6, math.Pi/2),
	)
	return s
}

func traceWithTimeout(t *testing.T, rc *Raycaster, ray core.Ray) []Segment {
	t.Helper()
	done := make(chan []Segment, 1)
	go func() {
		done <- rc.Trace(ray, 1, core.ColorWhite, nil)
	}()
	select {
	case segments := <-done:
		return segments
	case <-time.After(5 * time.Second):
		t.Fatalf("Trace did not finish (config %+v)", rc.Config())
		return nil
	}
}

func TestTraceSplitterBranchingStopsAtSegmentBudget(t *testing.T) {
	config := DefaultConfig()
	config.MinIntensity = 1e-9
	config.MaxSegments = 2000
	rc := NewRaycaster(splitterBetweenMirrors(t), config, nil)

	segments := traceWithTimeout(t, rc, core.NewRay(core.NewVec2(300, 300), core.NewVec2(1, 0)))

	stats := rc.Stats()
	if len(segments) > config.MaxSegments {
		t.Errorf("Expected at most %d segments, got %d", config.MaxSegments, len(segments))
	}
	if stats.Segments != len(segments) {
		t.Errorf("Expected stats to count %d segments, got %d", len(segments), stats.Segments)
	}
	if stats.BudgetTerminated == 0 {
		t.Errorf("Expected rays cut by the segment budget, got %+v", stats)
	}
}

func TestTraceSplitterBranchingEndsByIntensityAtFloor(t *testing.T) {
	config := DefaultConfig().WithSettings(scene.Settings{MinIntensity: scene.MinIntensityFloor})
	rc := NewRaycaster(splitterBetweenMirrors(t), config, nil)

	segments := traceWithTimeout(t, rc, core.NewRay(core.NewVec2(300, 300), core.NewVec2(1, 0)))

	stats := rc.Stats()
	if stats.BudgetTerminated != 0 {
		t.Errorf("Expected no budget cut-offs at the intensity floor, got %d", stats.BudgetTerminated)
	}
	if stats.IntensityTerminated == 0 {
		t.Errorf("Expected rays cut by intensity, got %+v", stats)
	}
	for i, segment := range segments {
		if segment.Intensity < scene.MinIntensityFloor {
			t.Errorf("Segment %d: intensity %v below the floor", i, segment.Intensity)
		}
	}
}

func TestTraceAllSharesSegmentBudget(t *testing.T) {
	s := builtinScene(t, "filters")
	config := DefaultConfig()
	config.MaxSegments = 1
	rc := NewRaycaster(s, config, nil)

	segments := rc.TraceAll()
	if len(segments) != 1 {
		t.Fatalf("Expected the budget to allow 1 segment across both lasers, got %d", len(segments))
	}
	if rc.Stats().BudgetTerminated == 0 {
		t.Error("Expected the second laser to be cut by the budget")
	}
}

func TestConfigSegmentBudgetDefault(t *testing.T) {
	if got := (Config{}).segmentBudget(); got != DefaultMaxSegments {
		t.Errorf("Expected zero MaxSegments to mean %d, got %d", DefaultMaxSegments, got)
	}
	if got := (Config{MaxSegments: 10}).segmentBudget(); got != 10 {
		t.Errorf("Expected 10, got %d", got)
	}
}
