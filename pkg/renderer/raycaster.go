package renderer

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// DefaultMaxSegments bounds the work of one TraceAll. Splitters double the
// ray count per hit, so depth and intensity alone do not bound it.
const DefaultMaxSegments = 100000

// Config contains tracing limits
type Config struct {
	MaxBounces     int     `json:"maxBounces"`     // Deepest bounce followed
	MinIntensity   float64 `json:"minIntensity"`   // Dimmer rays are dropped
	EscapeDistance float64 `json:"escapeDistance"` // Length drawn for rays that hit nothing
	MaxSegments    int     `json:"maxSegments"`    // Segment budget per TraceAll, 0 means DefaultMaxSegments
}

// DefaultConfig returns the standard tracing limits
func DefaultConfig() Config {
	return Config{
		MaxBounces:     100,
		MinIntensity:   0.05,
		EscapeDistance: 2000,
		MaxSegments:    DefaultMaxSegments,
	}
}

func (c Config) segmentBudget() int {
	if c.MaxSegments <= 0 {
		return DefaultMaxSegments
	}
	return c.MaxSegments
}

// WithSettings overlays the non-zero per-level settings onto the config
func (c Config) WithSettings(s scene.Settings) Config {
	if s.MaxBounces > 0 {
		c.MaxBounces = s.MaxBounces
	}
	if s.MinIntensity > 0 {
		c.MinIntensity = s.MinIntensity
	}
	if s.EscapeDistance > 0 {
		c.EscapeDistance = s.EscapeDistance
	}
	return c
}

// SegmentKind tags a segment for renderers
type SegmentKind string

const KindBeam SegmentKind = "beam"

// Segment is one straight piece of a traced light path
type Segment struct {
	P1        core.Vec2   `json:"p1"`
	P2        core.Vec2   `json:"p2"`
	Intensity float64     `json:"intensity"`
	Color     core.Color  `json:"color"`
	Kind      SegmentKind `json:"kind"`
	Depth     int         `json:"depth"`
}

// Length returns the segment's length
func (s Segment) Length() float64 {
	return s.P2.Subtract(s.P1).Length()
}

// pendingRay is a unit of work on the trace stack
type pendingRay struct {
	ray       core.Ray
	intensity float64
	color     core.Color
	depth     int
	ignore    entity.Entity
}

// Raycaster traces laser light through a scene
type Raycaster struct {
	scene  *scene.Scene
	config Config
	logger core.Logger
	stats  Stats
}

// NewRaycaster creates a raycaster. A nil logger discards messages.
func NewRaycaster(s *scene.Scene, config Config, logger core.Logger) *Raycaster {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Raycaster{scene: s, config: config, logger: logger}
}

// Scene returns the traced scene
func (rc *Raycaster) Scene() *scene.Scene { return rc.scene }

// SetScene swaps the traced scene
func (rc *Raycaster) SetScene(s *scene.Scene) { rc.scene = s }

// Config returns the tracing limits
func (rc *Raycaster) Config() Config { return rc.config }

// SetConfig updates the tracing limits
func (rc *Raycaster) SetConfig(config Config) { rc.config = config }

// Stats returns the statistics of the last TraceAll
func (rc *Raycaster) Stats() Stats { return rc.stats }

// TraceAll clears detector state and traces every active laser, returning
// the concatenated segments of all paths
func (rc *Raycaster) TraceAll() []Segment {
	rc.stats = Stats{}
	segments := []Segment{}
	if rc.scene == nil {
		return segments
	}

	rc.scene.ResetHits()
	for _, laser := range rc.scene.Lasers() {
		if !laser.IsActive() {
			continue
		}
		segments = append(segments, rc.Trace(laser.Emission(), laser.BeamIntensity(), laser.BeamColor(), laser)...)
	}
	return segments
}

// Trace follows a single ray and everything it spawns, depth first. ignore
// (may be nil) is skipped by the first cast only.
func (rc *Raycaster) Trace(ray core.Ray, intensity float64, color core.Color, ignore entity.Entity) []Segment {
	var segments []Segment
	if rc.scene == nil {
		return segments
	}
	budget := rc.config.segmentBudget()
	if rc.stats.Segments >= budget {
		rc.stats.BudgetTerminated++
		return segments
	}

	stack := []pendingRay{{ray: ray, intensity: intensity, color: color, ignore: ignore}}
	loggedDrop := false

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.depth > rc.config.MaxBounces {
			rc.stats.DepthTerminated++
			continue
		}
		if current.intensity < rc.config.MinIntensity {
			rc.stats.IntensityTerminated++
			continue
		}

		direction := current.ray.Direction.Normalize()
		if direction.LengthSquared() == 0 || !direction.IsFinite() || !current.ray.Origin.IsFinite() {
			continue
		}
		origin := current.ray.Origin
		cast := core.NewRay(origin, direction)

		hit, ok := rc.scene.CastRay(cast, current.ignore)
		if !ok {
			segments = append(segments, Segment{
				P1:        origin,
				P2:        cast.At(rc.config.EscapeDistance),
				Intensity: current.intensity,
				Color:     current.color,
				Kind:      KindBeam,
				Depth:     current.depth,
			})
			rc.stats.recordSegment(current.depth)
			rc.stats.Escapes++
			continue
		}

		segments = append(segments, Segment{
			P1:        origin,
			P2:        hit.Point,
			Intensity: current.intensity,
			Color:     current.color,
			Kind:      KindBeam,
			Depth:     current.depth,
		})
		rc.stats.recordSegment(current.depth)
		rc.stats.Hits++

		if detector, ok := hit.Entity.(entity.Detector); ok {
			detector.RecordHit(current.intensity, current.color)
		}

		outgoing := hit.Entity.Respond(entity.Incident{
			Direction: direction,
			Color:     current.color,
			Hit:       hit.Intersection,
		})

		// Pushed in reverse so the first response is traced first
		for i := len(outgoing) - 1; i >= 0; i-- {
			out := outgoing[i]

			next := pendingRay{
				intensity: current.intensity * clampMultiplier(out.Intensity),
				color:     current.color,
				depth:     current.depth + 1,
			}
			if out.Color != "" {
				next.color = out.Color
			}

			if out.Teleport {
				partner, found := rc.scene.Lookup(out.PartnerID)
				if !found {
					rc.stats.DroppedTeleports++
					if !loggedDrop {
						rc.logger.Printf("dropping ray: %s %q has no partner %q\n", hit.Entity.Kind(), hit.Entity.ID(), out.PartnerID)
						loggedDrop = true
					}
					continue
				}
				next.ray = core.NewRay(partner.Pose().Position, out.Direction)
				next.ignore = partner
			} else {
				next.ray = core.NewRay(out.Origin, out.Direction)
			}

			// Every pending ray can still emit one segment
			if rc.stats.Segments+len(stack) >= budget {
				rc.stats.BudgetTerminated++
				continue
			}
			stack = append(stack, next)
		}
	}

	return segments
}

// clampMultiplier keeps a response from brightening or inverting a ray
func clampMultiplier(m float64) float64 {
	if math.IsNaN(m) || m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}
