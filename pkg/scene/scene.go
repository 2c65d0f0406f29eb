package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/geometry"
)

// Default play-area size used by renderers when a level does not set one
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Hit is the closest intersection of a ray with the scene
type Hit struct {
	geometry.Intersection
	Entity entity.Entity
}

// Scene contains all the entities of a level. It is mutated only between
// traces; a trace treats it as read-only.
type Scene struct {
	Name   string
	Width  float64
	Height float64

	entities []entity.Entity
	byID     map[string]entity.Entity
	lasers   []entity.Emitter  // Derived: entry points of traced paths
	targets  []entity.Detector // Derived: detectors scored by the HUD
}

// New creates an empty scene with the default play area
func New(name string) *Scene {
	return &Scene{
		Name:   name,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		byID:   make(map[string]entity.Entity),
	}
}

// Add adds an entity to the scene. Ids must be unique.
func (s *Scene) Add(e entity.Entity) error {
	if e == nil {
		return fmt.Errorf("add entity: nil entity")
	}
	if _, exists := s.byID[e.ID()]; exists {
		return fmt.Errorf("add entity: duplicate id %q", e.ID())
	}

	s.entities = append(s.entities, e)
	s.byID[e.ID()] = e
	if emitter, ok := e.(entity.Emitter); ok {
		s.lasers = append(s.lasers, emitter)
	}
	if detector, ok := e.(entity.Detector); ok {
		s.targets = append(s.targets, detector)
	}
	return nil
}

// AddDescriptor builds an entity from its level-file form and adds it
func (s *Scene) AddDescriptor(d entity.Descriptor) (entity.Entity, error) {
	e, err := entity.New(d)
	if err != nil {
		return nil, fmt.Errorf("build %s entity: %w", d.Type, err)
	}
	if err := s.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Remove deletes the entity with the given id, reporting whether it existed
func (s *Scene) Remove(id string) bool {
	if _, exists := s.byID[id]; !exists {
		return false
	}
	delete(s.byID, id)

	kept := s.entities[:0]
	for _, e := range s.entities {
		if e.ID() != id {
			kept = append(kept, e)
		}
	}
	// Clear the tail so removed entities can be collected
	for i := len(kept); i < len(s.entities); i++ {
		s.entities[i] = nil
	}
	s.entities = kept
	s.rebuildMembership()
	return true
}

// Clear discards every entity
func (s *Scene) Clear() {
	s.entities = nil
	s.byID = make(map[string]entity.Entity)
	s.lasers = nil
	s.targets = nil
}

func (s *Scene) rebuildMembership() {
	s.lasers = s.lasers[:0]
	s.targets = s.targets[:0]
	for _, e := range s.entities {
		if emitter, ok := e.(entity.Emitter); ok {
			s.lasers = append(s.lasers, emitter)
		}
		if detector, ok := e.(entity.Detector); ok {
			s.targets = append(s.targets, detector)
		}
	}
}

// Entities returns every entity in insertion order
func (s *Scene) Entities() []entity.Entity {
	return s.entities
}

// Lasers returns the scene's emitters
func (s *Scene) Lasers() []entity.Emitter {
	return s.lasers
}

// Targets returns the scene's detectors
func (s *Scene) Targets() []entity.Detector {
	return s.targets
}

// Lookup finds an entity by id
func (s *Scene) Lookup(id string) (entity.Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len returns the number of entities
func (s *Scene) Len() int {
	return len(s.entities)
}

// CastRay returns the closest hit along the ray, skipping ignore (may be nil).
// Every entity is tested, with its bounding box checked first. No spatial index
// is kept, which makes this the first thing to revisit for large scenes.
func (s *Scene) CastRay(ray core.Ray, ignore entity.Entity) (Hit, bool) {
	var closest Hit
	found := false
	closestSoFar := math.Inf(1)
	scale := ray.Direction.Length()
	if scale == 0 {
		return closest, false
	}

	for _, e := range s.entities {
		if ignore != nil && e == ignore {
			continue
		}
		if b, ok := e.(bounded); ok && !b.Bounds().Expand(geometry.Epsilon).Hit(ray, 0, closestSoFar/scale) {
			continue
		}
		hit, ok := e.Intersect(ray)
		if !ok || !hit.Valid() {
			continue
		}
		if hit.Distance <= geometry.Epsilon || hit.Distance >= closestSoFar {
			continue
		}
		closest = Hit{Intersection: hit, Entity: e}
		closestSoFar = hit.Distance
		found = true
	}

	return closest, found
}

// Update advances animated entities by dt seconds
func (s *Scene) Update(dt float64) {
	for _, e := range s.entities {
		if animated, ok := e.(entity.Animated); ok {
			animated.Update(dt)
		}
	}
}

// ResetHits clears every detector's hit state
func (s *Scene) ResetHits() {
	for _, target := range s.targets {
		target.ResetHit()
	}
}

// TargetsHit returns how many detectors are lit and how many there are
func (s *Scene) TargetsHit() (hit, total int) {
	for _, target := range s.targets {
		if target.IsHit() {
			hit++
		}
	}
	return hit, len(s.targets)
}

// Complete reports whether the scene has targets and all of them are lit
func (s *Scene) Complete() bool {
	hit, total := s.TargetsHit()
	return total > 0 && hit == total
}

type bounded interface {
	Bounds() core.AABB
}

type measurable interface {
	DistanceTo(p core.Vec2) float64
}

// EntityAt returns the entity nearest to p within radius, for pointer picking
func (s *Scene) EntityAt(p core.Vec2, radius float64) (entity.Entity, bool) {
	var best entity.Entity
	bestDistance := math.Inf(1)
	for _, e := range s.entities {
		m, ok := e.(measurable)
		if !ok {
			continue
		}
		if d := m.DistanceTo(p); d <= radius && d < bestDistance {
			best = e
			bestDistance = d
		}
	}
	return best, best != nil
}

// DanglingWormholes returns the ids of wormholes whose partner is not in the scene
func (s *Scene) DanglingWormholes() []string {
	var dangling []string
	for _, e := range s.entities {
		if w, ok := e.(*entity.Wormhole); ok {
			if _, found := s.byID[w.PartnerID]; !found {
				dangling = append(dangling, w.ID())
			}
		}
	}
	return dangling
}
