package entity

import (
	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/geometry"
)

// Kind names an entity variant. The values double as level file type tags.
type Kind string

const (
	KindLaser    Kind = "laser"
	KindMirror   Kind = "mirror"
	KindWall     Kind = "wall"
	KindTarget   Kind = "target"
	KindLens     Kind = "lens"
	KindPrism    Kind = "prism"
	KindSplitter Kind = "splitter"
	KindFilter   Kind = "filter"
	KindWormhole Kind = "wormhole"
)

// Material constants shared by the entity kinds
const (
	AirIndex           = 1.0
	MirrorReflectivity = 0.95
	SplitRatio         = 0.5
	FilterTransmission = 0.9
	PrismDispersion    = 0.05

	// OffsetDistance moves outgoing ray origins off the surface they leave
	OffsetDistance = 0.01
	// ProbeDistance is how far behind a hit point refracting volumes look to
	// decide whether the ray is inside them
	ProbeDistance = 0.01
)

// Entity is an object in the scene that rays can hit
type Entity interface {
	ID() string
	Kind() Kind
	// Pose exposes the mutable position and rotation read at the start of each trace
	Pose() *Body
	// Intersect returns the closest hit along the ray farther than geometry.Epsilon
	Intersect(ray core.Ray) (geometry.Intersection, bool)
	// Respond maps one incoming ray to the rays leaving the surface
	Respond(in Incident) []Outgoing
}

// Incident describes a ray arriving at an entity
type Incident struct {
	Direction core.Vec2 // Unit direction of travel
	Color     core.Color
	Hit       geometry.Intersection
}

// Outgoing is a ray leaving an entity. Intensity is a multiplier applied to
// the incoming intensity, never an absolute value. An empty Color inherits
// the incoming color.
type Outgoing struct {
	Origin    core.Vec2
	Direction core.Vec2
	Intensity float64
	Color     core.Color

	// Teleport marks a directive to continue the ray from the partner entity
	Teleport  bool
	PartnerID string
}

// Emitter is an entity that starts traced paths
type Emitter interface {
	Entity
	Emission() core.Ray
	BeamIntensity() float64
	BeamColor() core.Color
	IsActive() bool
}

// Detector records rays that reach it during a frame
type Detector interface {
	Entity
	RecordHit(intensity float64, color core.Color)
	IsHit() bool
	ResetHit()
}

// Animated entities advance their own state once per frame
type Animated interface {
	Update(dt float64)
}

// Container reports whether a point lies inside the entity's volume
type Container interface {
	Contains(p core.Vec2) bool
}
