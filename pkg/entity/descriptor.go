package entity

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/ids"
)

var (
	ErrUnknownKind     = errors.New("unknown entity type")
	ErrInvalidShape    = errors.New("invalid entity shape")
	ErrInvalidMaterial = errors.New("invalid entity material")
	ErrMissingPartner  = errors.New("wormhole has no partner")
)

// Descriptor is the level-file form of an entity. Angles are in degrees;
// zero-valued sizes fall back to per-kind defaults.
type Descriptor struct {
	ID              string     `json:"id,omitempty"`
	Type            Kind       `json:"type"`
	X               float64    `json:"x"`
	Y               float64    `json:"y"`
	Width           float64    `json:"width,omitempty"`
	Height          float64    `json:"height,omitempty"`
	Radius          float64    `json:"radius,omitempty"`
	Size            float64    `json:"size,omitempty"`
	Angle           float64    `json:"angle,omitempty"`
	RefractiveIndex float64    `json:"refractiveIndex,omitempty"`
	Color           core.Color `json:"color,omitempty"`
	PartnerID       string     `json:"partnerId,omitempty"`
	Intensity       float64    `json:"intensity,omitempty"`
	SpinRate        float64    `json:"spinRate,omitempty"`
	Disabled        bool       `json:"disabled,omitempty"`
}

// Default dimensions per kind
const (
	DefaultLaserWidth       = 40.0
	DefaultLaserHeight      = 20.0
	DefaultMirrorWidth      = 100.0
	DefaultMirrorHeight     = 6.0
	DefaultWallWidth        = 20.0
	DefaultWallHeight       = 100.0
	DefaultLensWidth        = 60.0
	DefaultLensHeight       = 120.0
	DefaultLensIndex        = 1.5
	DefaultPrismSize        = 80.0
	DefaultPrismIndex       = 1.45
	DefaultSplitterWidth    = 100.0
	DefaultSplitterHeight   = 4.0
	DefaultFilterWidth      = 10.0
	DefaultFilterHeight     = 80.0
	DefaultTargetRadius     = 20.0
	DefaultWormholeRadius   = 20.0
	DefaultWormholeSpinRate = 180.0
)

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkRect(kind Kind, width, height float64) error {
	if !finite(width, height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %s needs positive width and height, got %vx%v", ErrInvalidShape, kind, width, height)
	}
	return nil
}

func checkRadius(kind Kind, radius float64) error {
	if !finite(radius) || radius <= 0 {
		return fmt.Errorf("%w: %s needs a positive radius, got %v", ErrInvalidShape, kind, radius)
	}
	return nil
}

func checkIndex(kind Kind, index float64) error {
	if !finite(index) || index < 1 {
		return fmt.Errorf("%w: %s refractive index must be at least 1, got %v", ErrInvalidMaterial, kind, index)
	}
	return nil
}

// New builds an entity from its descriptor, generating an id when none is set
func New(d Descriptor) (Entity, error) {
	if !finite(d.X, d.Y, d.Angle) {
		return nil, fmt.Errorf("%w: non-finite position or angle", ErrInvalidShape)
	}

	id := d.ID
	if id == "" {
		id = ids.NewEntityID()
	}
	center := core.NewVec2(d.X, d.Y)
	angle := radians(d.Angle)

	switch d.Type {
	case KindLaser:
		width, height := orDefault(d.Width, DefaultLaserWidth), orDefault(d.Height, DefaultLaserHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		intensity := orDefault(d.Intensity, 1.0)
		if !finite(intensity) || intensity < 0 || intensity > 1 {
			return nil, fmt.Errorf("%w: laser intensity must be in (0, 1], got %v", ErrInvalidMaterial, intensity)
		}
		laser := NewLaser(id, center, width, height, angle)
		laser.Intensity = intensity
		if d.Color != "" {
			laser.Color = d.Color.Normalize()
		}
		laser.Active = !d.Disabled
		return laser, nil

	case KindMirror:
		width, height := orDefault(d.Width, DefaultMirrorWidth), orDefault(d.Height, DefaultMirrorHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		return NewMirror(id, center, width, height, angle), nil

	case KindWall:
		width, height := orDefault(d.Width, DefaultWallWidth), orDefault(d.Height, DefaultWallHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		return NewWall(id, center, width, height, angle), nil

	case KindLens:
		width, height := orDefault(d.Width, DefaultLensWidth), orDefault(d.Height, DefaultLensHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		index := orDefault(d.RefractiveIndex, DefaultLensIndex)
		if err := checkIndex(d.Type, index); err != nil {
			return nil, err
		}
		return NewLens(id, center, width, height, angle, index), nil

	case KindPrism:
		size := orDefault(d.Size, DefaultPrismSize)
		if !finite(size) || size <= 0 {
			return nil, fmt.Errorf("%w: prism needs a positive size, got %v", ErrInvalidShape, size)
		}
		index := orDefault(d.RefractiveIndex, DefaultPrismIndex)
		if err := checkIndex(d.Type, index-PrismDispersion); err != nil {
			return nil, err
		}
		return NewPrism(id, center, size, angle, index), nil

	case KindSplitter:
		width, height := orDefault(d.Width, DefaultSplitterWidth), orDefault(d.Height, DefaultSplitterHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		return NewSplitter(id, center, width, height, angle), nil

	case KindFilter:
		width, height := orDefault(d.Width, DefaultFilterWidth), orDefault(d.Height, DefaultFilterHeight)
		if err := checkRect(d.Type, width, height); err != nil {
			return nil, err
		}
		if d.Color == "" {
			return nil, fmt.Errorf("%w: filter needs a color", ErrInvalidMaterial)
		}
		return NewFilter(id, center, width, height, angle, d.Color), nil

	case KindTarget:
		radius := orDefault(d.Radius, DefaultTargetRadius)
		if err := checkRadius(d.Type, radius); err != nil {
			return nil, err
		}
		return NewTarget(id, center, radius), nil

	case KindWormhole:
		radius := orDefault(d.Radius, DefaultWormholeRadius)
		if err := checkRadius(d.Type, radius); err != nil {
			return nil, err
		}
		if d.PartnerID == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPartner, id)
		}
		if d.PartnerID == id {
			return nil, fmt.Errorf("%w: %s is linked to itself", ErrMissingPartner, id)
		}
		wormhole := NewWormhole(id, center, radius, d.PartnerID)
		wormhole.Angle = angle
		wormhole.SpinRate = radians(orDefault(d.SpinRate, DefaultWormholeSpinRate))
		return wormhole, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Type)
}

// Describe returns the descriptor for an entity's current state
func Describe(e Entity) Descriptor {
	pose := e.Pose()
	d := Descriptor{
		ID:    e.ID(),
		Type:  e.Kind(),
		X:     pose.Position.X,
		Y:     pose.Position.Y,
		Angle: degrees(pose.Angle),
	}

	switch obj := e.(type) {
	case *Laser:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
		d.Intensity = obj.Intensity
		d.Color = obj.Color
		d.Disabled = !obj.Active
	case *Mirror:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
	case *Wall:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
	case *Lens:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
		d.RefractiveIndex = obj.RefractiveIndex
	case *Prism:
		d.Size = obj.Side
		d.RefractiveIndex = obj.RefractiveIndex
	case *Splitter:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
	case *Filter:
		d.Width, d.Height = obj.HalfWidth*2, obj.HalfHeight*2
		d.Color = obj.PassColor
	case *Target:
		d.Radius = obj.Radius
	case *Wormhole:
		d.Radius = obj.Radius
		d.PartnerID = obj.PartnerID
		d.SpinRate = degrees(obj.SpinRate)
	}

	return d
}
