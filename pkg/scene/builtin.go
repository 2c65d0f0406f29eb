package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
)

type builtinLevel struct {
	description string
	build       func() *Level
}

var builtins = map[string]builtinLevel{
	"basic":       {"A single laser aimed at a single target", basicLevel},
	"mirror-maze": {"Three mirrors fold the beam around a wall", mirrorMazeLevel},
	"prism":       {"White light dispersed into its spectrum", prismLevel},
	"splitter":    {"One beam split across two targets", splitterLevel},
	"wormhole":    {"A linked pair of portals", wormholeLevel},
	"filters":     {"Color filters pass or block beams", filtersLevel},
}

// BuiltinNames returns the names of the built-in levels in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh copy of the named built-in level
func Builtin(name string) (*Level, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in level %q", name)
	}
	level := b.build()
	level.ID = name
	level.Description = b.description
	level.Group = BuiltinGroup
	return level, nil
}

// BuiltinInfos lists the built-in levels for discovery
func BuiltinInfos() []LevelInfo {
	infos := make([]LevelInfo, 0, len(builtins))
	for _, name := range BuiltinNames() {
		infos = append(infos, LevelInfo{
			ID:          name,
			Name:        titleCase(name),
			Description: builtins[name].description,
			Group:       BuiltinGroup,
			Type:        "builtin",
		})
	}
	return infos
}

func basicLevel() *Level {
	return &Level{
		Name: "Basic",
		Entities: []entity.Descriptor{
			{ID: "laser", Type: entity.KindLaser, X: 100, Y: 300},
			{ID: "target", Type: entity.KindTarget, X: 700, Y: 300, Radius: 20},
		},
	}
}

func mirrorMazeLevel() *Level {
	return &Level{
		Name: "Mirror Maze",
		Entities: []entity.Descriptor{
			{ID: "laser", Type: entity.KindLaser, X: 100, Y: 500},
			{ID: "mirror-1", Type: entity.KindMirror, X: 400, Y: 500, Angle: -45},
			{ID: "mirror-2", Type: entity.KindMirror, X: 400, Y: 100, Angle: -45},
			{ID: "mirror-3", Type: entity.KindMirror, X: 700, Y: 100, Angle: 45},
			{ID: "wall", Type: entity.KindWall, X: 550, Y: 300, Width: 20, Height: 300},
			{ID: "target", Type: entity.KindTarget, X: 700, Y: 400, Radius: 20},
		},
	}
}

// The prism points up so the horizontal beam meets its left face obliquely
// and each color leaves at a different angle.
func prismLevel() *Level {
	return &Level{
		Name: "Prism",
		Entities: []entity.Descriptor{
			{ID: "laser", Type: entity.KindLaser, X: 80, Y: 300},
			{ID: "prism", Type: entity.KindPrism, X: 350, Y: 300, Size: 120, Angle: -90, RefractiveIndex: 1.45},
			{ID: "target", Type: entity.KindTarget, X: 595, Y: 470, Radius: 40},
		},
	}
}

func splitterLevel() *Level {
	return &Level{
		Name: "Splitter",
		Entities: []entity.Descriptor{
			{ID: "laser", Type: entity.KindLaser, X: 100, Y: 300},
			{ID: "splitter", Type: entity.KindSplitter, X: 400, Y: 300, Angle: -45},
			{ID: "target-up", Type: entity.KindTarget, X: 400, Y: 80, Radius: 20},
			{ID: "target-right", Type: entity.KindTarget, X: 700, Y: 300, Radius: 20},
		},
	}
}

func wormholeLevel() *Level {
	return &Level{
		Name: "Wormhole",
		Entities: []entity.Descriptor{
			{ID: "laser", Type: entity.KindLaser, X: 100, Y: 150},
			{ID: "portal-a", Type: entity.KindWormhole, X: 400, Y: 150, Radius: 20, PartnerID: "portal-b"},
			{ID: "portal-b", Type: entity.KindWormhole, X: 200, Y: 450, Radius: 20, PartnerID: "portal-a"},
			{ID: "wall", Type: entity.KindWall, X: 400, Y: 300, Width: 600, Height: 20},
			{ID: "target", Type: entity.KindTarget, X: 700, Y: 450, Radius: 20},
		},
	}
}

func filtersLevel() *Level {
	return &Level{
		Name: "Filters",
		Entities: []entity.Descriptor{
			{ID: "laser-white", Type: entity.KindLaser, X: 100, Y: 200},
			{ID: "filter-red", Type: entity.KindFilter, X: 300, Y: 200, Color: core.ColorRed},
			{ID: "target-red", Type: entity.KindTarget, X: 700, Y: 200, Radius: 20},
			{ID: "laser-blue", Type: entity.KindLaser, X: 100, Y: 400, Color: core.ColorBlue},
			{ID: "filter-green", Type: entity.KindFilter, X: 400, Y: 400, Color: core.ColorGreen},
			{ID: "target-blocked", Type: entity.KindTarget, X: 700, Y: 400, Radius: 20},
		},
	}
}
