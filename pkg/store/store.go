package store

import (
	"context"
	"errors"
	"sort"

	"github.com/df07/go-optics-tracer/pkg/scene"
)

var ErrNotFound = errors.New("level not found")

// StoredGroup is the listing group for levels without one of their own
const StoredGroup = "Saved Levels"

// LevelStore persists user-edited levels
type LevelStore interface {
	List(ctx context.Context) ([]scene.LevelInfo, error)
	Get(ctx context.Context, id string) (*scene.Level, error)
	// Save inserts or replaces a level, assigning an id when it has none
	Save(ctx context.Context, level *scene.Level) (*scene.Level, error)
	Delete(ctx context.Context, id string) error
	Close()
}

func levelInfo(id, name, description, group string) scene.LevelInfo {
	if group == "" {
		group = StoredGroup
	}
	return scene.LevelInfo{
		ID:          id,
		Name:        name,
		Description: description,
		Group:       group,
		Type:        "stored",
	}
}

func sortInfos(infos []scene.LevelInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].ID < infos[j].ID
	})
}
