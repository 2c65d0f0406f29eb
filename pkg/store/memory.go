package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/df07/go-optics-tracer/pkg/ids"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// Memory is a LevelStore held in process memory. Levels are kept as JSON so
// callers never share mutable state with the store.
type Memory struct {
	mu     sync.RWMutex
	levels map[string][]byte
	infos  map[string]scene.LevelInfo
}

// NewMemory creates an in-memory store seeded with the given levels
func NewMemory(seed ...*scene.Level) (*Memory, error) {
	m := &Memory{
		levels: make(map[string][]byte),
		infos:  make(map[string]scene.LevelInfo),
	}
	for _, level := range seed {
		if _, err := m.Save(context.Background(), level); err != nil {
			return nil, fmt.Errorf("seed level %q: %w", level.Name, err)
		}
	}
	return m, nil
}

func (m *Memory) List(ctx context.Context) ([]scene.LevelInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]scene.LevelInfo, 0, len(m.infos))
	for _, info := range m.infos {
		infos = append(infos, info)
	}
	sortInfos(infos)
	return infos, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*scene.Level, error) {
	m.mu.RLock()
	data, ok := m.levels[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var level scene.Level
	if err := json.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("decode level %s: %w", id, err)
	}
	return &level, nil
}

func (m *Memory) Save(ctx context.Context, level *scene.Level) (*scene.Level, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}

	saved := *level
	if saved.ID == "" {
		saved.ID = ids.NewLevelID()
	}
	data, err := json.Marshal(&saved)
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}

	m.mu.Lock()
	m.levels[saved.ID] = data
	m.infos[saved.ID] = levelInfo(saved.ID, saved.Name, saved.Description, saved.Group)
	m.mu.Unlock()

	return &saved, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.levels[id]; !ok {
		return ErrNotFound
	}
	delete(m.levels, id)
	delete(m.infos, id)
	return nil
}

func (m *Memory) Close() {}
