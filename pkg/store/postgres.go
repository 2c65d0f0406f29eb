package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/df07/go-optics-tracer/pkg/ids"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

const schema = `
CREATE TABLE IF NOT EXISTS levels (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	level_group TEXT NOT NULL DEFAULT '',
	document    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPool connects to Postgres and verifies the connection
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres is a LevelStore backed by a levels table
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the levels table if it does not exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]scene.LevelInfo, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, description, level_group FROM levels ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	infos := []scene.LevelInfo{}
	for rows.Next() {
		var id, name, description, group string
		if err := rows.Scan(&id, &name, &description, &group); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		infos = append(infos, levelInfo(id, name, description, group))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return infos, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*scene.Level, error) {
	var document []byte
	err := p.pool.QueryRow(ctx, `SELECT document FROM levels WHERE id = $1`, id).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get level: %w", err)
	}

	var level scene.Level
	if err := json.Unmarshal(document, &level); err != nil {
		return nil, fmt.Errorf("decode level %s: %w", id, err)
	}
	return &level, nil
}

func (p *Postgres) Save(ctx context.Context, level *scene.Level) (*scene.Level, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}

	saved := *level
	if saved.ID == "" {
		saved.ID = ids.NewLevelID()
	}
	document, err := json.Marshal(&saved)
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO levels (id, name, description, level_group, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			level_group = EXCLUDED.level_group,
			document = EXCLUDED.document,
			updated_at = now()`,
		saved.ID, saved.Name, saved.Description, saved.Group, document)
	if err != nil {
		return nil, fmt.Errorf("save level: %w", err)
	}
	return &saved, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM levels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
