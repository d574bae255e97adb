package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WorldRepository implements the world clock repository for PostgreSQL
type WorldRepository struct {
	db *pgxpool.Pool
}

// NewWorldRepository creates a new WorldRepository
func NewWorldRepository(db *pgxpool.Pool) *WorldRepository {
	return &WorldRepository{db: db}
}

// GetWorldTime returns the current world time in world-seconds.
func (r *WorldRepository) GetWorldTime(ctx context.Context) (int64, error) {
	var worldTime int64
	err := r.db.QueryRow(ctx, `SELECT world_time FROM world_clock WHERE id = 1`).Scan(&worldTime)
	if err != nil {
		return 0, fmt.Errorf("failed to query world time: %w", err)
	}
	return worldTime, nil
}

// SetWorldTime stores the world time.
func (r *WorldRepository) SetWorldTime(ctx context.Context, worldTime int64) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE world_clock SET world_time = $1 WHERE id = 1`, worldTime,
	); err != nil {
		return fmt.Errorf("failed to set world time: %w", err)
	}
	return nil
}
