package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgelight/crucible/internal/domain"
)

// PendingRepository implements the delayed-craft repository for PostgreSQL
type PendingRepository struct {
	db *pgxpool.Pool
}

// NewPendingRepository creates a new PendingRepository
func NewPendingRepository(db *pgxpool.Pool) *PendingRepository {
	return &PendingRepository{db: db}
}

// execer covers both the pool and a pgx transaction, so pending writes can
// run standalone or inside a crafting transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertPending(ctx context.Context, db execer, actorID string, pending domain.PendingCraft) error {
	requestID, err := uuid.Parse(pending.RequestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}
	items, err := json.Marshal(pending.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal pending items: %w", err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO pending_crafts (request_id, actor_id, ready_at, items)
		 VALUES ($1, $2, $3, $4)`,
		requestID, actorID, pending.ReadyAt, items,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pending craft: %w", err)
	}
	return nil
}

func deletePending(ctx context.Context, db execer, actorID, requestID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	tag, err := db.Exec(ctx,
		`DELETE FROM pending_crafts WHERE request_id = $1 AND actor_id = $2`,
		id, actorID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete pending craft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending craft not found: %s", requestID)
	}
	return nil
}

// ListPending returns the actor's pending crafts ordered by ready time.
func (r *PendingRepository) ListPending(ctx context.Context, actorID string) ([]domain.PendingCraft, error) {
	rows, err := r.db.Query(ctx,
		`SELECT request_id, actor_id, ready_at, items
		 FROM pending_crafts
		 WHERE actor_id = $1
		 ORDER BY ready_at, created_at`,
		actorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending crafts: %w", err)
	}
	defer rows.Close()

	var pending []domain.PendingCraft
	for rows.Next() {
		var requestID uuid.UUID
		var entry domain.PendingCraft
		var items []byte
		if err := rows.Scan(&requestID, &entry.ActorID, &entry.ReadyAt, &items); err != nil {
			return nil, fmt.Errorf("failed to scan pending craft: %w", err)
		}
		entry.RequestID = requestID.String()
		if err := json.Unmarshal(items, &entry.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending items: %w", err)
		}
		pending = append(pending, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending crafts: %w", err)
	}
	return pending, nil
}

// ListActorsWithPending returns the ids of actors holding pending crafts.
func (r *PendingRepository) ListActorsWithPending(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT actor_id FROM pending_crafts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors with pending crafts: %w", err)
	}
	defer rows.Close()

	var actorIDs []string
	for rows.Next() {
		var actorID string
		if err := rows.Scan(&actorID); err != nil {
			return nil, fmt.Errorf("failed to scan actor id: %w", err)
		}
		actorIDs = append(actorIDs, actorID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actor ids: %w", err)
	}
	return actorIDs, nil
}

// AddPending stores a delayed craft.
func (r *PendingRepository) AddPending(ctx context.Context, actorID string, pending domain.PendingCraft) error {
	return insertPending(ctx, r.db, actorID, pending)
}

// RemovePending deletes a delayed craft.
func (r *PendingRepository) RemovePending(ctx context.Context, actorID, requestID string) error {
	return deletePending(ctx, r.db, actorID, requestID)
}
