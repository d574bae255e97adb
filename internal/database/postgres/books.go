// Package postgres implements the repository interfaces over pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgelight/crucible/internal/domain"
)

// BooksRepository persists the recipe book collection as one versioned
// JSONB document.
type BooksRepository struct {
	db *pgxpool.Pool
}

// NewBooksRepository creates a new BooksRepository
func NewBooksRepository(db *pgxpool.Pool) *BooksRepository {
	return &BooksRepository{db: db}
}

// GetCollection returns all books and the collection version.
func (r *BooksRepository) GetCollection(ctx context.Context) ([]domain.RecipeBook, int64, error) {
	var data []byte
	var version int64
	err := r.db.QueryRow(ctx,
		`SELECT books, version FROM recipe_collection WHERE id = 1`,
	).Scan(&data, &version)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query recipe collection: %w", err)
	}

	var books []domain.RecipeBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal recipe collection: %w", err)
	}
	return books, version, nil
}

// SaveCollection writes the whole collection, guarded by the version read at
// load time. A stale version returns domain.ErrVersionConflict so the caller
// can reload and retry.
func (r *BooksRepository) SaveCollection(ctx context.Context, books []domain.RecipeBook, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(books)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recipe collection: %w", err)
	}

	var newVersion int64
	err = r.db.QueryRow(ctx,
		`UPDATE recipe_collection
		 SET books = $1, version = version + 1, updated_at = NOW()
		 WHERE id = 1 AND version = $2
		 RETURNING version`,
		data, expectedVersion,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrVersionConflict
		}
		return 0, fmt.Errorf("failed to save recipe collection: %w", err)
	}
	return newVersion, nil
}
