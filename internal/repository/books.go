package repository

import (
	"context"

	"github.com/forgelight/crucible/internal/domain"
)

// Books defines the interface for recipe-book persistence. The full book
// collection is one persisted unit; SaveCollection enforces optimistic
// concurrency against the version returned by GetCollection.
type Books interface {
	// GetCollection returns all books and the collection version.
	GetCollection(ctx context.Context) ([]domain.RecipeBook, int64, error)
	// SaveCollection writes the whole collection. Returns the new version,
	// or domain.ErrVersionConflict when expectedVersion is stale.
	SaveCollection(ctx context.Context, books []domain.RecipeBook, expectedVersion int64) (int64, error)
}
