package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgelight/crucible/internal/database/postgres"
	"github.com/forgelight/crucible/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Books   repository.Books
	Actors  repository.Actors
	Pending repository.Pending
	World   repository.World
}

// InitializeRepositories creates all repository implementations. The
// quantity path tells the actor store where host item documents keep their
// stack quantity.
func InitializeRepositories(dbPool *pgxpool.Pool, quantityPath string) *Repositories {
	return &Repositories{
		Books:   postgres.NewBooksRepository(dbPool),
		Actors:  postgres.NewActorsRepository(dbPool, quantityPath),
		Pending: postgres.NewPendingRepository(dbPool),
		World:   postgres.NewWorldRepository(dbPool),
	}
}
