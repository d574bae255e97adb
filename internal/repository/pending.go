package repository

import (
	"context"

	"github.com/forgelight/crucible/internal/domain"
)

// Pending defines the interface for delayed-craft persistence
type Pending interface {
	ListPending(ctx context.Context, actorID string) ([]domain.PendingCraft, error)
	// ListActorsWithPending returns the ids of actors holding at least one
	// pending entry, for the sweep to iterate.
	ListActorsWithPending(ctx context.Context) ([]string, error)
	AddPending(ctx context.Context, actorID string, pending domain.PendingCraft) error
	RemovePending(ctx context.Context, actorID, requestID string) error
}
