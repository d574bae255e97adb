package repository

import (
	"context"

	"github.com/forgelight/crucible/internal/domain"
)

// Actors defines the interface for actor inventory persistence
type Actors interface {
	GetActor(ctx context.Context, actorID string) (*domain.Actor, error)
	UpdateActor(ctx context.Context, actor *domain.Actor) error
	// BeginTx starts a transaction covering consume and produce writes.
	BeginTx(ctx context.Context) (ActorTx, error)
}

// ActorTx defines the interface for transactional actor mutation. The
// consume and produce phases of one craft commit together or not at all.
type ActorTx interface {
	Tx
	GetActorForUpdate(ctx context.Context, actorID string) (*domain.Actor, error)
	UpdateActor(ctx context.Context, actor *domain.Actor) error
	AddPending(ctx context.Context, actorID string, pending domain.PendingCraft) error
	RemovePending(ctx context.Context, actorID, requestID string) error
}
