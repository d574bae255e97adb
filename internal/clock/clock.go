// Package clock tracks the virtual world time used for delayed-craft
// scheduling. Time only moves when the host advances it; wall-clock time
// is irrelevant here.
package clock

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/repository"
)

// Service exposes the world clock
type Service interface {
	// Now returns the current world time in seconds.
	Now(ctx context.Context) (int64, error)
	// Advance sets the world time. Going backwards is rejected.
	Advance(ctx context.Context, worldTime int64) error
}

type service struct {
	repo repository.World
}

// NewService creates a new clock service
func NewService(repo repository.World) Service {
	return &service{repo: repo}
}

func (s *service) Now(ctx context.Context) (int64, error) {
	return s.repo.GetWorldTime(ctx)
}

func (s *service) Advance(ctx context.Context, worldTime int64) error {
	current, err := s.repo.GetWorldTime(ctx)
	if err != nil {
		return fmt.Errorf("failed to read world time: %w", err)
	}
	if worldTime < current {
		return fmt.Errorf("%w: world time cannot move backwards (current %d, requested %d)",
			domain.ErrInvalidInput, current, worldTime)
	}
	return s.repo.SetWorldTime(ctx, worldTime)
}
