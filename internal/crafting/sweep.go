package crafting

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgelight/crucible/internal/concurrency"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/metrics"
	"github.com/forgelight/crucible/internal/notify"
	"github.com/forgelight/crucible/internal/repository"
)

// ProcessDelayed sweeps all actors with pending crafts and delivers every
// entry whose ready time has passed. Each actor gets one aggregated
// notification and one completion cue per sweep, regardless of how many
// entries landed.
func (s *service) ProcessDelayed(ctx context.Context) (int, error) {
	now, err := s.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read world time: %w", err)
	}

	actorIDs, err := s.pending.ListActorsWithPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list actors with pending crafts: %w", err)
	}

	total := 0
	for _, actorID := range actorIDs {
		delivered, err := s.sweepActor(ctx, actorID, now)
		if err != nil {
			// One broken actor must not starve the rest of the sweep.
			logger.FromContext(ctx).Error("Failed to sweep actor",
				"actor_id", actorID, "error", err)
			continue
		}
		total += delivered
	}

	if total > 0 {
		logger.FromContext(ctx).Info("Delayed crafts delivered", "count", total)
		metrics.RecordDelayedDeliveries(total)
	}
	return total, nil
}

func (s *service) sweepActor(ctx context.Context, actorID string, now int64) (int, error) {
	var delivered []domain.PendingItem
	count := 0

	err := s.locks.WithLock(concurrency.ActorKey(actorID), func() error {
		entries, err := s.pending.ListPending(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to list pending crafts: %w", err)
		}

		ready := make([]domain.PendingCraft, 0, len(entries))
		for _, entry := range entries {
			if entry.Ready(now) {
				ready = append(ready, entry)
			}
		}
		if len(ready) == 0 {
			return nil
		}

		tx, err := s.actors.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer repository.SafeRollback(ctx, tx)

		actor, err := tx.GetActorForUpdate(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to get actor: %w", err)
		}
		if actor == nil {
			return fmt.Errorf("%w: %s", domain.ErrActorNotFound, actorID)
		}

		for _, entry := range ready {
			Produce(actor, entry.Items)
			delivered = append(delivered, entry.Items...)
			if err := tx.RemovePending(ctx, actorID, entry.RequestID); err != nil {
				return fmt.Errorf("failed to remove pending craft: %w", err)
			}
		}

		if err := tx.UpdateActor(ctx, actor); err != nil {
			return fmt.Errorf("failed to update actor: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		count = len(ready)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.notifyDelivery(ctx, actorID, delivered)
	}
	return count, nil
}

func (s *service) notifyDelivery(ctx context.Context, actorID string, items []domain.PendingItem) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, fmt.Sprintf("%s x%g", item.Name, item.Quantity))
	}

	msg := notify.Message{
		Content: fmt.Sprintf("Crafting finished: %s", strings.Join(names, ", ")),
		Sound:   s.defaultSound,
	}
	if err := s.sink.Post(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to post delivery notification",
			"actor_id", actorID, "error", err)
	}
}
