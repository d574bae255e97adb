package worker

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/logger"
)

// SweepWorker delivers pending delayed crafts whose ready time has passed.
// It is scheduled at a fixed interval and is safe to run concurrently with
// live crafting because delivery takes the same per-actor locks.
type SweepWorker struct {
	crafting crafting.Service
}

// NewSweepWorker creates a sweep worker over the crafting service.
func NewSweepWorker(craftingService crafting.Service) *SweepWorker {
	return &SweepWorker{crafting: craftingService}
}

// Process runs one sweep.
func (w *SweepWorker) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgSweepStarting)

	delivered, err := w.crafting.ProcessDelayed(ctx)
	if err != nil {
		log.Error(LogMsgSweepFailed, "error", err)
		return fmt.Errorf("failed to process delayed crafts: %w", err)
	}

	if delivered > 0 {
		log.Info(LogMsgSweepCompleted, "delivered", delivered)
	}
	return nil
}
