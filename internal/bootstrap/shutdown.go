package bootstrap

import (
	"context"
	"log/slog"

	"github.com/forgelight/crucible/internal/scheduler"
	"github.com/forgelight/crucible/internal/server"
	"github.com/forgelight/crucible/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server     *server.Server
	Scheduler  *scheduler.Scheduler
	WorkerPool *worker.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler (stop enqueueing sweep jobs)
// 3. Worker pool (drain queued jobs)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	// Shutdown server first (stop accepting new requests)
	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	// Stop the scheduler before the pool so nothing new is enqueued
	if components.Scheduler != nil {
		slog.Info(LogMsgStoppingScheduler)
		components.Scheduler.Stop()
	}

	if components.WorkerPool != nil {
		slog.Info(LogMsgStoppingWorkerPool)
		components.WorkerPool.Stop()
	}

	slog.Info(LogMsgServerStopped)
}
