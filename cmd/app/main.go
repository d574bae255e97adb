package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgelight/crucible/internal/bootstrap"
	"github.com/forgelight/crucible/internal/cauldron"
	"github.com/forgelight/crucible/internal/clock"
	"github.com/forgelight/crucible/internal/concurrency"
	"github.com/forgelight/crucible/internal/config"
	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/database"
	"github.com/forgelight/crucible/internal/hook"
	"github.com/forgelight/crucible/internal/itemdir"
	"github.com/forgelight/crucible/internal/notify"
	"github.com/forgelight/crucible/internal/registry"
	"github.com/forgelight/crucible/internal/resolver"
	"github.com/forgelight/crucible/internal/scheduler"
	"github.com/forgelight/crucible/internal/server"
	"github.com/forgelight/crucible/internal/validation"
	"github.com/forgelight/crucible/internal/worker"
)

const (
	dbMaxConns       = 10
	dbMaxIdleTime    = 5 * time.Minute
	dbMaxLifetime    = 30 * time.Minute
	workerCount      = 2
	workerQueueSize  = 16
	shutdownDeadline = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	// Logging (stdout + rotating session files)
	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	for _, warning := range warnings {
		slog.Warn(warning)
	}

	// Database: run migrations, then open the pool
	connString := cfg.GetDBConnString()
	if err := database.Migrate(connString); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewPool(connString, dbMaxConns, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := bootstrap.InitializeRepositories(dbPool, cfg.QuantityPath)

	// Item directory and resolver
	itemDirectory := itemdir.NewFileDirectory(cfg.ItemsFile)
	itemResolver := resolver.NewService(itemDirectory)

	// Schema validation for recipe imports
	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		slog.Error("Failed to load import schemas", "error", err)
		os.Exit(1)
	}

	// Services
	registryService := registry.NewService(repos.Books, itemResolver, schemas)
	clockService := clock.NewService(repos.World)
	locks := concurrency.NewLockManager()
	sink := notify.NewLogSink()

	craftingService := crafting.NewService(
		registryService,
		repos.Actors,
		repos.Pending,
		clockService,
		hook.NewRunner(),
		itemResolver,
		sink,
		locks,
		cfg.ConsumeMode,
		cfg.DefaultCraftSound,
	)

	cauldronService := cauldron.NewService(registryService, repos.Actors, itemResolver, sink, locks)

	// Delayed-craft sweep on the worker pool
	workerPool := worker.NewPool(workerCount, workerQueueSize)
	workerPool.Start()

	jobScheduler := scheduler.New(workerPool)
	jobScheduler.Schedule(cfg.SweepInterval, worker.NewSweepWorker(craftingService))

	// HTTP server
	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies,
		dbPool, registryService, craftingService, cauldronService, clockService)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:     srv,
		Scheduler:  jobScheduler,
		WorkerPool: workerPool,
	})
}
