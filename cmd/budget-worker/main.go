package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"housebudget/internal/amqp"
	"housebudget/internal/cli"
	"housebudget/internal/log"
	"housebudget/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting budget-worker", log.FieldOperation, log.OpStartup)

	result := cli.OpenBackend(context.Background(), logger, cfg)
	svc := cli.OpenLedger(context.Background(), logger, cfg, result)

	rollover := worker.NewRolloverWorker(svc, cfg.RolloverInterval, logger)
	mirror := worker.NewSyncWorker(svc, result.Reports, logger)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(context.Context) {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rollover.Run(gctx)
	})
	// The periodic pass covers startup and any lost message.
	g.Go(func() error {
		return worker.RunEvery(gctx, cfg.SyncInterval, func(ctx context.Context) {
			if err := mirror.SyncIfStale(ctx); err != nil {
				logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		})
	})
	if result.Events != nil {
		g.Go(func() error {
			return result.Events.Consume(gctx, amqp.Handlers{
				LedgerChanged: mirror.HandleLedgerChanged,
				AlertRaised:   mirror.HandleAlertRaised,
			})
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no broker configured")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
