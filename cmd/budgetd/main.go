package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"housebudget/internal/cli"
	apphttp "housebudget/internal/http"
	"housebudget/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	result := cli.OpenBackend(context.Background(), logger, cfg)
	svc := cli.OpenLedger(context.Background(), logger, cfg, result)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
		RateLimitRPM: cfg.RateLimitRPM,
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting housebudget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"revision", svc.Snapshot().Revision,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
