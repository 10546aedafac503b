package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/storage"
)

// cmdWorker consumes worksheet jobs until interrupted. It is configured
// from the environment, like the other server-side processes.
func cmdWorker() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := catalog.NewRegistry(catalog.NewLoader())
	if err := reg.Load(); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	svc := drill.NewService(reg, drill.Config{
		MaxAttempts:   cfg.MaxAttempts,
		MaxBatchSize:  cfg.MaxBatchSize,
		MaxConcurrent: cfg.MaxConcurrent,
	}, drill.WithLogger(logger))

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	backend, err := storage.Open(ctx, cfg.Storage(), wd, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	conn, err := queue.NewConnection(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer := queue.NewConsumer(conn, queue.NewWorksheetHandler(svc, backend.Store), queue.ConsumerConfig{
		Workers:  cfg.Workers,
		Prefetch: cfg.Prefetch,
	})
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	logger.Info("worker running",
		"storage", backend.Driver,
		"workers", cfg.Workers)
	<-ctx.Done()

	consumer.Stop()
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
