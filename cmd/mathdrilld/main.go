package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/daemon"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/metrics"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

const pidFileName = "mathdrilld.pid"

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	dir, err := config.EnsureDrillDir()
	if err != nil {
		return fmt.Errorf("ensure mathdrill dir: %w", err)
	}

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(dir, parseLogLevel(cfg.Daemon.LogLevel))
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	pidPath := filepath.Join(dir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.New()
	svc, err := drill.NewFromConfig(cfg, drill.WithLogger(slog.Default()), drill.WithMetrics(recorder))
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, cfg.Storage, dir, slog.Default())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	sc := daemon.ServerConfig{
		Config:  cfg,
		Version: Version,
		Drill:   svc,
		Store:   backend.Store,
		Metrics: recorder,
		Tracker: daemon.NewJobTracker(daemon.DefaultTrackedJobs),
	}
	if backend.Events != nil {
		sc.Events = backend.Events
	}

	if cfg.Queue.Enabled {
		conn, err := queue.NewConnection(cfg.Queue.URL)
		if err != nil {
			return fmt.Errorf("connect queue: %w", err)
		}
		defer conn.Close()

		results := queue.NewResultConsumer(conn, sc.Tracker.Complete)
		if err := results.Start(ctx); err != nil {
			return fmt.Errorf("start result consumer: %w", err)
		}
		defer results.Stop()
		sc.Jobs = queue.NewProducer(conn)
	}

	server, err := daemon.NewServer(sc)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
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

// setupLogging writes JSON logs to the log file and text logs to stderr
func setupLogging(dir string, level slog.Level) (*os.File, error) {
	logPath := filepath.Join(dir, "logs", "mathdrilld.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	slog.SetDefault(slog.New(&multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, opts),
			slog.NewTextHandler(os.Stderr, opts),
		},
	}))
	return logFile, nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
