package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/mathdrill/internal/config"
)

// cmdConfig shows or initializes the local configuration
func cmdConfig(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return cmdConfigInit()
		case "show":
		default:
			return fmt.Errorf("unknown config command: %s (valid: show, init)", args[0])
		}
	}

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("mathdrill Configuration")

	fmt.Println("\nDaemon:")
	fmt.Printf("  bind: %s:%d\n", cfg.Daemon.Bind, cfg.Daemon.Port)
	fmt.Printf("  log_level: %s\n", cfg.Daemon.LogLevel)

	fmt.Println("\nGeneration:")
	fmt.Printf("  max_attempts: %d\n", cfg.Generation.MaxAttempts)
	fmt.Printf("  slot_attempts: %d\n", cfg.Generation.SlotAttempts)
	fmt.Printf("  batch_size: %d\n", cfg.Generation.BatchSize)
	if cfg.Generation.CatalogDir != "" {
		fmt.Printf("  catalog_dir: %s\n", cfg.Generation.CatalogDir)
	}

	fmt.Println("\nLimits:")
	fmt.Printf("  max_batch_size: %d\n", cfg.Limits.MaxBatchSize)
	fmt.Printf("  max_concurrent: %d\n", cfg.Limits.MaxConcurrent)
	fmt.Printf("  rate_per_second: %d\n", cfg.Limits.RatePerSecond)

	fmt.Println("\nStorage:")
	fmt.Printf("  driver: %s\n", cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		fmt.Printf("  database_url: %s\n", redact(cfg.Storage.DatabaseURL))
	case config.StorageSQLite, config.StorageFile:
		fmt.Printf("  path: %s\n", cfg.Storage.Path)
	}

	fmt.Println("\nQueue:")
	fmt.Printf("  enabled: %t\n", cfg.Queue.Enabled)
	if cfg.Queue.Enabled {
		fmt.Printf("  url: %s\n", redact(cfg.Queue.URL))
		fmt.Printf("  workers: %d prefetch: %d\n", cfg.Queue.Workers, cfg.Queue.Prefetch)
	}

	dir, _ := config.DrillDir()
	fmt.Printf("\nConfig path: %s\n", filepath.Join(dir, "config.yaml"))
	return nil
}

func cmdConfigInit() error {
	dir, err := config.EnsureDrillDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Configuration already exists at %s ✓\n", path)
		return nil
	}
	if err := config.SaveLocalConfig(config.DefaultLocalConfig()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Wrote default configuration to %s ✓\n", path)
	return nil
}

// redact hides the password of a connection URL
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid url)"
	}
	return u.Redacted()
}
