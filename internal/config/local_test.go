package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDrillDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := DrillDir()
	if err != nil {
		t.Fatalf("DrillDir() error = %v", err)
	}
	if filepath.Base(dir) != ".mathdrill" {
		t.Errorf("DrillDir() = %q, want ending with .mathdrill", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("DrillDir() = %q, want absolute path", dir)
	}
}

func TestEnsureDrillDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := EnsureDrillDir()
	if err != nil {
		t.Fatalf("EnsureDrillDir() error = %v", err)
	}
	if want := filepath.Join(home, ".mathdrill"); dir != want {
		t.Errorf("EnsureDrillDir() = %q, want %q", dir, want)
	}
	for _, subdir := range []string{"logs", "worksheets", "topics"} {
		if _, err := os.Stat(filepath.Join(dir, subdir)); err != nil {
			t.Errorf("EnsureDrillDir() should create %s: %v", subdir, err)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.Daemon.Port != 7480 || cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon = %+v", cfg.Daemon)
	}
	if cfg.Generation.MaxAttempts != 1000 || cfg.Generation.SlotAttempts != 100 || cfg.Generation.BatchSize != 10 {
		t.Errorf("Generation = %+v", cfg.Generation)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Queue.Enabled {
		t.Error("Queue should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLocalConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LocalConfig)
		wantErr bool
	}{
		{"defaults", func(*LocalConfig) {}, false},
		{"bad port", func(c *LocalConfig) { c.Daemon.Port = 70000 }, true},
		{"batch over limit", func(c *LocalConfig) { c.Generation.BatchSize = 60 }, true},
		{"postgres without url", func(c *LocalConfig) { c.Storage.Driver = StoragePostgres }, true},
		{"queue without url", func(c *LocalConfig) { c.Queue.Enabled, c.Queue.URL = true, "" }, true},
		{"memory storage", func(c *LocalConfig) { c.Storage = StorageConfig{Driver: StorageMemory} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLocalConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLocalConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadLocalConfigFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadLocalConfigFrom() error = %v", err)
	}
	if cfg.Daemon.Port != DefaultLocalConfig().Daemon.Port {
		t.Errorf("missing file should yield defaults, got port %d", cfg.Daemon.Port)
	}
}

func TestLoadLocalConfigFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("daemon:\n  port: 9000\ngeneration:\n  batch_size: 20\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLocalConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadLocalConfigFrom() error = %v", err)
	}
	if cfg.Daemon.Port != 9000 || cfg.Generation.BatchSize != 20 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Daemon.Bind != "127.0.0.1" || cfg.Generation.MaxAttempts != 1000 {
		t.Errorf("defaults lost for unset keys: %+v", cfg)
	}
}

func TestLoadLocalConfigFrom_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("daemon: [not, a, map"), 0644)
	if _, err := LoadLocalConfigFrom(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("storage:\n  driver: redis\n"), 0644)
	if _, err := LoadLocalConfigFrom(invalid); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadLocalConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("MATHDRILL_PORT", "7777")
	t.Setenv("RABBITMQ_URL", "amqp://drill@broker:5672/")

	cfg, err := LoadLocalConfigFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadLocalConfigFrom() error = %v", err)
	}
	if cfg.Daemon.Port != 7777 {
		t.Errorf("Daemon.Port = %d, want 7777", cfg.Daemon.Port)
	}
	if !cfg.Queue.Enabled || cfg.Queue.URL != "amqp://drill@broker:5672/" {
		t.Errorf("Queue = %+v, want enabled from RABBITMQ_URL", cfg.Queue)
	}
}

func TestSaveLocalConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultLocalConfig()
	cfg.Daemon.Port = 8123
	cfg.Storage = StorageConfig{Driver: StorageFile, Path: "worksheets"}
	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if loaded.Daemon.Port != 8123 || loaded.Storage.Driver != StorageFile {
		t.Errorf("round trip lost values: %+v", loaded)
	}

	dir, _ := DrillDir()
	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStorageConfig_ResolvePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"mathdrill.db", "/home/u/.mathdrill/mathdrill.db"},
		{"/var/lib/drill.db", "/var/lib/drill.db"},
	}
	for _, tt := range tests {
		got := StorageConfig{Path: tt.path}.ResolvePath("/home/u/.mathdrill")
		if got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
