package config

import (
	"strings"
	"testing"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{"returns default when not set", "", 100, 100},
		{"parses valid int", "42", 100, 42},
		{"returns default on invalid int", "not-a-number", 100, 100},
		{"parses negative int", "-5", 100, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MATHDRILL_TEST_INT", tt.envValue)
			if got := getEnvInt("MATHDRILL_TEST_INT", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envValue string
		want     bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Setenv("MATHDRILL_TEST_BOOL", tt.envValue)
		if got := getEnvBool("MATHDRILL_TEST_BOOL", false); got != tt.want {
			t.Errorf("getEnvBool(%q) = %v, want %v", tt.envValue, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://drill@localhost/drill")
	t.Setenv("MATHDRILL_PORT", "9090")
	t.Setenv("MATHDRILL_DEBUG", "true")
	t.Setenv("MATHDRILL_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.Workers != 8 {
		t.Errorf("Load() port/workers = %d/%d", cfg.Port, cfg.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug when MATHDRILL_DEBUG is set", cfg.LogLevel)
	}
	if s := cfg.Storage(); s.Driver != StoragePostgres || s.DatabaseURL == "" {
		t.Errorf("Storage() = %+v", s)
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MATHDRILL_STORAGE", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Load() error = %v, want DATABASE_URL error", err)
	}
}

func TestValidateStorage(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		path    string
		url     string
		wantErr bool
	}{
		{"memory", StorageMemory, "", "", false},
		{"sqlite with path", StorageSQLite, "drill.db", "", false},
		{"sqlite without path", StorageSQLite, "", "", true},
		{"file with path", StorageFile, "worksheets", "", false},
		{"postgres with url", StoragePostgres, "", "postgres://x", false},
		{"postgres without url", StoragePostgres, "", "", true},
		{"unknown", "redis", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorage(tt.driver, tt.path, tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
