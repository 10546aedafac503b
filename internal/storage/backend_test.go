package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.StorageConfig
		wantEvents bool
	}{
		{"memory", config.StorageConfig{Driver: config.StorageMemory}, false},
		{"file", config.StorageConfig{Driver: config.StorageFile, Path: "worksheets"}, false},
		{"sqlite", config.StorageConfig{Driver: config.StorageSQLite, Path: "mathdrill.db"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			b, err := Open(ctx, tt.cfg, dir, nil)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer b.Close()

			if (b.Events != nil) != tt.wantEvents {
				t.Errorf("Events set = %v, want %v", b.Events != nil, tt.wantEvents)
			}

			ws := &domain.Worksheet{
				ID:         "b6f1c0de-0000-4000-8000-000000000001",
				Topic:      "linear",
				Mode:       "int",
				Difficulty: domain.DifficultyNormal,
				Problems:   []domain.Problem{{Display: "2x = 4", Answer: "x = 2"}},
				CreatedAt:  time.Now().UTC(),
			}
			if err := b.Store.Save(ctx, ws); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := b.Store.Get(ctx, ws.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Problems[0].Answer != "x = 2" {
				t.Errorf("round trip answer = %q", got.Problems[0].Answer)
			}
		})
	}
}

func TestOpen_ResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(context.Background(), config.StorageConfig{Driver: config.StorageSQLite, Path: "nested.db"}, dir, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if _, err := os.Stat(filepath.Join(dir, "nested.db")); err != nil {
		t.Errorf("database not created under dir: %v", err)
	}
	if _, err := b.Store.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrWorksheetNotFound) {
		t.Errorf("Get() error = %v, want ErrWorksheetNotFound", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	tests := []config.StorageConfig{
		{Driver: "mongo"},
		{Driver: config.StorageSQLite},
		{Driver: config.StoragePostgres},
	}
	for _, cfg := range tests {
		if _, err := Open(context.Background(), cfg, t.TempDir(), nil); err == nil {
			t.Errorf("Open(%+v) should fail", cfg)
		}
	}
}
