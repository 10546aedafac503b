package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
	"github.com/felixgeelhaar/mathdrill/internal/topic"
)

func setupRegistry(t *testing.T) *catalog.Registry {
	t.Helper()

	registry := catalog.NewRegistry(catalog.NewLoader())
	if err := registry.Load(); err != nil {
		t.Fatalf("Failed to load topics: %v", err)
	}
	return registry
}

func TestRegistry_Load(t *testing.T) {
	registry := setupRegistry(t)

	if !registry.Loaded() {
		t.Error("registry not marked loaded")
	}
	stats := registry.Stats()
	if stats.TopicCount != len(topic.IDs()) {
		t.Errorf("TopicCount = %d, want %d", stats.TopicCount, len(topic.IDs()))
	}
	if stats.ModeCount == 0 {
		t.Error("No modes loaded")
	}
}

func TestRegistry_EveryTopicHasGenerator(t *testing.T) {
	registry := setupRegistry(t)
	src := sampler.NewSource(1)

	for _, tp := range registry.ListTopics() {
		g, err := topic.Lookup(tp.ID)
		if err != nil {
			t.Errorf("topic %s: %v", tp.ID, err)
			continue
		}
		for _, mode := range tp.Modes {
			if _, err := g.Generate(src, topic.Request{Mode: mode, Difficulty: domain.DifficultyNormal}); err != nil {
				t.Errorf("topic %s mode %s: %v", tp.ID, mode, err)
			}
		}
	}
}

func TestRegistry_GetTopic(t *testing.T) {
	registry := setupRegistry(t)

	tp, err := registry.GetTopic("sqrt")
	if err != nil {
		t.Fatalf("GetTopic failed: %v", err)
	}
	if tp.Title != "Square Roots" {
		t.Errorf("Title = %q, want %q", tp.Title, "Square Roots")
	}
	if tp.DefaultMode != topic.ModeAll {
		t.Errorf("DefaultMode = %q, want %q", tp.DefaultMode, topic.ModeAll)
	}

	_, err = registry.GetTopic("nonexistent")
	if !errors.Is(err, domain.ErrTopicNotFound) {
		t.Errorf("GetTopic(nonexistent) error = %v, want ErrTopicNotFound", err)
	}
}

func TestRegistry_ListTopicsSorted(t *testing.T) {
	registry := setupRegistry(t)

	topics := registry.ListTopics()
	for i := 1; i < len(topics); i++ {
		if topics[i-1].ID >= topics[i].ID {
			t.Errorf("topics not sorted: %s before %s", topics[i-1].ID, topics[i].ID)
		}
	}
}

func TestRegistry_ListByTag(t *testing.T) {
	registry := setupRegistry(t)

	tests := []struct {
		tag  string
		want []string
	}{
		{"radicals", []string{"double_radical", "sqrt"}},
		{"calculus", []string{"calculus"}},
		{"geometry", nil},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := registry.ListByTag(tt.tag)
			if len(got) != len(tt.want) {
				t.Fatalf("ListByTag(%q) returned %d topics, want %d", tt.tag, len(got), len(tt.want))
			}
			for i, tp := range got {
				if tp.ID != tt.want[i] {
					t.Errorf("topic %d = %s, want %s", i, tp.ID, tt.want[i])
				}
			}
		})
	}
}

func TestRegistry_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, catalog.CatalogFile)
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write catalog: %v", err)
		}
	}

	write("topics:\n  - id: fraction\n    modes: [add]\n")
	registry := catalog.NewRegistry(catalog.NewDirLoader(dir))
	if err := registry.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n := registry.Stats().TopicCount; n != 1 {
		t.Fatalf("TopicCount = %d, want 1", n)
	}

	write("topics:\n  - id: linear\n    modes: [int]\n  - id: sqrt\n    modes: [all]\n")
	if err := registry.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if _, err := registry.GetTopic("fraction"); err == nil {
		t.Error("fraction should be gone after reload")
	}
	if n := registry.Stats().TopicCount; n != 2 {
		t.Errorf("TopicCount = %d, want 2", n)
	}
}

func TestLoader_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"missing id", "topics:\n  - modes: [int]\n", domain.ErrInvalidInput},
		{"no modes", "topics:\n  - id: linear\n", domain.ErrInvalidInput},
		{"unknown default", "topics:\n  - id: linear\n    modes: [int]\n    default_mode: frac\n", domain.ErrUnknownMode},
		{"duplicate id", "topics:\n  - id: linear\n    modes: [int]\n  - id: linear\n    modes: [frac]\n", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{catalog.CatalogFile: {Data: []byte(tt.yaml)}}
			_, err := catalog.NewFSLoader(fsys).LoadAll()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadAll() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_DefaultModeFallsBackToFirst(t *testing.T) {
	fsys := fstest.MapFS{catalog.CatalogFile: {Data: []byte("topics:\n  - id: linear\n    modes: [frac, int]\n")}}
	topics, err := catalog.NewFSLoader(fsys).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if topics[0].DefaultMode != "frac" {
		t.Errorf("DefaultMode = %q, want frac", topics[0].DefaultMode)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	if _, err := catalog.NewDirLoader(t.TempDir()).LoadAll(); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
