package drill

import (
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/config"
)

// ConfigFrom maps local settings onto generation limits
func ConfigFrom(gen config.GenerationConfig, limits config.LimitsConfig) Config {
	return Config{
		MaxAttempts:   gen.MaxAttempts,
		SlotAttempts:  gen.SlotAttempts,
		BatchSize:     gen.BatchSize,
		MaxBatchSize:  limits.MaxBatchSize,
		MaxConcurrent: limits.MaxConcurrent,
	}
}

// NewFromConfig loads the topic catalog, from CatalogDir when set, and
// creates a Service with the configured limits
func NewFromConfig(cfg *config.LocalConfig, opts ...Option) (*Service, error) {
	loader := catalog.NewLoader()
	if dir := cfg.Generation.CatalogDir; dir != "" {
		loader = catalog.NewDirLoader(dir)
	}
	reg := catalog.NewRegistry(loader)
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return NewService(reg, ConfigFrom(cfg.Generation, cfg.Limits), opts...), nil
}
