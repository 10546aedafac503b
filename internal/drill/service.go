// Package drill is the entry point to problem generation. It resolves a
// topic through the catalog, seeds a sampler and runs the topic's
// generator, substituting the placeholder problem when generation is
// exhausted. Batch builds whole worksheets with duplicate suppression.
package drill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/metrics"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
	"github.com/felixgeelhaar/mathdrill/internal/topic"
)

// Defaults for Config
const (
	DefaultBatchSize     = 10
	DefaultMaxBatchSize  = 50
	DefaultSlotAttempts  = 100
	DefaultMaxConcurrent = 4
)

// Config tunes generation limits
type Config struct {
	// MaxAttempts caps the rejection loop of one generation call
	MaxAttempts int
	// SlotAttempts caps regeneration of one worksheet slot on duplicates
	SlotAttempts  int
	BatchSize     int
	MaxBatchSize  int
	MaxConcurrent int
}

// DefaultConfig returns the default generation limits
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   sampler.DefaultMaxAttempts,
		SlotAttempts:  DefaultSlotAttempts,
		BatchSize:     DefaultBatchSize,
		MaxBatchSize:  DefaultMaxBatchSize,
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.SlotAttempts <= 0 {
		c.SlotAttempts = d.SlotAttempts
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = d.MaxBatchSize
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	return c
}

// Request asks for a single problem
type Request struct {
	Topic      string            `json:"topic"`
	Mode       string            `json:"mode,omitempty"`
	Subtype    string            `json:"subtype,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Index      int               `json:"index,omitempty"`
	// Seed makes the draw reproducible. Zero seeds from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// BatchRequest asks for a worksheet
type BatchRequest struct {
	Topic      string            `json:"topic"`
	Mode       string            `json:"mode,omitempty"`
	Subtype    string            `json:"subtype,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Count      int               `json:"count,omitempty"`
	Seed       int64             `json:"seed,omitempty"`
}

// Service generates problems and worksheets
type Service struct {
	catalog    *catalog.Registry
	cfg        Config
	generators map[string]topic.Generator
	logger     *slog.Logger
	metrics    *metrics.Recorder
	bulkhead   bulkhead.Bulkhead[*domain.Worksheet]
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithGenerator replaces the built-in generator of a topic
func WithGenerator(id string, g topic.Generator) Option {
	return func(s *Service) { s.generators[id] = g }
}

// NewService creates a generation service over a loaded catalog
func NewService(reg *catalog.Registry, cfg Config, opts ...Option) *Service {
	cfg = cfg.withDefaults()
	s := &Service{
		catalog:    reg,
		cfg:        cfg,
		generators: make(map[string]topic.Generator),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.bulkhead = bulkhead.New[*domain.Worksheet](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 2,
		QueueTimeout:  30 * time.Second,
	})
	return s
}

// Config returns the effective limits
func (s *Service) Config() Config {
	return s.cfg
}

// Catalog returns the topic registry
func (s *Service) Catalog() *catalog.Registry {
	return s.catalog
}

func (s *Service) generator(id string) (topic.Generator, error) {
	if g, ok := s.generators[id]; ok {
		return g, nil
	}
	return topic.Lookup(id)
}

// resolve validates topic, mode and difficulty
func (s *Service) resolve(topicID, mode string, d domain.Difficulty) (*domain.Topic, string, domain.Difficulty, topic.Generator, error) {
	t, err := s.catalog.GetTopic(topicID)
	if err != nil {
		return nil, "", "", nil, err
	}
	resolved, err := t.ResolveMode(mode)
	if err != nil {
		return nil, "", "", nil, fmt.Errorf("%w: %q for topic %s", domain.ErrUnknownMode, mode, t.ID)
	}
	if d == "" {
		d = domain.DifficultyNormal
	}
	if !d.Valid() {
		return nil, "", "", nil, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, d)
	}
	g, err := s.generator(t.ID)
	if err != nil {
		return nil, "", "", nil, err
	}
	return t, resolved, d, g, nil
}

// Generate returns one problem. When the attempt cap is hit the returned
// problem is the flagged placeholder and the error wraps
// domain.ErrGenerationExhausted.
func (s *Service) Generate(ctx context.Context, req Request) (domain.Problem, error) {
	if err := ctx.Err(); err != nil {
		return domain.Problem{}, err
	}
	t, mode, d, g, err := s.resolve(req.Topic, req.Mode, req.Difficulty)
	if err != nil {
		return domain.Problem{}, err
	}

	src := sampler.NewSource(req.Seed)
	p, err := g.Generate(src, topic.Request{
		Mode:        mode,
		Difficulty:  d,
		Index:       req.Index,
		Subtype:     req.Subtype,
		Balancer:    topic.NewBalancer(t.ID),
		MaxAttempts: s.cfg.MaxAttempts,
	})
	if errors.Is(err, domain.ErrGenerationExhausted) {
		s.exhausted(t.ID, mode, err)
		return s.placeholder(t.ID, mode, d), err
	}
	if err != nil {
		return domain.Problem{}, err
	}
	s.metrics.Generated(p.Topic, p.Mode)
	return p, nil
}

// Batch generates a worksheet. Problems with equal identity are
// regenerated up to the slot cap; a slot whose generator is exhausted
// holds the placeholder and is counted in Worksheet.Fallbacks.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*domain.Worksheet, error) {
	count := req.Count
	if count <= 0 {
		count = s.cfg.BatchSize
	}
	if count > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: count %d exceeds %d", domain.ErrInvalidInput, count, s.cfg.MaxBatchSize)
	}
	t, mode, d, g, err := s.resolve(req.Topic, req.Mode, req.Difficulty)
	if err != nil {
		return nil, err
	}

	return s.bulkhead.Execute(ctx, func(ctx context.Context) (*domain.Worksheet, error) {
		return s.batch(ctx, t, g, mode, d, req.Subtype, count, req.Seed)
	})
}

func (s *Service) batch(ctx context.Context, t *domain.Topic, g topic.Generator, mode string, d domain.Difficulty, subtype string, count int, seed int64) (*domain.Worksheet, error) {
	src := sampler.NewSource(seed)
	ws := &domain.Worksheet{
		ID:         uuid.New().String(),
		Topic:      t.ID,
		Mode:       mode,
		Subtype:    subtype,
		Difficulty: d,
		Seed:       src.InitialSeed(),
		Problems:   make([]domain.Problem, 0, count),
		CreatedAt:  s.now().UTC(),
	}

	// one balancer per worksheet
	bal := topic.NewBalancer(t.ID)
	seen := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req := topic.PlanSlot(src, topic.Request{
			Mode:        mode,
			Difficulty:  d,
			Index:       i,
			Subtype:     subtype,
			Balancer:    bal,
			MaxAttempts: s.cfg.MaxAttempts,
		})
		p, err := s.fillSlot(src, t.ID, g, req, seen)
		if err != nil {
			return nil, err
		}
		if p.Fallback {
			ws.Fallbacks++
			s.metrics.Fallback(t.ID)
		} else {
			seen[p.Identity()] = true
		}
		ws.Problems = append(ws.Problems, p)
	}

	s.metrics.Worksheet()
	s.logger.Debug("worksheet generated",
		"id", ws.ID,
		"topic", ws.Topic,
		"mode", ws.Mode,
		"count", len(ws.Problems),
		"fallbacks", ws.Fallbacks)
	return ws, nil
}

// fillSlot generates until the problem is new to the worksheet. After
// SlotAttempts collisions the last duplicate is kept.
func (s *Service) fillSlot(src *sampler.Source, topicID string, g topic.Generator, req topic.Request, seen map[string]bool) (domain.Problem, error) {
	var p domain.Problem
	for attempt := 1; attempt <= s.cfg.SlotAttempts; attempt++ {
		var err error
		p, err = g.Generate(src, req)
		if errors.Is(err, domain.ErrGenerationExhausted) {
			s.exhausted(topicID, req.Mode, err)
			s.metrics.SlotAttempts(topicID, attempt)
			return s.placeholder(topicID, req.Mode, req.Difficulty), nil
		}
		if err != nil {
			return domain.Problem{}, err
		}
		if !seen[p.Identity()] {
			s.metrics.Generated(topicID, p.Mode)
			s.metrics.SlotAttempts(topicID, attempt)
			return p, nil
		}
	}

	s.logger.Warn("duplicate kept after slot cap",
		"topic", topicID,
		"index", req.Index,
		"attempts", s.cfg.SlotAttempts)
	s.metrics.Generated(topicID, p.Mode)
	s.metrics.SlotAttempts(topicID, s.cfg.SlotAttempts)
	return p, nil
}

func (s *Service) exhausted(topicID, mode string, err error) {
	s.logger.Warn("generation exhausted",
		"topic", topicID,
		"mode", mode,
		"attempts", s.cfg.MaxAttempts,
		"error", err)
	s.metrics.Exhausted(topicID)
}

func (s *Service) placeholder(topicID, mode string, d domain.Difficulty) domain.Problem {
	p := topic.Placeholder()
	p.Topic = topicID
	p.Mode = mode
	p.Difficulty = d
	return p
}
