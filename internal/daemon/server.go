package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/metrics"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// EventRecorder stores generation events
type EventRecorder interface {
	Record(ctx context.Context, eventType, worksheetID, topic string, data any) error
}

// JobPublisher enqueues worksheet jobs for workers
type JobPublisher interface {
	PublishJob(ctx context.Context, job *queue.WorksheetJob) error
}

// Server represents the mathdrill daemon HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	handler http.Handler
	version string
	started time.Time

	drill   *drill.Service
	store   worksheet.Store
	events  EventRecorder
	metrics *metrics.Recorder
	jobs    JobPublisher
	tracker *JobTracker
	limiter ratelimit.RateLimiter
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config  *config.LocalConfig
	Version string
	Drill   *drill.Service
	Store   worksheet.Store

	// Optional
	Events  EventRecorder
	Metrics *metrics.Recorder
	Jobs    JobPublisher
	Tracker *JobTracker
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Drill == nil {
		return nil, errors.New("drill service is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("worksheet store is required")
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultLocalConfig()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Tracker == nil {
		cfg.Tracker = NewJobTracker(DefaultTrackedJobs)
	}

	s := &Server{
		cfg:     cfg.Config,
		router:  http.NewServeMux(),
		version: cfg.Version,
		started: time.Now(),
		drill:   cfg.Drill,
		store:   cfg.Store,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		jobs:    cfg.Jobs,
		tracker: cfg.Tracker,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	if rate := cfg.Config.Limits.RatePerSecond; rate > 0 {
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
		handler = rateLimitMiddleware(s.limiter, handler)
	}
	s.handler = correlationIDMiddleware(recoveryMiddleware(loggingMiddleware(handler)))

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Topics
	s.router.HandleFunc("GET /v1/topics", s.handleListTopics)
	s.router.HandleFunc("GET /v1/topics/{id}", s.handleGetTopic)

	// Generation
	s.router.HandleFunc("POST /v1/problems", s.handleGenerateProblem)
	s.router.HandleFunc("POST /v1/worksheets", s.handleCreateWorksheet)
	s.router.HandleFunc("POST /v1/worksheets/async", s.handleQueueWorksheet)

	// Worksheets
	s.router.HandleFunc("GET /v1/worksheets", s.handleListWorksheets)
	s.router.HandleFunc("GET /v1/worksheets/{id}", s.handleGetWorksheet)
	s.router.HandleFunc("DELETE /v1/worksheets/{id}", s.handleDeleteWorksheet)

	// Jobs
	s.router.HandleFunc("GET /v1/jobs/{id}", s.handleGetJob)

	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting mathdrill daemon",
		"addr", s.server.Addr,
		"topics", s.drill.Catalog().Stats().TopicCount,
		"async", s.jobs != nil,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			slog.Warn("failed to close rate limiter", "error", err)
		}
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}

// writeError maps domain errors to HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrTopicNotFound),
		errors.Is(err, domain.ErrWorksheetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidRange):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	s.jsonError(w, status, message, err)
}

// record stores an event without failing the request
func (s *Server) record(ctx context.Context, eventType, worksheetID, topic string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, eventType, worksheetID, topic, data); err != nil {
		slog.Warn("failed to record event",
			"correlation_id", GetCorrelationID(ctx),
			"event", eventType,
			"error", err)
	}
}
