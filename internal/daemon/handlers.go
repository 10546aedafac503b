package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

const maxBodyBytes = 1 << 20

var contentTypes = map[worksheet.Format]string{
	worksheet.FormatText: "text/plain; charset=utf-8",
	worksheet.FormatTeX:  "application/x-tex; charset=utf-8",
	worksheet.FormatHTML: "text/html; charset=utf-8",
	worksheet.FormatJSON: "application/json",
}

// ProblemResponse wraps a single generated problem
type ProblemResponse struct {
	Problem domain.Problem `json:"problem"`
	// Exhausted is set when Problem is the placeholder
	Exhausted bool `json:"exhausted"`
}

// JobAccepted is returned for an enqueued worksheet job
type JobAccepted struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.drill.Catalog().Stats()
	limits := s.drill.Config()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":         "running",
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"topics":         stats.TopicCount,
		"modes":          stats.ModeCount,
		"storage":        s.cfg.Storage.Driver,
		"async":          s.jobs != nil,
		"tracked_jobs":   s.tracker.Len(),
		"limits": map[string]int{
			"max_attempts":    limits.MaxAttempts,
			"slot_attempts":   limits.SlotAttempts,
			"max_batch_size":  limits.MaxBatchSize,
			"max_concurrent":  limits.MaxConcurrent,
			"rate_per_second": s.cfg.Limits.RatePerSecond,
		},
	})
}

// Topic handlers

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	reg := s.drill.Catalog()
	topics := reg.ListTopics()
	if tag := r.URL.Query().Get("tag"); tag != "" {
		topics = reg.ListByTag(tag)
	}
	s.jsonResponse(w, http.StatusOK, topics)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	t, err := s.drill.Catalog().GetTopic(r.PathValue("id"))
	if err != nil {
		s.writeError(w, "topic not found", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, t)
}

// Generation handlers

func (s *Server) handleGenerateProblem(w http.ResponseWriter, r *http.Request) {
	var req drill.Request
	if err := s.decode(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p, err := s.drill.Generate(r.Context(), req)
	exhausted := errors.Is(err, domain.ErrGenerationExhausted)
	if err != nil && !exhausted {
		s.writeError(w, "failed to generate problem", err)
		return
	}

	if exhausted {
		s.record(r.Context(), domain.EventGenerationExhausted, "", p.Topic, map[string]string{"mode": p.Mode})
	} else {
		s.record(r.Context(), domain.EventProblemGenerated, "", p.Topic, map[string]string{"mode": p.Mode})
	}
	s.jsonResponse(w, http.StatusOK, ProblemResponse{Problem: p, Exhausted: exhausted})
}

func (s *Server) handleCreateWorksheet(w http.ResponseWriter, r *http.Request) {
	var req drill.BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ws, err := s.drill.Batch(r.Context(), req)
	if err != nil {
		s.writeError(w, "failed to generate worksheet", err)
		return
	}
	if err := s.store.Save(r.Context(), ws); err != nil {
		s.writeError(w, "failed to save worksheet", err)
		return
	}

	s.record(r.Context(), domain.EventWorksheetGenerated, ws.ID, ws.Topic, map[string]any{
		"mode":      ws.Mode,
		"count":     len(ws.Problems),
		"fallbacks": ws.Fallbacks,
	})
	slog.Info("worksheet generated",
		"correlation_id", GetCorrelationID(r.Context()),
		"id", ws.ID,
		"topic", ws.Topic,
		"count", len(ws.Problems),
		"fallbacks", ws.Fallbacks)

	w.Header().Set("Location", "/v1/worksheets/"+ws.ID)
	s.jsonResponse(w, http.StatusCreated, ws)
}

func (s *Server) handleQueueWorksheet(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "async generation is not enabled", nil)
		return
	}

	var req drill.BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if _, err := s.drill.Catalog().GetTopic(req.Topic); err != nil {
		s.writeError(w, "topic not found", err)
		return
	}

	job := queue.NewWorksheetJob(req)
	if err := s.jobs.PublishJob(r.Context(), job); err != nil {
		s.jsonError(w, http.StatusServiceUnavailable, "failed to enqueue worksheet job", err)
		return
	}
	s.tracker.Track(job)
	s.record(r.Context(), domain.EventWorksheetQueued, "", req.Topic, map[string]string{"job_id": job.ID.String()})

	s.jsonResponse(w, http.StatusAccepted, JobAccepted{
		JobID:     job.ID.String(),
		Status:    JobStatusQueued,
		StatusURL: "/v1/jobs/" + job.ID.String(),
	})
}

// Worksheet handlers

func (s *Server) handleListWorksheets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := worksheet.Filter{Topic: q.Get("topic")}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.jsonError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		filter.Limit = limit
	}

	list, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, "failed to list worksheets", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleGetWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "worksheet not found", err)
		return
	}

	q := r.URL.Query()
	if q.Get("format") == "" && q.Get("view") == "" {
		s.jsonResponse(w, http.StatusOK, ws)
		return
	}

	format, err := worksheet.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, "invalid format", err)
		return
	}

	var buf bytes.Buffer
	if err := worksheet.Render(&buf, ws, domain.ParseView(q.Get("view")), format); err != nil {
		s.writeError(w, "failed to render worksheet", err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write worksheet", "id", ws.ID, "error", err)
	}
}

func (s *Server) handleDeleteWorksheet(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, "failed to delete worksheet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Job handlers

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	js, ok := s.tracker.Get(r.PathValue("id"))
	if !ok {
		s.jsonError(w, http.StatusNotFound, "job not found", nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, js)
}
