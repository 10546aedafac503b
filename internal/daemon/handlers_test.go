package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
	"github.com/felixgeelhaar/mathdrill/internal/topic"
)

func TestListTopics(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/topics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	topics := decodeBody[[]domain.Topic](t, w)
	if len(topics) != 15 {
		t.Errorf("got %d topics, want 15", len(topics))
	}

	w = do(t, s, http.MethodGet, "/v1/topics?tag=radicals", nil)
	radicals := decodeBody[[]domain.Topic](t, w)
	ids := []string{}
	for _, tp := range radicals {
		ids = append(ids, tp.ID)
	}
	if !reflect.DeepEqual(ids, []string{"double_radical", "sqrt"}) {
		t.Errorf("radicals = %v", ids)
	}
}

func TestGetTopic(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/v1/topics/linear", http.StatusOK},
		{"/v1/topics/trigonometry", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	w := do(t, s, http.MethodGet, "/v1/topics/linear", nil)
	tp := decodeBody[domain.Topic](t, w)
	if tp.DefaultMode != "int" {
		t.Errorf("default mode = %q, want int", tp.DefaultMode)
	}
}

func TestGenerateProblem(t *testing.T) {
	events := &fakeEvents{}
	s := setupTestServer(t, func(sc *ServerConfig) { sc.Events = events })

	w := do(t, s, http.MethodPost, "/v1/problems", drill.Request{Topic: "fraction", Mode: "add", Seed: 11})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[ProblemResponse](t, w)
	if resp.Exhausted || resp.Problem.Fallback {
		t.Errorf("unexpected fallback: %+v", resp)
	}
	if resp.Problem.Topic != "fraction" || resp.Problem.Mode != "add" {
		t.Errorf("problem = %+v", resp.Problem)
	}
	if resp.Problem.Display == "" || resp.Problem.Answer == "" {
		t.Error("problem markup is empty")
	}
	if got := events.types(); !reflect.DeepEqual(got, []string{domain.EventProblemGenerated}) {
		t.Errorf("events = %v", got)
	}
}

func TestGenerateProblem_SameSeedSameProblem(t *testing.T) {
	s := setupTestServer(t)
	req := drill.Request{Topic: "quadratic", Seed: 99}

	a := decodeBody[ProblemResponse](t, do(t, s, http.MethodPost, "/v1/problems", req))
	b := decodeBody[ProblemResponse](t, do(t, s, http.MethodPost, "/v1/problems", req))
	if a.Problem.Display != b.Problem.Display {
		t.Errorf("same seed produced %q and %q", a.Problem.Display, b.Problem.Display)
	}
}

func TestGenerateProblem_Exhausted(t *testing.T) {
	events := &fakeEvents{}
	exhausted := topic.GeneratorFunc(func(*sampler.Source, topic.Request) (domain.Problem, error) {
		return domain.Problem{}, fmt.Errorf("test: %w", domain.ErrGenerationExhausted)
	})
	s := setupTestServer(t, func(sc *ServerConfig) {
		sc.Events = events
		sc.Drill = drill.NewService(sc.Drill.Catalog(), drill.DefaultConfig(), drill.WithGenerator("double_radical", exhausted))
	})

	w := do(t, s, http.MethodPost, "/v1/problems", drill.Request{Topic: "double_radical"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[ProblemResponse](t, w)
	if !resp.Exhausted || !resp.Problem.Fallback {
		t.Errorf("want flagged placeholder, got %+v", resp)
	}
	if got := events.types(); !reflect.DeepEqual(got, []string{domain.EventGenerationExhausted}) {
		t.Errorf("events = %v", got)
	}
}

func TestGenerateProblem_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed json", `{"topic":`, http.StatusBadRequest},
		{"unknown field", `{"topic":"linear","colour":"red"}`, http.StatusBadRequest},
		{"unknown topic", drill.Request{Topic: "trigonometry"}, http.StatusNotFound},
		{"unknown mode", drill.Request{Topic: "linear", Mode: "cubic"}, http.StatusBadRequest},
		{"bad difficulty", drill.Request{Topic: "linear", Difficulty: "extreme"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/problems", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			resp := decodeBody[map[string]any](t, w)
			if resp["error"] == nil {
				t.Error("missing error message")
			}
		})
	}
}

func TestCreateWorksheet(t *testing.T) {
	events := &fakeEvents{}
	s := setupTestServer(t, func(sc *ServerConfig) { sc.Events = events })

	w := do(t, s, http.MethodPost, "/v1/worksheets", drill.BatchRequest{Topic: "sqrt", Count: 6, Seed: 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	ws := decodeBody[domain.Worksheet](t, w)
	if len(ws.Problems) != 6 || ws.Seed != 5 || ws.Topic != "sqrt" {
		t.Errorf("worksheet = %+v", ws)
	}
	if loc := w.Header().Get("Location"); loc != "/v1/worksheets/"+ws.ID {
		t.Errorf("Location = %q", loc)
	}

	seen := map[string]bool{}
	for _, p := range ws.Problems {
		if seen[p.Identity()] {
			t.Errorf("duplicate problem %q", p.Identity())
		}
		seen[p.Identity()] = true
	}

	if _, err := s.store.Get(t.Context(), ws.ID); err != nil {
		t.Errorf("worksheet not stored: %v", err)
	}
	if got := events.types(); !reflect.DeepEqual(got, []string{domain.EventWorksheetGenerated}) {
		t.Errorf("events = %v", got)
	}
}

func TestCreateWorksheet_EventFailureIgnored(t *testing.T) {
	events := &fakeEvents{err: errors.New("database is locked")}
	s := setupTestServer(t, func(sc *ServerConfig) { sc.Events = events })

	w := do(t, s, http.MethodPost, "/v1/worksheets", drill.BatchRequest{Topic: "linear", Count: 2})
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 despite event failure", w.Code)
	}
}

func TestCreateWorksheet_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"too many", drill.BatchRequest{Topic: "linear", Count: 500}, http.StatusBadRequest},
		{"unknown topic", drill.BatchRequest{Topic: "geometry"}, http.StatusNotFound},
		{"empty body", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, s, http.MethodPost, "/v1/worksheets", tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestWorksheetLifecycle(t *testing.T) {
	s := setupTestServer(t)

	created := decodeBody[domain.Worksheet](t,
		do(t, s, http.MethodPost, "/v1/worksheets", drill.BatchRequest{Topic: "calculus", Mode: "diff", Count: 3, Seed: 8}))
	do(t, s, http.MethodPost, "/v1/worksheets", drill.BatchRequest{Topic: "linear", Count: 2})

	list := decodeBody[[]domain.Worksheet](t, do(t, s, http.MethodGet, "/v1/worksheets?topic=calculus", nil))
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("filtered list = %+v", list)
	}
	list = decodeBody[[]domain.Worksheet](t, do(t, s, http.MethodGet, "/v1/worksheets?limit=1", nil))
	if len(list) != 1 {
		t.Errorf("limited list has %d worksheets", len(list))
	}

	got := decodeBody[domain.Worksheet](t, do(t, s, http.MethodGet, "/v1/worksheets/"+created.ID, nil))
	if !reflect.DeepEqual(got.Problems, created.Problems) {
		t.Errorf("fetched problems differ")
	}

	if w := do(t, s, http.MethodDelete, "/v1/worksheets/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/v1/worksheets/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/v1/worksheets/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestListWorksheets_InvalidLimit(t *testing.T) {
	s := setupTestServer(t)

	for _, q := range []string{"abc", "-1"} {
		if w := do(t, s, http.MethodGet, "/v1/worksheets?limit="+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestGetWorksheet_Formats(t *testing.T) {
	s := setupTestServer(t)
	ws := decodeBody[domain.Worksheet](t,
		do(t, s, http.MethodPost, "/v1/worksheets", drill.BatchRequest{Topic: "fraction", Count: 2, Seed: 3}))

	tests := []struct {
		query       string
		contentType string
		contains    string
	}{
		{"format=text", "text/plain; charset=utf-8", `(1) \(` + ws.Problems[0].Display},
		{"format=tex&view=answers", "application/x-tex; charset=utf-8", "(2) $$" + ws.Problems[1].Answer},
		{"format=html", "text/html; charset=utf-8", "katex"},
		{"format=json&view=answers", "application/json", `"view": "answers"`},
		{"view=problems", "text/plain; charset=utf-8", "(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, s, http.MethodGet, "/v1/worksheets/"+ws.ID+"?"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, w.Body.String())
			}
		})
	}

	if w := do(t, s, http.MethodGet, "/v1/worksheets/"+ws.ID+"?format=pdf", nil); w.Code != http.StatusBadRequest {
		t.Errorf("format=pdf: status = %d, want 400", w.Code)
	}
}

func TestQueueWorksheet_Disabled(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/worksheets/async", drill.BatchRequest{Topic: "linear"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestQueueWorksheet(t *testing.T) {
	jobs := &fakeJobs{}
	events := &fakeEvents{}
	s := setupTestServer(t, func(sc *ServerConfig) {
		sc.Jobs = jobs
		sc.Events = events
	})

	w := do(t, s, http.MethodPost, "/v1/worksheets/async", drill.BatchRequest{Topic: "simultaneous", Count: 4})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	accepted := decodeBody[JobAccepted](t, w)
	if len(jobs.jobs) != 1 || jobs.jobs[0].ID.String() != accepted.JobID {
		t.Fatalf("published jobs = %+v, accepted = %+v", jobs.jobs, accepted)
	}
	if jobs.jobs[0].Request.Count != 4 {
		t.Errorf("job request = %+v", jobs.jobs[0].Request)
	}
	if got := events.types(); !reflect.DeepEqual(got, []string{domain.EventWorksheetQueued}) {
		t.Errorf("events = %v", got)
	}

	status := decodeBody[JobStatus](t, do(t, s, http.MethodGet, accepted.StatusURL, nil))
	if status.Status != JobStatusQueued || status.Topic != "simultaneous" {
		t.Errorf("job status = %+v", status)
	}

	s.tracker.Complete(&queue.JobResult{
		JobID:       jobs.jobs[0].ID,
		Status:      queue.StatusCompleted,
		WorksheetID: "ws-42",
		Problems:    4,
	})
	status = decodeBody[JobStatus](t, do(t, s, http.MethodGet, accepted.StatusURL, nil))
	if status.Status != queue.StatusCompleted || status.Result == nil || status.Result.WorksheetID != "ws-42" {
		t.Errorf("completed job status = %+v", status)
	}
}

func TestQueueWorksheet_Errors(t *testing.T) {
	jobs := &fakeJobs{}
	s := setupTestServer(t, func(sc *ServerConfig) { sc.Jobs = jobs })

	if w := do(t, s, http.MethodPost, "/v1/worksheets/async", drill.BatchRequest{Topic: "geometry"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown topic: status = %d, want 404", w.Code)
	}

	jobs.err = errors.New("channel closed")
	if w := do(t, s, http.MethodPost, "/v1/worksheets/async", drill.BatchRequest{Topic: "linear"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("publish failure: status = %d, want 503", w.Code)
	}
	if s.tracker.Len() != 0 {
		t.Errorf("failed publish should not be tracked")
	}
}

func TestGetJob_NotFound(t *testing.T) {
	s := setupTestServer(t)

	if w := do(t, s, http.MethodGet, "/v1/jobs/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
