package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/sampler"
	"github.com/felixgeelhaar/mathdrill/internal/topic"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// setupTestServer creates a test MCP server over the built-in catalog
func setupTestServer(t *testing.T, opts ...drill.Option) *Server {
	t.Helper()

	reg := catalog.NewRegistry(catalog.NewLoader())
	if err := reg.Load(); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewServer(Config{
		Drill:   drill.NewService(reg, drill.DefaultConfig(), opts...),
		Store:   worksheet.NewMemoryStore(),
		Version: "test",
	})
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)

	if server.mcpServer == nil {
		t.Fatal("expected non-nil MCP server")
	}
	if server.GetMCPServer() != server.mcpServer {
		t.Error("GetMCPServer should return the underlying server")
	}
}

func TestNewServer_DefaultStore(t *testing.T) {
	server := NewServer(Config{})
	if server.store == nil {
		t.Fatal("expected a memory store when none is configured")
	}
}

func TestHandleTopics(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	out, err := server.handleTopics(ctx, TopicsInput{})
	if err != nil {
		t.Fatalf("handleTopics() error = %v", err)
	}
	if len(out.Topics) != 15 {
		t.Errorf("got %d topics, want 15", len(out.Topics))
	}

	out, _ = server.handleTopics(ctx, TopicsInput{Tag: "calculus"})
	if len(out.Topics) != 1 || out.Topics[0].ID != "calculus" {
		t.Errorf("calculus topics = %+v", out.Topics)
	}
	if out.Topics[0].DefaultMode != "diff" {
		t.Errorf("default mode = %q, want diff", out.Topics[0].DefaultMode)
	}
}

func TestHandleGenerate(t *testing.T) {
	server := setupTestServer(t)

	out, err := server.handleGenerate(context.Background(), GenerateInput{
		Topic:      "linear",
		Mode:       "frac",
		Difficulty: "easy",
		Seed:       17,
	})
	if err != nil {
		t.Fatalf("handleGenerate() error = %v", err)
	}
	if !strings.HasPrefix(out.Problem, `\(`) || !strings.HasSuffix(out.Answer, `\)`) {
		t.Errorf("markup not wrapped inline: %+v", out)
	}
	if out.Mode != "frac" || out.Fallback {
		t.Errorf("output = %+v", out)
	}
}

func TestHandleGenerate_Errors(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input GenerateInput
		want  error
	}{
		{"unknown topic", GenerateInput{Topic: "geometry"}, domain.ErrTopicNotFound},
		{"unknown mode", GenerateInput{Topic: "sqrt", Mode: "cube"}, domain.ErrUnknownMode},
		{"bad difficulty", GenerateInput{Topic: "sqrt", Difficulty: "insane"}, domain.ErrInvalidDifficulty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := server.handleGenerate(ctx, tt.input); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHandleGenerate_ExhaustedReturnsPlaceholder(t *testing.T) {
	exhausted := topic.GeneratorFunc(func(*sampler.Source, topic.Request) (domain.Problem, error) {
		return domain.Problem{}, fmt.Errorf("test: %w", domain.ErrGenerationExhausted)
	})
	server := setupTestServer(t, drill.WithGenerator("inequality", exhausted))

	out, err := server.handleGenerate(context.Background(), GenerateInput{Topic: "inequality"})
	if err != nil {
		t.Fatalf("handleGenerate() error = %v", err)
	}
	if !out.Fallback {
		t.Errorf("expected fallback flag, got %+v", out)
	}
}

func TestHandleWorksheetAndAnswers(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	ws, err := server.handleWorksheet(ctx, WorksheetInput{Topic: "factoring", Count: 4, Seed: 12, Format: "tex"})
	if err != nil {
		t.Fatalf("handleWorksheet() error = %v", err)
	}
	if ws.WorksheetID == "" || ws.Seed != 12 {
		t.Errorf("worksheet output = %+v", ws)
	}
	if n := strings.Count(ws.Problems, "$$\n"); n != 4 {
		t.Errorf("rendered %d problems, want 4:\n%s", n, ws.Problems)
	}

	answers, err := server.handleAnswers(ctx, AnswersInput{WorksheetID: ws.WorksheetID})
	if err != nil {
		t.Fatalf("handleAnswers() error = %v", err)
	}
	if !strings.HasPrefix(answers.Answers, `(1) \(`) {
		t.Errorf("answers = %q", answers.Answers)
	}
	if strings.Count(answers.Answers, "\n") != 4 {
		t.Errorf("answers lines = %d, want 4", strings.Count(answers.Answers, "\n"))
	}
}

func TestHandleWorksheet_Errors(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, err := server.handleWorksheet(ctx, WorksheetInput{Topic: "linear", Format: "docx"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := server.handleWorksheet(ctx, WorksheetInput{Topic: "linear", Count: 1000}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("oversized count error = %v", err)
	}
	if _, err := server.handleAnswers(ctx, AnswersInput{WorksheetID: "missing"}); !errors.Is(err, domain.ErrWorksheetNotFound) {
		t.Errorf("missing worksheet error = %v", err)
	}
}
