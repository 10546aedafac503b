package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// Server wraps the MCP server with drill generation tools
type Server struct {
	mcpServer *server.Server
	drill     *drill.Service
	store     worksheet.Store
}

// Config contains configuration for the MCP server
type Config struct {
	Drill   *drill.Service
	Store   worksheet.Store
	Version string
}

// NewServer creates a new MCP server for mathdrill
func NewServer(cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Store == nil {
		cfg.Store = worksheet.NewMemoryStore()
	}
	s := &Server{
		drill: cfg.Drill,
		store: cfg.Store,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "mathdrill",
		Version: cfg.Version,
	}, server.WithInstructions(`
mathdrill generates randomized math drill problems with worked answers,
written in TeX.

Available tools:
- drill_topics: List topics and their modes
- drill_generate: Generate one problem and its answer
- drill_worksheet: Generate a worksheet and keep it for later
- drill_answers: Show the answers of a kept worksheet

Difficulty is one of easy, normal, hard. A seed reproduces a draw.
`))

	s.registerTools()
	return s
}

// registerTools registers all mathdrill MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("drill_topics").
		Description("List drill topics with their modes and tags.").
		Handler(s.handleTopics)

	s.mcpServer.Tool("drill_generate").
		Description("Generate a single problem with its answer.").
		Handler(s.handleGenerate)

	s.mcpServer.Tool("drill_worksheet").
		Description("Generate a worksheet of distinct problems. Answers are hidden until drill_answers.").
		Handler(s.handleWorksheet)

	s.mcpServer.Tool("drill_answers").
		Description("Show the answers of a worksheet returned by drill_worksheet.").
		Handler(s.handleAnswers)
}

// Input/Output types for tools

type TopicsInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"description=Only list topics with this tag"`
}

type TopicSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Modes       []string `json:"modes"`
	DefaultMode string   `json:"default_mode"`
}

type TopicsOutput struct {
	Topics []TopicSummary `json:"topics"`
}

type GenerateInput struct {
	Topic      string `json:"topic" jsonschema:"description=Topic ID from drill_topics"`
	Mode       string `json:"mode,omitempty" jsonschema:"description=Topic mode, defaults to the topic's default mode"`
	Subtype    string `json:"subtype,omitempty" jsonschema:"description=Topic subtype such as the quadratic root form"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"description=Difficulty,enum=easy,enum=normal,enum=hard"`
	Seed       int64  `json:"seed,omitempty" jsonschema:"description=Seed for a reproducible problem"`
}

type GenerateOutput struct {
	Problem  string `json:"problem"`
	Answer   string `json:"answer"`
	Mode     string `json:"mode"`
	Fallback bool   `json:"fallback,omitempty"`
}

type WorksheetInput struct {
	Topic      string `json:"topic" jsonschema:"description=Topic ID from drill_topics"`
	Mode       string `json:"mode,omitempty" jsonschema:"description=Topic mode"`
	Subtype    string `json:"subtype,omitempty" jsonschema:"description=Topic subtype"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"description=Difficulty,enum=easy,enum=normal,enum=hard"`
	Count      int    `json:"count,omitempty" jsonschema:"description=Number of problems"`
	Seed       int64  `json:"seed,omitempty" jsonschema:"description=Seed for a reproducible worksheet"`
	Format     string `json:"format,omitempty" jsonschema:"description=Output format,enum=text,enum=tex,enum=html,enum=json"`
}

type WorksheetOutput struct {
	WorksheetID string `json:"worksheet_id"`
	Seed        int64  `json:"seed"`
	Fallbacks   int    `json:"fallbacks,omitempty"`
	Problems    string `json:"problems"`
}

type AnswersInput struct {
	WorksheetID string `json:"worksheet_id" jsonschema:"description=Worksheet ID from drill_worksheet"`
	Format      string `json:"format,omitempty" jsonschema:"description=Output format,enum=text,enum=tex,enum=html,enum=json"`
}

type AnswersOutput struct {
	WorksheetID string `json:"worksheet_id"`
	Answers     string `json:"answers"`
}

// Tool handlers

func (s *Server) handleTopics(ctx context.Context, input TopicsInput) (TopicsOutput, error) {
	reg := s.drill.Catalog()
	topics := reg.ListTopics()
	if input.Tag != "" {
		topics = reg.ListByTag(input.Tag)
	}

	out := TopicsOutput{Topics: make([]TopicSummary, 0, len(topics))}
	for _, t := range topics {
		out.Topics = append(out.Topics, TopicSummary{
			ID:          t.ID,
			Title:       t.Title,
			Modes:       t.Modes,
			DefaultMode: t.DefaultMode,
		})
	}
	return out, nil
}

func (s *Server) handleGenerate(ctx context.Context, input GenerateInput) (GenerateOutput, error) {
	p, err := s.drill.Generate(ctx, drill.Request{
		Topic:      input.Topic,
		Mode:       input.Mode,
		Subtype:    input.Subtype,
		Difficulty: domain.Difficulty(input.Difficulty),
		Seed:       input.Seed,
	})
	if err != nil && !errors.Is(err, domain.ErrGenerationExhausted) {
		return GenerateOutput{}, fmt.Errorf("generate problem: %w", err)
	}

	return GenerateOutput{
		Problem:  markup.Inline(p.Display),
		Answer:   markup.Inline(p.Answer),
		Mode:     p.Mode,
		Fallback: p.Fallback,
	}, nil
}

func (s *Server) handleWorksheet(ctx context.Context, input WorksheetInput) (WorksheetOutput, error) {
	format, err := worksheet.ParseFormat(input.Format)
	if err != nil {
		return WorksheetOutput{}, err
	}

	ws, err := s.drill.Batch(ctx, drill.BatchRequest{
		Topic:      input.Topic,
		Mode:       input.Mode,
		Subtype:    input.Subtype,
		Difficulty: domain.Difficulty(input.Difficulty),
		Count:      input.Count,
		Seed:       input.Seed,
	})
	if err != nil {
		return WorksheetOutput{}, fmt.Errorf("generate worksheet: %w", err)
	}
	if err := s.store.Save(ctx, ws); err != nil {
		return WorksheetOutput{}, fmt.Errorf("save worksheet: %w", err)
	}

	var b strings.Builder
	if err := worksheet.Render(&b, ws, domain.ViewProblems, format); err != nil {
		return WorksheetOutput{}, fmt.Errorf("render worksheet: %w", err)
	}
	return WorksheetOutput{
		WorksheetID: ws.ID,
		Seed:        ws.Seed,
		Fallbacks:   ws.Fallbacks,
		Problems:    b.String(),
	}, nil
}

func (s *Server) handleAnswers(ctx context.Context, input AnswersInput) (AnswersOutput, error) {
	format, err := worksheet.ParseFormat(input.Format)
	if err != nil {
		return AnswersOutput{}, err
	}

	ws, err := s.store.Get(ctx, input.WorksheetID)
	if err != nil {
		return AnswersOutput{}, fmt.Errorf("worksheet not found: %w", err)
	}

	var b strings.Builder
	if err := worksheet.Render(&b, ws, domain.ViewAnswers, format); err != nil {
		return AnswersOutput{}, fmt.Errorf("render answers: %w", err)
	}
	return AnswersOutput{
		WorksheetID: ws.ID,
		Answers:     b.String(),
	}, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
