// Package postgres stores worksheets in PostgreSQL for deployments that
// share one database between daemons and workers.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

//go:embed schema.sql
var schema string

// WorksheetStore implements worksheet.Store on a pgx pool. Calls pass
// through a circuit breaker so an unreachable database fails fast.
type WorksheetStore struct {
	pool    *pgxpool.Pool
	breaker circuitbreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

var _ worksheet.Store = (*WorksheetStore)(nil)

// Connect opens a pool and ensures the schema exists
func Connect(ctx context.Context, url string, logger *slog.Logger) (*WorksheetStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewWorksheetStore(pool, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWorksheetStore wraps an existing pool
func NewWorksheetStore(pool *pgxpool.Pool, logger *slog.Logger) *WorksheetStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &WorksheetStore{pool: pool, logger: logger}
	s.breaker = circuitbreaker.New[any](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			s.logger.Warn("postgres circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})
	return s
}

// EnsureSchema creates the worksheets table if missing
func (s *WorksheetStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *WorksheetStore) Close() {
	s.pool.Close()
}

func (s *WorksheetStore) exec(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := s.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, op(ctx)
	})
	return err
}

func (s *WorksheetStore) Save(ctx context.Context, ws *domain.Worksheet) error {
	id, err := uuid.Parse(ws.ID)
	if err != nil {
		return fmt.Errorf("%w: worksheet id %q", domain.ErrInvalidInput, ws.ID)
	}
	problems, err := json.Marshal(ws.Problems)
	if err != nil {
		return fmt.Errorf("marshal problems: %w", err)
	}
	fallbacks, err := fallbackIndexes(ws.Problems)
	if err != nil {
		return err
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO worksheets (id, topic, mode, subtype, difficulty, seed, problems, fallback_indexes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			topic = EXCLUDED.topic, mode = EXCLUDED.mode, subtype = EXCLUDED.subtype,
			difficulty = EXCLUDED.difficulty, seed = EXCLUDED.seed,
			problems = EXCLUDED.problems, fallback_indexes = EXCLUDED.fallback_indexes
	`
	return s.exec(ctx, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, query,
			id, ws.Topic, ws.Mode, ws.Subtype, string(ws.Difficulty), ws.Seed,
			problems, fallbacks, ws.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert worksheet: %w", err)
		}
		return nil
	})
}

func (s *WorksheetStore) Get(ctx context.Context, id string) (*domain.Worksheet, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrWorksheetNotFound
	}

	query := `
		SELECT id, topic, mode, subtype, difficulty, seed, problems, fallback_indexes, created_at
		FROM worksheets WHERE id = $1
	`
	var ws *domain.Worksheet
	err = s.exec(ctx, func(ctx context.Context) error {
		var err error
		ws, err = scanWorksheet(s.pool.QueryRow(ctx, query, uid))
		if errors.Is(err, pgx.ErrNoRows) {
			// a miss is not a database failure
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domain.ErrWorksheetNotFound
	}
	return ws, nil
}

func (s *WorksheetStore) List(ctx context.Context, f worksheet.Filter) ([]*domain.Worksheet, error) {
	query := `
		SELECT id, topic, mode, subtype, difficulty, seed, problems, fallback_indexes, created_at
		FROM worksheets
		WHERE ($1 = '' OR topic = $1)
		ORDER BY created_at DESC
		LIMIT NULLIF($2, 0)
	`
	out := []*domain.Worksheet{}
	err := s.exec(ctx, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, query, f.Topic, f.Limit)
		if err != nil {
			return fmt.Errorf("list worksheets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			ws, err := scanWorksheet(rows)
			if err != nil {
				return err
			}
			out = append(out, ws)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *WorksheetStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrWorksheetNotFound
	}

	var deleted int64
	err = s.exec(ctx, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, "DELETE FROM worksheets WHERE id = $1", uid)
		if err != nil {
			return fmt.Errorf("delete worksheet: %w", err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrWorksheetNotFound
	}
	return nil
}

func scanWorksheet(row pgx.Row) (*domain.Worksheet, error) {
	var ws domain.Worksheet
	var id uuid.UUID
	var difficulty string
	var problems []byte
	var fallbacks pqtype.NullRawMessage

	err := row.Scan(&id, &ws.Topic, &ws.Mode, &ws.Subtype, &difficulty,
		&ws.Seed, &problems, &fallbacks, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan worksheet: %w", err)
	}

	ws.ID = id.String()
	ws.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal(problems, &ws.Problems); err != nil {
		return nil, fmt.Errorf("unmarshal problems: %w", err)
	}
	if fallbacks.Valid {
		var idx []int
		if err := json.Unmarshal(fallbacks.RawMessage, &idx); err != nil {
			return nil, fmt.Errorf("unmarshal fallback indexes: %w", err)
		}
		ws.Fallbacks = len(idx)
	}
	return &ws, nil
}

// fallbackIndexes lists placeholder slots, NULL for a complete worksheet
func fallbackIndexes(problems []domain.Problem) (pqtype.NullRawMessage, error) {
	var idx []int
	for i, p := range problems {
		if p.Fallback {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal fallback indexes: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}
