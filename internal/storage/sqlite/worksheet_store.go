package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

const worksheetColumns = `id, topic, mode, subtype, difficulty, seed, problems, fallbacks, created_at`

// WorksheetStore implements worksheet.Store on SQLite
type WorksheetStore struct {
	db *DB
}

// NewWorksheetStore creates a store over a migrated database
func NewWorksheetStore(db *DB) *WorksheetStore {
	return &WorksheetStore{db: db}
}

// Save inserts or replaces a worksheet
func (s *WorksheetStore) Save(ctx context.Context, ws *domain.Worksheet) error {
	problems, err := json.Marshal(ws.Problems)
	if err != nil {
		return fmt.Errorf("marshal problems: %w", err)
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO worksheets (`+worksheetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, mode=excluded.mode, subtype=excluded.subtype,
			difficulty=excluded.difficulty, seed=excluded.seed,
			problems=excluded.problems, fallbacks=excluded.fallbacks`,
		ws.ID, ws.Topic, ws.Mode, ws.Subtype, string(ws.Difficulty),
		ws.Seed, string(problems), ws.Fallbacks, ws.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert worksheet: %w", err)
	}
	return nil
}

// Get loads a worksheet by id
func (s *WorksheetStore) Get(ctx context.Context, id string) (*domain.Worksheet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+worksheetColumns+` FROM worksheets WHERE id = ?`, id)
	ws, err := scanWorksheet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorksheetNotFound
	}
	return ws, err
}

// List returns worksheets newest first
func (s *WorksheetStore) List(ctx context.Context, f worksheet.Filter) ([]*domain.Worksheet, error) {
	query := `SELECT ` + worksheetColumns + ` FROM worksheets`
	var args []any
	if f.Topic != "" {
		query += " WHERE topic = ?"
		args = append(args, f.Topic)
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer rows.Close()

	out := []*domain.Worksheet{}
	for rows.Next() {
		ws, err := scanWorksheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

// Delete removes a worksheet and its events
func (s *WorksheetStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM worksheets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete worksheet: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrWorksheetNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanWorksheet(row scanner) (*domain.Worksheet, error) {
	var ws domain.Worksheet
	var difficulty, problems string
	err := row.Scan(
		&ws.ID, &ws.Topic, &ws.Mode, &ws.Subtype, &difficulty,
		&ws.Seed, &problems, &ws.Fallbacks, &ws.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan worksheet: %w", err)
	}
	ws.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(problems), &ws.Problems); err != nil {
		return nil, fmt.Errorf("unmarshal problems: %w", err)
	}
	return &ws, nil
}
