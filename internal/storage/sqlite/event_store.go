package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event is one recorded generation event. EventType is one of the
// domain.Event* constants.
type Event struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"`
	WorksheetID string    `json:"worksheet_id,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	Data        string    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventQuery filters Query. Zero fields match everything.
type EventQuery struct {
	EventType   string
	WorksheetID string
	Topic       string
	Since       time.Time
	Until       time.Time
}

// EventStore records generation events
type EventStore struct {
	db *DB
}

// NewEventStore creates an event store over a migrated database
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Record stores an event. An empty worksheetID is stored as NULL.
func (s *EventStore) Record(ctx context.Context, eventType, worksheetID, topic string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	var wsID sql.NullString
	if worksheetID != "" {
		wsID = sql.NullString{String: worksheetID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO generation_events (event_type, worksheet_id, topic, data, created_at) VALUES (?, ?, ?, ?, ?)",
		eventType, wsID, topic, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first
func (s *EventStore) Query(ctx context.Context, q EventQuery) ([]Event, error) {
	query := "SELECT id, event_type, worksheet_id, topic, data, created_at FROM generation_events WHERE 1=1"
	var args []any

	if q.EventType != "" {
		query += " AND event_type = ?"
		args = append(args, q.EventType)
	}
	if q.WorksheetID != "" {
		query += " AND worksheet_id = ?"
		args = append(args, q.WorksheetID)
	}
	if q.Topic != "" {
		query += " AND topic = ?"
		args = append(args, q.Topic)
	}
	if !q.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, q.Since.UTC())
	}
	if !q.Until.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, q.Until.UTC())
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var wsID sql.NullString
		if err := rows.Scan(&e.ID, &e.EventType, &wsID, &e.Topic, &e.Data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.WorksheetID = wsID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByType returns event counts keyed by event type
func (s *EventStore) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT event_type, COUNT(*) FROM generation_events GROUP BY event_type")
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// Prune deletes events older than the given age
func (s *EventStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, "DELETE FROM generation_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}
