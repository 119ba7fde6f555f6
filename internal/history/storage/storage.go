package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/video-downloader/internal/history/model"
	"github.com/jmoiron/sqlx"
)

// ErrDuplicateEvent is returned when the job already has a record for the event state
var ErrDuplicateEvent = errors.New("event already recorded")

// Storage handles the job_events table
type Storage struct {
	db *sqlx.DB
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// InsertEvent stores an event and fills its id and recorded_at.
// A job records each state at most once, so redelivered events are reported as ErrDuplicateEvent.
func (s *Storage) InsertEvent(ctx context.Context, event *model.EventRecord) error {
	query := `
		INSERT INTO job_events (
			job_id, url, state, message,
			title, filename, error_detail, occurred_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
		ON CONFLICT (job_id, state) DO NOTHING
		RETURNING id, recorded_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		event.JobID,
		event.URL,
		event.State,
		event.Message,
		event.Title,
		event.Filename,
		event.Error,
		event.OccurredAt,
	).Scan(&event.ID, &event.RecordedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to insert job event: %w", err)
	}

	return nil
}

type EventFilter struct {
	JobID    string
	State    string
	PageSize int
	Cursor   *EventCursor
}

// EventCursor points at the last record of the previous page
type EventCursor struct {
	OccurredAt time.Time
	ID         int64
}

// ListEvents returns up to PageSize+1 events, newest first. The extra row tells
// the caller whether another page exists.
func (s *Storage) ListEvents(ctx context.Context, filter EventFilter) ([]model.EventRecord, error) {
	query := `
        SELECT
            id, job_id, url, state, message,
            title, filename, error_detail, occurred_at, recorded_at
        FROM job_events
        WHERE 1=1
    `
	args := []interface{}{}
	argIdx := 1

	if filter.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argIdx)
		args = append(args, filter.JobID)
		argIdx++
	}

	if filter.State != "" {
		query += fmt.Sprintf(" AND state = $%d", argIdx)
		args = append(args, filter.State)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (occurred_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.OccurredAt, filter.Cursor.ID)
		argIdx += 2
	}

	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var events []model.EventRecord
	if err := s.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list job events: %w", err)
	}

	return events, nil
}
