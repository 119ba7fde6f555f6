package model

import "time"

// EventRecord is one row of the job_events table
type EventRecord struct {
	ID         int64     `db:"id"`
	JobID      string    `db:"job_id"`
	URL        string    `db:"url"`
	State      string    `db:"state"`
	Message    string    `db:"message"`
	Title      string    `db:"title"`
	Filename   string    `db:"filename"`
	Error      string    `db:"error_detail"`
	OccurredAt time.Time `db:"occurred_at"`
	RecordedAt time.Time `db:"recorded_at"`
}
