// Package events carries job lifecycle notifications out of the web service.
package events

import (
	"context"
	"time"

	"github.com/cuongbtq/video-downloader/internal/domain"
)

// ContentTypeJSON is the content type of published events
const ContentTypeJSON = "application/json"

// JobEvent is emitted after every registry write for a job
type JobEvent struct {
	JobID      string    `json:"job_id"`
	URL        string    `json:"url"`
	State      string    `json:"state"`
	Message    string    `json:"message"`
	Title      string    `json:"title,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FromJob builds an event from a job snapshot
func FromJob(job domain.Job) JobEvent {
	return JobEvent{
		JobID:      job.ID,
		URL:        job.URL,
		State:      job.State.String(),
		Message:    job.Message,
		Title:      job.Title,
		Filename:   job.ResultFilename,
		Error:      job.ErrorDetail,
		OccurredAt: job.UpdatedAt,
	}
}

// Publisher delivers job events. Failures never affect the job itself.
type Publisher interface {
	Publish(ctx context.Context, event JobEvent) error
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, JobEvent) error {
	return nil
}
