package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/cuongbtq/video-downloader/internal/events"
	"github.com/cuongbtq/video-downloader/internal/history/model"
	"github.com/cuongbtq/video-downloader/internal/history/storage"
)

// processEvent validates one event and stores it
func (c *Consumer) processEvent(ctx context.Context, msg *eventMessage) error {
	record, err := toRecord(msg.Event)
	if err != nil {
		return err
	}

	if err := c.store.InsertEvent(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateEvent) {
			c.logger.Debug("Event already recorded, skipping",
				slog.String("job_id", record.JobID),
				slog.String("state", record.State),
			)
			return nil
		}
		return NewRetryableError(err)
	}

	c.logger.Info("Job event recorded",
		slog.String("job_id", record.JobID),
		slog.String("state", record.State),
		slog.Int64("id", record.ID),
	)

	return nil
}

// toRecord converts an event into a history row
func toRecord(event events.JobEvent) (*model.EventRecord, error) {
	switch domain.JobState(event.State) {
	case domain.JobStatePending, domain.JobStateRunning:
	case domain.JobStateCompleted:
		if event.Filename == "" {
			return nil, fmt.Errorf("%w: completed event without filename", ErrInvalidEvent)
		}
	case domain.JobStateFailed:
		if event.Error == "" {
			return nil, fmt.Errorf("%w: failed event without error", ErrInvalidEvent)
		}
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidEvent, event.State)
	}

	if event.OccurredAt.IsZero() {
		return nil, fmt.Errorf("%w: missing occurred_at", ErrInvalidEvent)
	}

	return &model.EventRecord{
		JobID:      event.JobID,
		URL:        event.URL,
		State:      event.State,
		Message:    event.Message,
		Title:      event.Title,
		Filename:   event.Filename,
		Error:      event.Error,
		OccurredAt: event.OccurredAt,
	}, nil
}
