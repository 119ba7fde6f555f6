package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/cuongbtq/video-downloader/internal/events"
)

const publishTimeout = 5 * time.Second

// processJob drives one job to a terminal state. Nothing escapes this function:
// errors and panics both end as a failed job.
func (l *Launcher) processJob(ctx context.Context, jobID, url string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Job worker panicked",
				slog.String("job_id", jobID),
				slog.Any("panic", r),
			)
			l.fail(jobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if _, err := l.transition(jobID, domain.JobStateRunning, domain.JobUpdate{
		Message: "Starting download...",
	}); err != nil {
		return
	}

	start := time.Now()
	result, err := l.downloader.Download(ctx, url, l.outputDir)
	if err == nil && (result == nil || result.Filename == "") {
		err = errors.New("downloader returned no file")
	}

	if err != nil {
		dlErr := domain.NewDownloadError(url, err)
		l.logger.Error("Download failed",
			slog.String("job_id", jobID),
			slog.String("url", url),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", dlErr.Error()),
		)
		l.fail(jobID, dlErr.Error())
		return
	}

	if _, err := l.transition(jobID, domain.JobStateCompleted, domain.JobUpdate{
		Message:  fmt.Sprintf("Download complete: %s", result.Title),
		Title:    result.Title,
		Filename: result.Filename,
	}); err != nil {
		l.fail(jobID, fmt.Sprintf("failed to record result: %v", err))
		return
	}

	l.logger.Info("Job completed successfully",
		slog.String("job_id", jobID),
		slog.String("filename", result.Filename),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// fail moves the job to the failed state with the given detail
func (l *Launcher) fail(jobID, detail string) {
	_, _ = l.transition(jobID, domain.JobStateFailed, domain.JobUpdate{
		Message: fmt.Sprintf("Error: %s", detail),
		Error:   detail,
	})
}

// transition writes a state change and publishes the resulting snapshot
func (l *Launcher) transition(jobID string, state domain.JobState, update domain.JobUpdate) (domain.Job, error) {
	job, err := l.registry.SetState(jobID, state, update)
	if err != nil {
		l.logger.Error("Failed to update job state",
			slog.String("job_id", jobID),
			slog.String("state", state.String()),
			slog.String("error", err.Error()),
		)
		return domain.Job{}, err
	}

	l.logger.Info("Job state updated",
		slog.String("job_id", jobID),
		slog.String("state", state.String()),
	)

	l.publish(job)
	return job, nil
}

// publish sends a lifecycle event; failures are logged only
func (l *Launcher) publish(job domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := l.publisher.Publish(ctx, events.FromJob(job)); err != nil {
		l.logger.Warn("Failed to publish job event",
			slog.String("job_id", job.ID),
			slog.String("state", job.State.String()),
			slog.String("error", err.Error()),
		)
	}
}
