// Package jobs implements the submit and poll operations of the download protocol.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/cuongbtq/video-downloader/internal/registry"
	"github.com/google/uuid"
)

// Launcher starts the background worker of a registered job
type Launcher interface {
	Launch(jobID, url string) error
}

// LaunchError reports a job that was registered but whose worker could not start.
// The job is left in the failed state.
type LaunchError struct {
	JobID string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start download %s: %v", e.JobID, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Config holds service dependencies
type Config struct {
	Logger       *slog.Logger
	Registry     registry.Registry
	Launcher     Launcher
	AllowedHosts []string
}

// Service validates submissions, registers jobs and answers status polls
type Service struct {
	logger    *slog.Logger
	registry  registry.Registry
	launcher  Launcher
	allowList *AllowList
	newID     func() string
}

// NewService creates a new job service
func NewService(cfg *Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		logger:    logger,
		registry:  cfg.Registry,
		launcher:  cfg.Launcher,
		allowList: NewAllowList(cfg.AllowedHosts),
		newID:     uuid.NewString,
	}
}

// Submit registers a download for rawURL and starts its worker. It returns the
// job id without waiting for the download.
func (s *Service) Submit(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, err := s.allowList.Normalize(rawURL)
	if err != nil {
		s.logger.Warn("Rejected download submission",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	id := s.newID()
	if _, err := s.registry.Create(id, url); err != nil {
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	if err := s.launcher.Launch(id, url); err != nil {
		s.failUnlaunched(id, err)
		return "", &LaunchError{JobID: id, Err: err}
	}

	s.logger.Info("Download submitted",
		slog.String("job_id", id),
		slog.String("url", url),
	)

	return id, nil
}

// failUnlaunched makes sure a job whose worker never started does not stay pending
func (s *Service) failUnlaunched(id string, launchErr error) {
	s.logger.Error("Failed to launch worker for registered job",
		slog.String("job_id", id),
		slog.String("error", launchErr.Error()),
	)

	job, err := s.registry.Get(id)
	if err != nil || job.State != domain.JobStatePending {
		return
	}

	const detail = "service unavailable"
	if _, err := s.registry.SetState(id, domain.JobStateFailed, domain.JobUpdate{
		Message: "Error: " + detail,
		Error:   detail,
	}); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		s.logger.Error("Failed to mark job failed",
			slog.String("job_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// Poll returns the current status of a job. It never changes job state.
func (s *Service) Poll(jobID string) (Status, error) {
	job, err := s.registry.Get(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return Status{State: StatusNotFound, Message: NotFoundMessage}, err
		}
		return Status{}, fmt.Errorf("failed to get job: %w", err)
	}

	return StatusOf(job), nil
}
