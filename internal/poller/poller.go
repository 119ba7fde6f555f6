// Package poller implements the client side of the download polling protocol.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
)

// Default loop timings
const (
	DefaultInitialDelay = 2 * time.Second
	DefaultInterval     = time.Second
	DefaultRetryBackoff = 2 * time.Second
	DefaultMaxAttempts  = 300
)

var (
	// ErrTimeout is returned when the job is still running after MaxAttempts polls
	ErrTimeout = errors.New("timed out waiting for download")

	// ErrJobFailed is returned when the server reports the job as failed
	ErrJobFailed = errors.New("download failed")

	// ErrJobNotFound is returned when the server does not know the job id
	ErrJobNotFound = errors.New("download not found")
)

// StatusFetcher performs one status request for a job
type StatusFetcher interface {
	FetchStatus(ctx context.Context, jobID string) (*dto.StatusResponse, error)
}

// Config holds poll loop timings
type Config struct {
	Logger       *slog.Logger
	InitialDelay time.Duration
	Interval     time.Duration
	RetryBackoff time.Duration
	MaxAttempts  int
}

// Poller waits for a job to reach a terminal status
type Poller struct {
	logger       *slog.Logger
	fetcher      StatusFetcher
	initialDelay time.Duration
	interval     time.Duration
	retryBackoff time.Duration
	maxAttempts  int
	sleep        func(ctx context.Context, d time.Duration) error
}

// New creates a poller; zero config values fall back to the defaults
func New(fetcher StatusFetcher, cfg Config) *Poller {
	p := &Poller{
		logger:       cfg.Logger,
		fetcher:      fetcher,
		initialDelay: cfg.InitialDelay,
		interval:     cfg.Interval,
		retryBackoff: cfg.RetryBackoff,
		maxAttempts:  cfg.MaxAttempts,
		sleep:        sleepContext,
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.initialDelay <= 0 {
		p.initialDelay = DefaultInitialDelay
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.retryBackoff <= 0 {
		p.retryBackoff = DefaultRetryBackoff
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}

	return p
}

// Wait polls until the job completes, fails, disappears or the attempt budget runs out.
// Transport errors are retried after the backoff and count as attempts.
func (p *Poller) Wait(ctx context.Context, jobID string) (*dto.StatusResponse, error) {
	if err := p.sleep(ctx, p.initialDelay); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.fetcher.FetchStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			p.logger.Warn("Status request failed, retrying",
				slog.String("job_id", jobID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			if attempt < p.maxAttempts {
				if err := p.sleep(ctx, p.retryBackoff); err != nil {
					return nil, err
				}
			}
			continue
		}

		switch status.Status {
		case dto.StatusCompleted:
			return status, nil
		case dto.StatusError:
			return status, fmt.Errorf("%w: %s", ErrJobFailed, status.Message)
		case dto.StatusNotFound:
			return status, ErrJobNotFound
		}

		p.logger.Debug("Download in progress",
			slog.String("job_id", jobID),
			slog.Int("attempt", attempt),
			slog.String("message", status.Message),
		)

		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, p.interval); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: %d attempts", ErrTimeout, p.maxAttempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
