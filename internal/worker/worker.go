// Package worker runs one supervised goroutine per download job and drives every
// launched job to a terminal state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cuongbtq/video-downloader/internal/downloader"
	"github.com/cuongbtq/video-downloader/internal/events"
	"github.com/cuongbtq/video-downloader/internal/registry"
)

var (
	// ErrAlreadyLaunched is returned when a worker already exists for the job id
	ErrAlreadyLaunched = errors.New("worker already launched for job")

	// ErrLauncherStopped is returned when launching after Stop was called
	ErrLauncherStopped = errors.New("launcher stopped")
)

// Config holds launcher configuration
type Config struct {
	Logger     *slog.Logger
	Registry   registry.Registry
	Downloader downloader.Downloader
	Publisher  events.Publisher
	OutputDir  string
	// MaxDownloads caps simultaneous downloads; zero or less means no limit
	MaxDownloads int
}

// Launcher starts background download workers
type Launcher struct {
	logger     *slog.Logger
	registry   registry.Registry
	downloader downloader.Downloader
	publisher  events.Publisher
	outputDir  string

	// nil when downloads are unlimited
	slots    chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	launched map[string]struct{}
	stopped  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewLauncher creates a new launcher instance
func NewLauncher(cfg *Config) *Launcher {
	var slots chan struct{}
	if cfg.MaxDownloads > 0 {
		slots = make(chan struct{}, cfg.MaxDownloads)
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Workers are detached from request lifetimes; only Stop cancels them.
	ctx, cancel := context.WithCancel(context.Background())

	return &Launcher{
		logger:     logger,
		registry:   cfg.Registry,
		downloader: cfg.Downloader,
		publisher:  publisher,
		outputDir:  cfg.OutputDir,
		slots:      slots,
		launched:   make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Launch starts the worker for a registered job and returns immediately
func (l *Launcher) Launch(jobID, url string) error {
	job, err := l.registry.Get(jobID)
	if err != nil {
		return fmt.Errorf("failed to launch worker: %w", err)
	}

	l.mu.Lock()
	if _, exists := l.launched[jobID]; exists {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyLaunched, jobID)
	}
	l.launched[jobID] = struct{}{}

	if l.stopped {
		l.mu.Unlock()
		l.fail(jobID, "service shutting down")
		return ErrLauncherStopped
	}

	l.wg.Add(1)
	l.mu.Unlock()

	go l.run(job, url)

	l.logger.Info("Worker launched",
		slog.String("job_id", jobID),
		slog.String("url", url),
	)

	return nil
}

// Stop stops accepting new jobs and waits for running workers. When ctx expires
// first, in-flight downloads are canceled and their jobs end up failed.
func (l *Launcher) Stop(ctx context.Context) error {
	l.logger.Info("Stopping launcher...")

	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.cancel()
		l.logger.Info("Launcher stopped")
		return nil
	case <-ctx.Done():
		l.cancel()
		l.logger.Warn("Launcher stop deadline exceeded, canceling running downloads")
		return ctx.Err()
	}
}
