package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/video-downloader/internal/config"
	"github.com/cuongbtq/video-downloader/internal/history/model"
	"github.com/cuongbtq/video-downloader/internal/history/storage"
	"github.com/cuongbtq/video-downloader/internal/jobs"
)

// JobService submits downloads and reports their status
type JobService interface {
	Submit(ctx context.Context, rawURL string) (string, error)
	Poll(jobID string) (jobs.Status, error)
}

// VideoLibrary gives access to finished downloads
type VideoLibrary interface {
	List() ([]string, error)
	Resolve(name string) (string, error)
	Delete(name string) (string, error)
}

// EventLister reads recorded job events
type EventLister interface {
	ListEvents(ctx context.Context, filter storage.EventFilter) ([]model.EventRecord, error)
}

// HealthChecker reports whether a backing service is reachable
type HealthChecker func(ctx context.Context) error

// Dependencies holds all dependencies needed by the web service handlers
type Dependencies struct {
	Logger      *slog.Logger
	ServiceName string
	Jobs        JobService
	Library     VideoLibrary
	Poll        config.PollConfig
}

// HistoryDependencies holds all dependencies needed by the history service handlers
type HistoryDependencies struct {
	Logger      *slog.Logger
	ServiceName string
	Events      EventLister
	HealthCheck HealthChecker
}

// DownloadHandler handles download submission and status requests
type DownloadHandler struct {
	logger *slog.Logger
	jobs   JobService
	poll   config.PollConfig
}

// NewDownloadHandler creates a new DownloadHandler instance
func NewDownloadHandler(deps *Dependencies) *DownloadHandler {
	return &DownloadHandler{
		logger: deps.Logger,
		jobs:   deps.Jobs,
		poll:   deps.Poll,
	}
}

// LibraryHandler handles requests for downloaded files
type LibraryHandler struct {
	logger  *slog.Logger
	library VideoLibrary
}

// NewLibraryHandler creates a new LibraryHandler instance
func NewLibraryHandler(deps *Dependencies) *LibraryHandler {
	return &LibraryHandler{
		logger:  deps.Logger,
		library: deps.Library,
	}
}

// HistoryHandler handles job history queries
type HistoryHandler struct {
	logger *slog.Logger
	events EventLister
}

// NewHistoryHandler creates a new HistoryHandler instance
func NewHistoryHandler(deps *HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{
		logger: deps.Logger,
		events: deps.Events,
	}
}
