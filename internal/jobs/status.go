package jobs

import "github.com/cuongbtq/video-downloader/internal/domain"

// WireStatus is the coarse status reported to polling clients
type WireStatus string

// Wire status constants
const (
	StatusDownloading WireStatus = "downloading"
	StatusCompleted   WireStatus = "completed"
	StatusError       WireStatus = "error"
	StatusNotFound    WireStatus = "not_found"
)

// NotFoundMessage is reported for ids the registry does not know
const NotFoundMessage = "Download not found"

// IsTerminal reports whether a poll loop should stop on this status
func (s WireStatus) IsTerminal() bool {
	return s != StatusDownloading
}

// Status is the client-facing view of a job
type Status struct {
	State    WireStatus
	Message  string
	Filename string // set only for completed jobs
}

// WireStatusOf maps an internal job state to its wire status
func WireStatusOf(state domain.JobState) WireStatus {
	switch state {
	case domain.JobStatePending, domain.JobStateRunning:
		return StatusDownloading
	case domain.JobStateCompleted:
		return StatusCompleted
	case domain.JobStateFailed:
		return StatusError
	default:
		return StatusNotFound
	}
}

// StatusOf builds the client-facing status for a job snapshot
func StatusOf(job domain.Job) Status {
	status := Status{
		State:   WireStatusOf(job.State),
		Message: job.Message,
	}
	if job.State == domain.JobStateCompleted {
		status.Filename = job.ResultFilename
	}
	return status
}
