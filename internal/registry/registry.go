// Package registry holds the process-wide mapping from job id to job state.
package registry

import "github.com/cuongbtq/video-downloader/internal/domain"

// Reader is the read-only view of the registry handed to request handlers
type Reader interface {
	Get(id string) (domain.Job, error)
}

// Registry stores download jobs. Only the worker that owns a job calls SetState.
type Registry interface {
	Reader
	Create(id, url string) (domain.Job, error)
	SetState(id string, state domain.JobState, update domain.JobUpdate) (domain.Job, error)
}
