package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/cuongbtq/video-downloader/internal/domain"
)

// MemoryRegistry keeps jobs in process memory. Entries are never evicted.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		jobs: make(map[string]*domain.Job),
		now:  time.Now,
	}
}

// Create inserts a new job in pending state
func (r *MemoryRegistry) Create(id, url string) (domain.Job, error) {
	if id == "" {
		return domain.Job{}, fmt.Errorf("%w: empty job id", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return domain.Job{}, fmt.Errorf("%w: %s", domain.ErrJobExists, id)
	}

	now := r.now()
	job := &domain.Job{
		ID:        id,
		URL:       url,
		State:     domain.JobStatePending,
		Message:   "Waiting to start...",
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[id] = job

	return *job, nil
}

// Get returns a copy of the job with the given id
func (r *MemoryRegistry) Get(id string) (domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return domain.Job{}, domain.ErrJobNotFound
	}

	return *job, nil
}

// SetState moves a job to a new state and writes the update fields as one unit
func (r *MemoryRegistry) SetState(id string, state domain.JobState, update domain.JobUpdate) (domain.Job, error) {
	switch {
	case state == domain.JobStateCompleted && update.Filename == "":
		return domain.Job{}, fmt.Errorf("%w: completed job requires a filename", domain.ErrInvalidUpdate)
	case state == domain.JobStateFailed && update.Error == "":
		return domain.Job{}, fmt.Errorf("%w: failed job requires an error detail", domain.ErrInvalidUpdate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[id]
	if !exists {
		return domain.Job{}, domain.ErrJobNotFound
	}

	if !domain.CanTransition(job.State, state) {
		return domain.Job{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, job.State, state)
	}

	next := *job
	next.State = state
	next.Message = update.Message
	next.UpdatedAt = r.now()
	if update.Title != "" {
		next.Title = update.Title
	}

	next.ResultFilename = ""
	next.ErrorDetail = ""
	switch state {
	case domain.JobStateCompleted:
		next.ResultFilename = update.Filename
	case domain.JobStateFailed:
		next.ErrorDetail = update.Error
	}

	r.jobs[id] = &next

	return next, nil
}

// Len returns the number of registered jobs
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
