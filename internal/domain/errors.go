package domain

import "errors"

var (
	// ErrInvalidInput is returned when a submitted URL is empty or outside the allow-list
	ErrInvalidInput = errors.New("invalid input")

	// ErrJobNotFound is returned when no job exists for the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExists is returned when creating a job with an id that is already registered
	ErrJobExists = errors.New("job already exists")

	// ErrInvalidTransition is returned when a state change would move a job backwards or out of a terminal state
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrInvalidUpdate is returned when a terminal update is missing its filename or error detail
	ErrInvalidUpdate = errors.New("invalid job update")
)

// DownloadError wraps a failure reported by the download collaborator
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return e.Err.Error()
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewDownloadError creates a new download error for the given URL
func NewDownloadError(url string, err error) error {
	return &DownloadError{URL: url, Err: err}
}
