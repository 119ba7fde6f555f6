package domain

import "time"

// JobState is the lifecycle state of a download job
type JobState string

// Job state constants
const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions can leave this state
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// CanTransition reports whether a job may move from one state to another.
// Transitions only go forward and never leave a terminal state.
func CanTransition(from, to JobState) bool {
	switch from {
	case JobStatePending:
		return to == JobStateRunning || to == JobStateFailed
	case JobStateRunning:
		return to == JobStateCompleted || to == JobStateFailed
	default:
		return false
	}
}

// Job represents one user-initiated download tracked from submission to its terminal outcome
type Job struct {
	ID             string
	URL            string
	State          JobState
	Message        string
	Title          string
	ResultFilename string // set only when State is completed
	ErrorDetail    string // set only when State is failed
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobUpdate carries the fields written together with a state transition
type JobUpdate struct {
	Message  string
	Title    string
	Filename string
	Error    string
}
