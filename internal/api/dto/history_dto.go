package dto

type ListEventsRequest struct {
	JobID    string `form:"job_id"`
	State    string `form:"state"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListEventsResponse struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type EventDTO struct {
	ID         int64  `json:"id"`
	JobID      string `json:"job_id"`
	URL        string `json:"url"`
	State      string `json:"state"`
	Message    string `json:"message"`
	Title      string `json:"title,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
	OccurredAt string `json:"occurred_at"`
	RecordedAt string `json:"recorded_at"`
}
