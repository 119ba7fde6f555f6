package dto

// Wire status values reported by the status endpoints
const (
	StatusDownloading = "downloading"
	StatusCompleted   = "completed"
	StatusError       = "error"
	StatusNotFound    = "not_found"
)

type CreateDownloadRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

type CreateDownloadResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the body of GET /check_download/:job_id
type StatusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

type ListVideosResponse struct {
	Videos []VideoDTO `json:"videos"`
}

type VideoDTO struct {
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}
