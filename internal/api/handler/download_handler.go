package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/cuongbtq/video-downloader/internal/jobs"
	"github.com/cuongbtq/video-downloader/internal/worker"
	"github.com/gin-gonic/gin"
)

// Index handles GET /
func (h *DownloadHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   "Home",
		"Flashes": popFlashes(c),
	})
}

// Submit handles POST /download
// Starts a download from the form and renders the wait page
func (h *DownloadHandler) Submit(c *gin.Context) {
	rawURL := c.PostForm("url")

	h.logger.Info("Submit called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	if strings.TrimSpace(rawURL) == "" {
		redirectWithFlash(c, "/", FlashError, "Please provide a video URL.")
		return
	}

	jobID, err := h.jobs.Submit(c.Request.Context(), rawURL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			redirectWithFlash(c, "/", FlashError, "Please provide a valid YouTube URL.")
			return
		}
		h.logger.Error("Failed to submit download", slog.String("error", err.Error()))
		redirectWithFlash(c, "/", FlashError, "Could not start the download. Please try again.")
		return
	}

	c.HTML(http.StatusOK, "wait.html", gin.H{
		"Title":          "Preparing",
		"JobID":          jobID,
		"InitialDelayMs": h.poll.InitialDelay.Milliseconds(),
		"IntervalMs":     h.poll.Interval.Milliseconds(),
		"RetryBackoffMs": h.poll.RetryBackoff.Milliseconds(),
		"MaxAttempts":    h.poll.MaxAttempts,
	})
}

// CheckDownload handles GET /check_download/:job_id
// Always answers 200; unknown ids are reported as not_found in the body
func (h *DownloadHandler) CheckDownload(c *gin.Context) {
	status, err := h.jobs.Poll(c.Param("job_id"))
	if err != nil && !errors.Is(err, domain.ErrJobNotFound) {
		h.logger.Error("Failed to poll job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get download status",
		})
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(status))
}

// Ready handles GET /ready/:job_id
func (h *DownloadHandler) Ready(c *gin.Context) {
	jobID := c.Param("job_id")

	status, err := h.jobs.Poll(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			redirectWithFlash(c, "/", FlashError, "Download not found.")
			return
		}
		h.logger.Error("Failed to poll job", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, "/")
		return
	}

	if status.State != jobs.StatusCompleted {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "ready.html", gin.H{
		"Title":          "Video ready",
		"Filename":       status.Filename,
		"DownloadURL":    downloadURL(status.Filename),
		"HandoffDelayMs": h.poll.HandoffDelay.Milliseconds(),
	})
}

// Downloading handles GET /downloading
func (h *DownloadHandler) Downloading(c *gin.Context) {
	c.HTML(http.StatusOK, "downloading.html", gin.H{
		"Title":               "Saving video",
		"SuccessDelaySeconds": int(h.poll.SuccessDelay.Seconds()),
	})
}

// Success handles GET /success
func (h *DownloadHandler) Success(c *gin.Context) {
	c.HTML(http.StatusOK, "success.html", gin.H{
		"Title": "Done",
	})
}

// CreateDownload handles POST /api/v1/downloads
func (h *DownloadHandler) CreateDownload(c *gin.Context) {
	h.logger.Info("CreateDownload called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.CreateDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	jobID, err := h.jobs.Submit(c.Request.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, worker.ErrLauncherStopped):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Service is shutting down",
			})
		default:
			h.logger.Error("Failed to submit download", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to start download",
			})
		}
		return
	}

	status, _ := h.jobs.Poll(jobID)
	c.JSON(http.StatusAccepted, dto.CreateDownloadResponse{
		JobID:   jobID,
		Status:  string(status.State),
		Message: status.Message,
	})
}

// GetDownload handles GET /api/v1/downloads/:job_id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	status, err := h.jobs.Poll(c.Param("job_id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, toStatusResponse(status))
			return
		}
		h.logger.Error("Failed to poll job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get download status",
		})
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(status))
}

func toStatusResponse(status jobs.Status) dto.StatusResponse {
	return dto.StatusResponse{
		Status:   string(status.State),
		Message:  status.Message,
		Filename: status.Filename,
	}
}

func downloadURL(filename string) string {
	return "/download_file/" + url.PathEscape(filename)
}
