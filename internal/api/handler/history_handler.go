package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
	"github.com/cuongbtq/video-downloader/internal/history/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListEvents handles GET /api/v1/events
// Lists recorded job events, newest first, with cursor pagination
func (h *HistoryHandler) ListEvents(c *gin.Context) {
	h.logger.Info("ListEvents called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
	)

	var req dto.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.JobID != "" {
		if _, err := uuid.Parse(req.JobID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "job_id must be a valid UUID",
			})
			return
		}
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeEventCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	records, err := h.events.ListEvents(c.Request.Context(), storage.EventFilter{
		JobID:    req.JobID,
		State:    req.State,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list events", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list events",
		})
		return
	}

	hasMore := len(records) > req.PageSize
	if hasMore {
		records = records[:req.PageSize]
	}

	events := make([]dto.EventDTO, len(records))
	for i, r := range records {
		events[i] = dto.EventDTO{
			ID:         r.ID,
			JobID:      r.JobID,
			URL:        r.URL,
			State:      r.State,
			Message:    r.Message,
			Title:      r.Title,
			Filename:   r.Filename,
			Error:      r.Error,
			OccurredAt: r.OccurredAt.Format(time.RFC3339Nano),
			RecordedAt: r.RecordedAt.Format(time.RFC3339Nano),
		}
	}

	var nextCursor string
	if hasMore {
		last := records[len(records)-1]
		nextCursor = EncodeEventCursor(&storage.EventCursor{
			OccurredAt: last.OccurredAt,
			ID:         last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListEventsResponse{
		Events:     events,
		NextCursor: nextCursor,
	})
}
