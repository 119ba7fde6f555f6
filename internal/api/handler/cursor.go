package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/video-downloader/internal/history/storage"
)

// DecodeEventCursor parses a page cursor; an empty string means the first page
func DecodeEventCursor(cursorStr string) (*storage.EventCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var occurredAt, id int64
	if _, err := fmt.Sscanf(parts[0], "%d", &occurredAt); err != nil {
		return nil, fmt.Errorf("invalid occurred_at in cursor: %w", err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &id); err != nil {
		return nil, fmt.Errorf("invalid id in cursor: %w", err)
	}

	return &storage.EventCursor{
		OccurredAt: time.Unix(0, occurredAt).UTC(),
		ID:         id,
	}, nil
}

// EncodeEventCursor builds the cursor that continues after the given position
func EncodeEventCursor(cursor *storage.EventCursor) string {
	cs := fmt.Sprintf("%d|%d", cursor.OccurredAt.UnixNano(), cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(cs))
}
