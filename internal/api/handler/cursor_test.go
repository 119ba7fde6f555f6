package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cuongbtq/video-downloader/internal/history/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCursor_RoundTrip(t *testing.T) {
	in := &storage.EventCursor{
		OccurredAt: time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC),
		ID:         42,
	}

	out, err := DecodeEventCursor(EncodeEventCursor(in))

	require.NoError(t, err)
	assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestDecodeEventCursor_Empty(t *testing.T) {
	cursor, err := DecodeEventCursor("")

	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeEventCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "!!!"},
		{name: "missing separator", cursor: base64.RawURLEncoding.EncodeToString([]byte("12345"))},
		{name: "bad timestamp", cursor: base64.RawURLEncoding.EncodeToString([]byte("abc|1"))},
		{name: "bad id", cursor: base64.RawURLEncoding.EncodeToString([]byte("12345|x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEventCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}
