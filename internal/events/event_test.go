package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	body        []byte
	contentType string
	err         error
}

func (f *fakeClient) PublishWithRetry(_ context.Context, body []byte, contentType string) error {
	f.body = body
	f.contentType = contentType
	return f.err
}

func TestFromJob(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := FromJob(domain.Job{
		ID:             "job-1",
		URL:            "https://youtu.be/abc",
		State:          domain.JobStateCompleted,
		Message:        "Download complete: T",
		Title:          "T",
		ResultFilename: "T.mp4",
		UpdatedAt:      updated,
	})

	assert.Equal(t, "job-1", event.JobID)
	assert.Equal(t, "completed", event.State)
	assert.Equal(t, "T.mp4", event.Filename)
	assert.Empty(t, event.Error)
	assert.Equal(t, updated, event.OccurredAt)
}

func TestRabbitPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := NewRabbitPublisher(client)

	err := p.Publish(context.Background(), JobEvent{JobID: "job-1", State: "failed", Error: "boom"})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, client.contentType)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(client.body, &decoded))
	assert.Equal(t, "job-1", decoded["job_id"])
	assert.Equal(t, "boom", decoded["error"])
	assert.NotContains(t, decoded, "filename")
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	cause := errors.New("channel closed")
	p := NewRabbitPublisher(&fakeClient{err: cause})

	err := p.Publish(context.Background(), JobEvent{JobID: "job-1"})
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to publish job event")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), JobEvent{}))
}
