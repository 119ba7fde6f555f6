package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SubmitAndFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/downloads":
			var req dto.CreateDownloadRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"url is required"}`))
				return
			}
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(dto.CreateDownloadResponse{JobID: "job-1", Status: dto.StatusDownloading})
		case r.URL.Path == "/check_download/job-1":
			_ = json.NewEncoder(w).Encode(dto.StatusResponse{Status: dto.StatusCompleted, Filename: "T.mp4"})
		case r.URL.Path == "/download_file/My Video.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("video-bytes"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	ctx := context.Background()

	created, err := c.Submit(ctx, "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "job-1", created.JobID)

	_, err = c.Submit(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")

	status, err := c.FetchStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, dto.StatusCompleted, status.Status)

	_, err = c.FetchStatus(ctx, "other")
	require.Error(t, err)

	var buf bytes.Buffer
	n, err := c.DownloadFile(ctx, "My Video.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("video-bytes")), n)
	assert.Equal(t, "video-bytes", buf.String())
}

func TestClient_DownloadFileDoesNotFollowRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/videos", http.StatusFound)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := NewClient(srv.URL, nil).DownloadFile(context.Background(), "missing.mp4", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "302")
	assert.Zero(t, buf.Len())
}
