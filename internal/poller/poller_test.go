package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status *dto.StatusResponse
	err    error
}

// scriptedFetcher replays steps and repeats the last one forever
type scriptedFetcher struct {
	steps []step
	calls int
}

func (f *scriptedFetcher) FetchStatus(context.Context, string) (*dto.StatusResponse, error) {
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	return f.steps[i].status, f.steps[i].err
}

func newTestPoller(fetcher StatusFetcher, maxAttempts int) (*Poller, *[]time.Duration) {
	p := New(fetcher, Config{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxAttempts: maxAttempts,
	})
	var slept []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return p, &slept
}

func downloading() step {
	return step{status: &dto.StatusResponse{Status: dto.StatusDownloading, Message: "Starting download..."}}
}

func TestNew_Defaults(t *testing.T) {
	p := New(&scriptedFetcher{}, Config{})
	assert.Equal(t, 2*time.Second, p.initialDelay)
	assert.Equal(t, time.Second, p.interval)
	assert.Equal(t, 2*time.Second, p.retryBackoff)
	assert.Equal(t, 300, p.maxAttempts)
}

func TestPoller_Completed(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{
		downloading(),
		downloading(),
		{status: &dto.StatusResponse{Status: dto.StatusCompleted, Message: "Download complete: T", Filename: "T.mp4"}},
	}}
	p, slept := newTestPoller(fetcher, 300)

	status, err := p.Wait(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "T.mp4", status.Filename)
	assert.Equal(t, 3, fetcher.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second, time.Second}, *slept)
}

func TestPoller_Failed(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{
		downloading(),
		{status: &dto.StatusResponse{Status: dto.StatusError, Message: "Error: video unavailable"}},
	}}
	p, _ := newTestPoller(fetcher, 300)

	status, err := p.Wait(context.Background(), "job-1")
	require.ErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, err.Error(), "video unavailable")
	assert.Equal(t, dto.StatusError, status.Status)
	assert.Equal(t, 2, fetcher.calls)
}

func TestPoller_NotFoundStops(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{
		{status: &dto.StatusResponse{Status: dto.StatusNotFound, Message: "Download not found"}},
	}}
	p, _ := newTestPoller(fetcher, 300)

	_, err := p.Wait(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, 1, fetcher.calls)
}

func TestPoller_TransportErrorIsRetried(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{status: &dto.StatusResponse{Status: dto.StatusCompleted, Filename: "T.mp4"}},
	}}
	p, slept := newTestPoller(fetcher, 300)

	status, err := p.Wait(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "T.mp4", status.Filename)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, *slept)
}

func TestPoller_TimeoutAfterMaxAttempts(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{downloading()}}
	p, _ := newTestPoller(fetcher, 300)

	_, err := p.Wait(context.Background(), "job-1")
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 300, fetcher.calls, "no fetch after the attempt budget")
}

func TestPoller_TransportErrorsNeverBecomeFailure(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{{err: errors.New("timeout")}}}
	p, _ := newTestPoller(fetcher, 5)

	_, err := p.Wait(context.Background(), "job-1")
	require.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrJobFailed)
	assert.Equal(t, 5, fetcher.calls)
}

func TestPoller_ContextCanceled(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []step{downloading()}}
	p, _ := newTestPoller(fetcher, 300)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx, "job-1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fetcher.calls)
}
