package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/video-downloader/internal/domain"
	"github.com/cuongbtq/video-downloader/internal/downloader"
	"github.com/cuongbtq/video-downloader/internal/registry"
	"github.com/cuongbtq/video-downloader/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downloadFunc func(ctx context.Context, url, outputDir string) (*downloader.Result, error)

func (f downloadFunc) Download(ctx context.Context, url, outputDir string) (*downloader.Result, error) {
	return f(ctx, url, outputDir)
}

type countingLauncher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (l *countingLauncher) Launch(jobID, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, jobID)
	return l.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, dl downloader.Downloader) (*Service, *registry.MemoryRegistry) {
	t.Helper()
	reg := registry.NewMemoryRegistry()
	launcher := worker.NewLauncher(&worker.Config{
		Logger:     testLogger(),
		Registry:   reg,
		Downloader: dl,
		OutputDir:  t.TempDir(),
	})
	t.Cleanup(func() {
		_ = launcher.Stop(context.Background())
	})

	svc := NewService(&Config{
		Logger:   testLogger(),
		Registry: reg,
		Launcher: launcher,
	})
	return svc, reg
}

func pollUntilTerminal(t *testing.T, svc *Service, id string) Status {
	t.Helper()
	var status Status
	require.Eventually(t, func() bool {
		var err error
		status, err = svc.Poll(id)
		return err == nil && status.State.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)
	return status
}

func TestService_SubmitAndComplete(t *testing.T) {
	dl := downloadFunc(func(_ context.Context, _ string, dir string) (*downloader.Result, error) {
		if err := os.WriteFile(filepath.Join(dir, "T.mp4"), []byte("video"), 0644); err != nil {
			return nil, err
		}
		return &downloader.Result{Title: "T", Filename: "T.mp4"}, nil
	})
	svc, _ := newTestService(t, dl)

	id, err := svc.Submit(context.Background(), "https://youtube.com/watch?v=x")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	status := pollUntilTerminal(t, svc, id)
	assert.Equal(t, StatusCompleted, status.State)
	assert.Equal(t, "T.mp4", status.Filename)
	assert.Equal(t, "Download complete: T", status.Message)
}

func TestService_SubmitReturnsBeforeDownloadFinishes(t *testing.T) {
	release := make(chan struct{})
	dl := downloadFunc(func(context.Context, string, string) (*downloader.Result, error) {
		<-release
		return &downloader.Result{Title: "T", Filename: "T.mp4"}, nil
	})
	svc, _ := newTestService(t, dl)
	defer close(release)

	id, err := svc.Submit(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)

	status, err := svc.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusDownloading, status.State)
	assert.Empty(t, status.Filename)
}

func TestService_SubmitFailedDownload(t *testing.T) {
	dl := downloadFunc(func(context.Context, string, string) (*downloader.Result, error) {
		return nil, fmt.Errorf("%w: video unavailable", downloader.ErrAllStrategiesFailed)
	})
	svc, _ := newTestService(t, dl)

	id, err := svc.Submit(context.Background(), "https://youtu.be/gone")
	require.NoError(t, err)

	status := pollUntilTerminal(t, svc, id)
	assert.Equal(t, StatusError, status.State)
	assert.Contains(t, status.Message, "video unavailable")
	assert.Empty(t, status.Filename)
}

func TestService_SubmitInvalidInput(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	launcher := &countingLauncher{}
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: launcher})

	for _, raw := range []string{"", "   ", "not a url", "https://example.com/video"} {
		_, err := svc.Submit(context.Background(), raw)
		require.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}

	assert.Zero(t, reg.Len(), "no job is created for rejected input")
	assert.Empty(t, launcher.calls)
}

func TestService_SubmitLaunchFailure(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	launcher := &countingLauncher{err: worker.ErrLauncherStopped}
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: launcher})

	id, err := svc.Submit(context.Background(), "https://youtu.be/x")
	require.ErrorIs(t, err, worker.ErrLauncherStopped)
	assert.Empty(t, id)

	// The registered job is named in the error and never left pending
	require.Len(t, launcher.calls, 1)
	assert.Contains(t, err.Error(), launcher.calls[0])

	job, err := reg.Get(launcher.calls[0])
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, job.State)
	assert.Equal(t, "Error: service unavailable", job.Message)

	status, err := svc.Poll(launcher.calls[0])
	require.NoError(t, err)
	assert.Equal(t, StatusError, status.State)
}

func TestService_SubmitLaunchFailureKeepsLauncherOutcome(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	launcher := worker.NewLauncher(&worker.Config{Logger: testLogger(), Registry: reg, OutputDir: t.TempDir()})
	require.NoError(t, launcher.Stop(context.Background()))
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: launcher})

	_, err := svc.Submit(context.Background(), "https://youtu.be/x")
	require.ErrorIs(t, err, worker.ErrLauncherStopped)

	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	require.Equal(t, 1, reg.Len())

	status, err := svc.Poll(launchErr.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, status.State)
	assert.Equal(t, "Error: service shutting down", status.Message)
}

func TestService_SubmitCanceledContext(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: &countingLauncher{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Submit(ctx, "https://youtu.be/x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, reg.Len())
}

func TestService_SubmitAssignsDistinctIDs(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	launcher := &countingLauncher{}
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: launcher})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, err := svc.Submit(context.Background(), "https://youtu.be/x")
		require.NoError(t, err)
		assert.False(t, seen[id], "id reused")
		seen[id] = true
	}
	assert.Len(t, launcher.calls, 10)
}

func TestService_PollUnknown(t *testing.T) {
	svc, _ := newTestService(t, downloadFunc(func(context.Context, string, string) (*downloader.Result, error) {
		return nil, errors.New("unused")
	}))

	status, err := svc.Poll("never-submitted")
	require.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.Equal(t, StatusNotFound, status.State)
	assert.Equal(t, NotFoundMessage, status.Message)
}

func TestService_PollIsIdempotent(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	svc := NewService(&Config{Logger: testLogger(), Registry: reg, Launcher: &countingLauncher{}})

	_, err := reg.Create("job-1", "https://youtu.be/x")
	require.NoError(t, err)
	_, err = reg.SetState("job-1", domain.JobStateRunning, domain.JobUpdate{Message: "Starting download..."})
	require.NoError(t, err)

	first, err := svc.Poll("job-1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Poll("job-1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	job, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateRunning, job.State)
}

func TestWireStatusOf(t *testing.T) {
	tests := []struct {
		state domain.JobState
		want  WireStatus
	}{
		{domain.JobStatePending, StatusDownloading},
		{domain.JobStateRunning, StatusDownloading},
		{domain.JobStateCompleted, StatusCompleted},
		{domain.JobStateFailed, StatusError},
		{domain.JobState("bogus"), StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, WireStatusOf(tt.state))
		})
	}

	assert.False(t, StatusDownloading.IsTerminal())
	assert.True(t, StatusNotFound.IsTerminal())
}
