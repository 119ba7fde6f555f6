package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewYTDLP_Defaults(t *testing.T) {
	y := NewYTDLP(&Config{})

	assert.Equal(t, DefaultStrategies, y.strategies)
	assert.Equal(t, DefaultOutputTemplate, y.outputTemplate)
	assert.NotNil(t, y.logger)
	assert.NotNil(t, y.attempt)
}

func TestYTDLP_Download(t *testing.T) {
	tests := []struct {
		name       string
		failures   map[string]error
		wantFormat []string
		wantErr    error
		wantTitle  string
	}{
		{
			name:       "first strategy succeeds",
			wantFormat: []string{"bestvideo+bestaudio/best"},
			wantTitle:  "T",
		},
		{
			name: "falls back to best",
			failures: map[string]error{
				"bestvideo+bestaudio/best": errors.New("requested format is not available"),
			},
			wantFormat: []string{"bestvideo+bestaudio/best", "best"},
			wantTitle:  "T",
		},
		{
			name: "all strategies fail",
			failures: map[string]error{
				"bestvideo+bestaudio/best": errors.New("format missing"),
				"best":                     errors.New("format missing"),
				"worst":                    errors.New("video unavailable"),
			},
			wantFormat: []string{"bestvideo+bestaudio/best", "best", "worst"},
			wantErr:    ErrAllStrategiesFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := NewYTDLP(&Config{})
			var tried []string
			y.attempt = func(ctx context.Context, s Strategy, url, dir string) (*Result, error) {
				tried = append(tried, s.Format)
				if err := tt.failures[s.Format]; err != nil {
					return nil, err
				}
				return &Result{Title: "T", Filename: "T.mp4"}, nil
			}

			result, err := y.Download(context.Background(), "https://youtu.be/abc", t.TempDir())

			assert.Equal(t, tt.wantFormat, tried)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "video unavailable", "last strategy error is kept")
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, result.Title)
			assert.Equal(t, "T.mp4", result.Filename)
		})
	}
}

func TestYTDLP_DownloadCanceled(t *testing.T) {
	y := NewYTDLP(&Config{})
	calls := 0
	y.attempt = func(ctx context.Context, s Strategy, url, dir string) (*Result, error) {
		calls++
		return nil, errors.New("should not run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := y.Download(ctx, "https://youtu.be/abc", t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestYTDLP_DownloadCreatesOutputDir(t *testing.T) {
	y := NewYTDLP(&Config{})
	y.attempt = func(ctx context.Context, s Strategy, url, dir string) (*Result, error) {
		return &Result{Title: "T", Filename: "T.mp4"}, nil
	}

	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	_, err := y.Download(context.Background(), "https://youtu.be/abc", dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.webm"), []byte("x"), 0644))

	assert.Equal(t, "clip.mp4", resolveFilename(dir, "clip.webm", "mp4"), "merged container is preferred when the reported file is gone")
	assert.Equal(t, "song.webm", resolveFilename(dir, "song.webm", "mp4"), "existing file wins")
	assert.Equal(t, "other.webm", resolveFilename(dir, "other.webm", ""), "no merge format leaves the name alone")
	assert.Equal(t, "ghost.webm", resolveFilename(dir, "ghost.webm", "mp4"), "unknown files are returned unchanged")
}
