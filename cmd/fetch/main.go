package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cuongbtq/video-downloader/internal/library"
	"github.com/cuongbtq/video-downloader/internal/poller"
	"github.com/cuongbtq/video-downloader/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	serverURL := flag.String("server", "http://localhost:5000", "Base URL of the web service")
	videoURL := flag.String("url", "", "Video URL to download")
	outDir := flag.String("out", ".", "Directory to save the video in")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	maxAttempts := flag.Int("max-attempts", poller.DefaultMaxAttempts, "Maximum number of status checks")
	flag.Parse()

	if *videoURL == "" {
		flag.Usage()
		return errors.New("-url is required")
	}

	appLogger, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.Kitchen,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := poller.NewClient(*serverURL, &http.Client{Timeout: 30 * time.Second})

	created, err := client.Submit(ctx, *videoURL)
	if err != nil {
		return err
	}

	appLogger.Info("Download started",
		slog.String("job_id", created.JobID),
		slog.String("message", created.Message),
	)

	p := poller.New(client, poller.Config{
		Logger:      appLogger.Logger,
		MaxAttempts: *maxAttempts,
	})

	status, err := p.Wait(ctx, created.JobID)
	if err != nil {
		return err
	}

	name, err := library.SanitizeFilename(status.Filename)
	if err != nil {
		return fmt.Errorf("server returned an unusable filename: %w", err)
	}

	path := filepath.Join(*outDir, name)
	n, err := save(ctx, client, status.Filename, path)
	if err != nil {
		return err
	}

	appLogger.Info("Video saved",
		slog.String("path", path),
		slog.Int64("bytes", n),
	)
	return nil
}

// save downloads into a temporary file and renames it once complete
func save(ctx context.Context, client *poller.Client, filename, path string) (int64, error) {
	tmp := path + ".part"

	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := client.DownloadFile(ctx, filename, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return n, err
	}

	if err := os.Rename(tmp, path); err != nil {
		return n, fmt.Errorf("failed to move file into place: %w", err)
	}
	return n, nil
}
