package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// Config holds yt-dlp downloader configuration
type Config struct {
	Logger            *slog.Logger
	Strategies        []Strategy
	OutputTemplate    string
	ExtractorArgs     string
	RestrictFilenames bool
}

// attemptFunc runs a single strategy against url
type attemptFunc func(ctx context.Context, strategy Strategy, url, outputDir string) (*Result, error)

// YTDLP downloads videos with the yt-dlp binary through go-ytdlp
type YTDLP struct {
	logger            *slog.Logger
	strategies        []Strategy
	outputTemplate    string
	extractorArgs     string
	restrictFilenames bool
	attempt           attemptFunc
}

// NewYTDLP creates a new yt-dlp backed downloader
func NewYTDLP(cfg *Config) *YTDLP {
	strategies := cfg.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	outputTemplate := cfg.OutputTemplate
	if outputTemplate == "" {
		outputTemplate = DefaultOutputTemplate
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	y := &YTDLP{
		logger:            logger,
		strategies:        strategies,
		outputTemplate:    outputTemplate,
		extractorArgs:     cfg.ExtractorArgs,
		restrictFilenames: cfg.RestrictFilenames,
	}
	y.attempt = y.runStrategy

	return y
}

// Install makes sure a yt-dlp binary is available, downloading one if needed
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// Download tries each strategy in order and returns the first success
func (y *YTDLP) Download(ctx context.Context, url, outputDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var lastErr error
	for i, strategy := range y.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := y.attempt(ctx, strategy, url, outputDir)
		if err == nil {
			y.logger.Info("Download strategy succeeded",
				slog.String("url", url),
				slog.String("format", strategy.Format),
				slog.String("filename", result.Filename),
			)
			return result, nil
		}

		lastErr = err
		y.logger.Warn("Download strategy failed",
			slog.String("url", url),
			slog.String("format", strategy.Format),
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", len(y.strategies)),
			slog.String("error", err.Error()),
		)
	}

	if lastErr == nil {
		return nil, ErrAllStrategiesFailed
	}

	return nil, fmt.Errorf("%w: %w", ErrAllStrategiesFailed, lastErr)
}

// runStrategy runs yt-dlp once with the given format selection
func (y *YTDLP) runStrategy(ctx context.Context, strategy Strategy, url, outputDir string) (*Result, error) {
	dl := ytdlp.New().
		Format(strategy.Format).
		Output(filepath.Join(outputDir, y.outputTemplate)).
		NoPlaylist().
		PrintJSON()

	if strategy.MergeOutputFormat != "" {
		dl.MergeOutputFormat(strategy.MergeOutputFormat)
	}
	if y.extractorArgs != "" {
		dl.ExtractorArgs(y.extractorArgs)
	}
	if y.restrictFilenames {
		dl.RestrictFilenames()
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, err
	}

	info, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted info: %w", err)
	}
	if len(info) == 0 || info[0].Filename == nil || *info[0].Filename == "" {
		return nil, errors.New("yt-dlp returned no file information")
	}

	title := DefaultTitle
	if info[0].Title != nil && *info[0].Title != "" {
		title = *info[0].Title
	}

	filename := resolveFilename(outputDir, filepath.Base(*info[0].Filename), strategy.MergeOutputFormat)

	return &Result{Title: title, Filename: filename}, nil
}

// resolveFilename accounts for yt-dlp reporting the pre-merge name when streams
// are merged into a different container.
func resolveFilename(outputDir, name, mergeFormat string) string {
	if mergeFormat == "" {
		return name
	}
	if _, err := os.Stat(filepath.Join(outputDir, name)); err == nil {
		return name
	}

	merged := strings.TrimSuffix(name, filepath.Ext(name)) + "." + mergeFormat
	if _, err := os.Stat(filepath.Join(outputDir, merged)); err == nil {
		return merged
	}

	return name
}
