// Package downloader wraps the external video extraction library. The rest of
// the service treats a download as one blocking call with no progress stream.
package downloader

import (
	"context"
	"errors"
)

// ErrAllStrategiesFailed is returned when every format strategy has been tried without success
var ErrAllStrategiesFailed = errors.New("all download strategies failed")

// Result describes a successfully downloaded artifact
type Result struct {
	Title    string
	Filename string // base name inside the output directory
}

// Downloader fetches the video behind url into outputDir
type Downloader interface {
	Download(ctx context.Context, url, outputDir string) (*Result, error)
}

// Strategy is one format selection attempt
type Strategy struct {
	Format            string `yaml:"format"`
	MergeOutputFormat string `yaml:"merge_output_format"`
}

// DefaultStrategies are tried in order until one succeeds
var DefaultStrategies = []Strategy{
	{Format: "bestvideo+bestaudio/best", MergeOutputFormat: "mp4"},
	{Format: "best"},
	{Format: "worst"},
}

// Default values
const (
	DefaultOutputTemplate = "%(title)s.%(ext)s"
	DefaultExtractorArgs  = "youtube:player_client=android,web"
	DefaultTitle          = "Untitled"
)
