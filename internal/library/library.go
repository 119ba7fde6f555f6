// Package library manages the downloaded artifacts on disk.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrFileNotFound is returned when the named artifact does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFilename is returned for names that cannot refer to a file in the library
	ErrInvalidFilename = errors.New("invalid filename")
)

// partialSuffixes mark files yt-dlp is still writing
var partialSuffixes = []string{".part", ".ytdl"}

// Library is a flat directory of downloaded videos
type Library struct {
	dir string
}

// New creates a library rooted at dir, creating the directory if needed
func New(dir string) (*Library, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty library directory", ErrInvalidFilename)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	return &Library{dir: dir}, nil
}

// Dir returns the library directory
func (l *Library) Dir() string {
	return l.dir
}

// List returns the names of finished downloads, sorted descending
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isPartial(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Resolve returns the absolute path of a stored file
func (l *Library) Resolve(name string) (string, error) {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(l.dir, clean)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, clean)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, clean)
	}

	return path, nil
}

// Delete removes a stored file and returns the name that was removed
func (l *Library) Delete(name string) (string, error) {
	clean, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}

	path, err := l.Resolve(clean)
	if err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to delete file: %w", err)
	}
	return clean, nil
}

// SanitizeFilename reduces name to a single path element inside the library.
// Directory components are dropped; names that still cannot be a plain file are rejected.
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case strings.ContainsRune(name, 0):
		return "", fmt.Errorf("%w: contains NUL", ErrInvalidFilename)
	}

	return name, nil
}

// ContentType returns the media type served for a stored file
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}

func isPartial(name string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
