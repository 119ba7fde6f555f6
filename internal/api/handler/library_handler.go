package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/cuongbtq/video-downloader/internal/api/dto"
	"github.com/cuongbtq/video-downloader/internal/library"
	"github.com/gin-gonic/gin"
)

type videoView struct {
	Filename    string
	DownloadURL string
	DeleteURL   string
}

// Videos handles GET /videos
func (h *LibraryHandler) Videos(c *gin.Context) {
	names, err := h.library.List()
	if err != nil {
		h.logger.Error("Failed to list videos", slog.String("error", err.Error()))
		redirectWithFlash(c, "/", FlashError, "Could not list videos.")
		return
	}

	videos := make([]videoView, len(names))
	for i, name := range names {
		videos[i] = videoView{
			Filename:    name,
			DownloadURL: downloadURL(name),
			DeleteURL:   "/delete/" + url.PathEscape(name),
		}
	}

	c.HTML(http.StatusOK, "videos.html", gin.H{
		"Title":   "Videos",
		"Flashes": popFlashes(c),
		"Videos":  videos,
	})
}

// DownloadFile handles GET /download_file/*filename
// Streams the file as an attachment so the browser opens a save dialog
func (h *LibraryHandler) DownloadFile(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filename"), "/")

	path, err := h.library.Resolve(name)
	if err != nil {
		if !errors.Is(err, library.ErrFileNotFound) && !errors.Is(err, library.ErrInvalidFilename) {
			h.logger.Error("Failed to resolve file", slog.String("filename", name), slog.String("error", err.Error()))
		}
		redirectWithFlash(c, "/videos", FlashError, "File not found.")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		h.logger.Error("Failed to open file", slog.String("filename", name), slog.String("error", err.Error()))
		redirectWithFlash(c, "/videos", FlashError, "Could not read file.")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.Error("Failed to stat file", slog.String("filename", name), slog.String("error", err.Error()))
		redirectWithFlash(c, "/videos", FlashError, "Could not read file.")
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodeRFC5987(info.Name()))
	c.Header("Content-Type", library.ContentType(info.Name()))
	c.Header("X-Content-Type-Options", "nosniff")

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}

// Delete handles POST /delete/:filename
func (h *LibraryHandler) Delete(c *gin.Context) {
	name, err := h.library.Delete(c.Param("filename"))
	switch {
	case err == nil:
		h.logger.Info("Video deleted", slog.String("filename", name))
		redirectWithFlash(c, "/videos", FlashSuccess, fmt.Sprintf("Video %q deleted.", name))
	case errors.Is(err, library.ErrFileNotFound), errors.Is(err, library.ErrInvalidFilename):
		redirectWithFlash(c, "/videos", FlashError, "File not found.")
	default:
		h.logger.Error("Failed to delete video", slog.String("error", err.Error()))
		redirectWithFlash(c, "/videos", FlashError, "Could not delete file.")
	}
}

// ListVideos handles GET /api/v1/videos
func (h *LibraryHandler) ListVideos(c *gin.Context) {
	names, err := h.library.List()
	if err != nil {
		h.logger.Error("Failed to list videos", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list videos",
		})
		return
	}

	videos := make([]dto.VideoDTO, len(names))
	for i, name := range names {
		videos[i] = dto.VideoDTO{
			Filename:    name,
			DownloadURL: downloadURL(name),
		}
	}

	c.JSON(http.StatusOK, dto.ListVideosResponse{Videos: videos})
}

// DeleteVideo handles DELETE /api/v1/videos/:filename
func (h *LibraryHandler) DeleteVideo(c *gin.Context) {
	_, err := h.library.Delete(c.Param("filename"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, library.ErrInvalidFilename):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid filename",
		})
	case errors.Is(err, library.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "File not found",
		})
	default:
		h.logger.Error("Failed to delete video", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete file",
		})
	}
}

// encodeRFC5987 percent-encodes s for an ext-value header parameter
func encodeRFC5987(s string) string {
	const attrChars = "!#$&+-.^_`|~"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || strings.IndexByte(attrChars, ch) >= 0 {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", ch)
	}
	return b.String()
}
