package router

import (
	"html/template"
	"net/http"

	"github.com/cuongbtq/video-downloader/internal/api/handler"
	"github.com/cuongbtq/video-downloader/internal/api/templates"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the web service router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Percent-encoded file names are matched and decoded as one path segment
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.SetHTMLTemplate(template.Must(templates.Parse()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": deps.ServiceName,
		})
	})

	downloadHandler := handler.NewDownloadHandler(deps)
	libraryHandler := handler.NewLibraryHandler(deps)

	// Browser flow
	r.GET("/", downloadHandler.Index)
	r.POST("/download", downloadHandler.Submit)
	r.GET("/check_download/:job_id", downloadHandler.CheckDownload)
	r.GET("/ready/:job_id", downloadHandler.Ready)
	r.GET("/downloading", downloadHandler.Downloading)
	r.GET("/success", downloadHandler.Success)

	// Library
	r.GET("/videos", libraryHandler.Videos)
	r.GET("/download_file/*filename", libraryHandler.DownloadFile)
	r.POST("/delete/:filename", libraryHandler.Delete)

	v1 := r.Group("/api/v1")
	{
		downloads := v1.Group("/downloads")
		{
			// POST /api/v1/downloads - Start a download
			downloads.POST("", downloadHandler.CreateDownload)

			// GET /api/v1/downloads/:job_id - Get download status
			downloads.GET("/:job_id", downloadHandler.GetDownload)
		}

		videos := v1.Group("/videos")
		{
			// GET /api/v1/videos - List downloaded videos
			videos.GET("", libraryHandler.ListVideos)

			// DELETE /api/v1/videos/:filename - Delete a downloaded video
			videos.DELETE("/:filename", libraryHandler.DeleteVideo)
		}
	}

	return r
}

// SetupHistoryRouter configures the history service router
func SetupHistoryRouter(deps *handler.HistoryDependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": deps.ServiceName,
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": deps.ServiceName,
		})
	})

	historyHandler := handler.NewHistoryHandler(deps)

	v1 := r.Group("/api/v1")
	{
		// GET /api/v1/events - List job events with filtering and pagination
		v1.GET("/events", historyHandler.ListEvents)
	}

	return r
}
