package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/video-downloader/internal/api/handler"
	"github.com/cuongbtq/video-downloader/internal/api/router"
	"github.com/cuongbtq/video-downloader/internal/config"
	"github.com/cuongbtq/video-downloader/internal/downloader"
	"github.com/cuongbtq/video-downloader/internal/events"
	"github.com/cuongbtq/video-downloader/internal/jobs"
	"github.com/cuongbtq/video-downloader/internal/library"
	"github.com/cuongbtq/video-downloader/internal/registry"
	"github.com/cuongbtq/video-downloader/internal/worker"
	"github.com/cuongbtq/video-downloader/shared/logger"
	"github.com/cuongbtq/video-downloader/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WEB_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/web-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWebConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting web service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	if cfg.Downloads.AutoInstall {
		installCtx, cancelInstall := context.WithTimeout(context.Background(), 5*time.Minute)
		err := downloader.Install(installCtx)
		cancelInstall()
		if err != nil {
			return err
		}
		appLogger.Info("yt-dlp is available")
	}

	lib, err := library.New(cfg.Downloads.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize download directory: %w", err)
	}

	appLogger.Info("Download directory ready", slog.String("dir", lib.Dir()))

	publisher, rabbitClient, err := initPublisher(cfg, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	jobRegistry := registry.NewMemoryRegistry()

	launcher := worker.NewLauncher(&worker.Config{
		Logger:       appLogger.Logger,
		Registry:     jobRegistry,
		Downloader:   initDownloader(&cfg.Downloads, appLogger.Logger),
		Publisher:    publisher,
		OutputDir:    lib.Dir(),
		MaxDownloads: cfg.Worker.MaxDownloads,
	})

	jobService := jobs.NewService(&jobs.Config{
		Logger:       appLogger.Logger,
		Registry:     jobRegistry,
		Launcher:     launcher,
		AllowedHosts: cfg.Downloads.AllowedHosts,
	})

	r := initRouter(cfg, appLogger.Logger, jobService, lib)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	appLogger.Info("Web service is running",
		slog.String("address", addr),
		slog.Int("max_downloads", cfg.Worker.MaxDownloads),
		slog.Bool("events_enabled", cfg.Events.Enabled),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		appLogger.Error("Server failed to start", slog.Any("error", err))
		return err
	}

	defer func() {
		if rabbitClient != nil {
			rabbitClient.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
	}

	workerCtx, workerCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer workerCancel()

	if err := launcher.Stop(workerCtx); err != nil {
		appLogger.Warn("Worker shutdown timeout exceeded, in-flight downloads were cancelled",
			slog.Any("error", err),
		)
	} else {
		appLogger.Info("Workers stopped gracefully")
	}

	appLogger.Info("Web service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		File:         cfg.File,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initDownloader builds the yt-dlp downloader from the configured strategies
func initDownloader(cfg *config.DownloadsConfig, logger *slog.Logger) *downloader.YTDLP {
	strategies := make([]downloader.Strategy, len(cfg.Strategies))
	for i, s := range cfg.Strategies {
		strategies[i] = downloader.Strategy{
			Format:            s.Format,
			MergeOutputFormat: s.MergeOutputFormat,
		}
	}

	return downloader.NewYTDLP(&downloader.Config{
		Logger:            logger,
		Strategies:        strategies,
		OutputTemplate:    cfg.OutputTemplate,
		ExtractorArgs:     cfg.ExtractorArgs,
		RestrictFilenames: cfg.RestrictFilenames,
	})
}

// initPublisher returns the RabbitMQ event publisher, or a no-op one when events are disabled
func initPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, *rabbitmq.Client, error) {
	if !cfg.Events.Enabled {
		logger.Info("Job event publishing disabled")
		return events.NopPublisher{}, nil, nil
	}

	rabbitClient, err := rabbitmq.NewClient(rabbitConfig(&cfg.RabbitMQ), logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("RabbitMQ connection established")
	return events.NewRabbitPublisher(rabbitClient), rabbitClient, nil
}

// rabbitConfig maps the RabbitMQ section to client settings
func rabbitConfig(cfg *config.RabbitMQConfig) *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, jobService *jobs.Service, lib *library.Library) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	handlerDeps := &handler.Dependencies{
		Logger:      logger,
		ServiceName: cfg.App.Name,
		Jobs:        jobService,
		Library:     lib,
		Poll:        cfg.Poll,
	}

	return router.SetupRouter(handlerDeps)
}
