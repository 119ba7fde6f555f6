package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Downloads DownloadsConfig `yaml:"downloads"`
	Worker    WorkerConfig    `yaml:"worker"`
	Poll      PollConfig      `yaml:"poll"`
	Events    EventsConfig    `yaml:"events"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Database  DatabaseConfig  `yaml:"database"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	File         string `yaml:"file"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// DownloadsConfig holds download collaborator and artifact settings
type DownloadsConfig struct {
	Dir               string           `yaml:"dir"`
	AllowedHosts      []string         `yaml:"allowed_hosts"`
	Strategies        []FormatStrategy `yaml:"strategies"`
	OutputTemplate    string           `yaml:"output_template"`
	ExtractorArgs     string           `yaml:"extractor_args"`
	RestrictFilenames bool             `yaml:"restrict_filenames"`
	AutoInstall       bool             `yaml:"auto_install"`
}

// FormatStrategy is one yt-dlp format selection attempt
type FormatStrategy struct {
	Format            string `yaml:"format"`
	MergeOutputFormat string `yaml:"merge_output_format"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	MaxDownloads    int           `yaml:"max_downloads"` // 0 means no limit
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PollConfig holds the client poll loop timings
type PollConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay"`
	Interval     time.Duration `yaml:"interval"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	MaxAttempts  int           `yaml:"max_attempts"`
	HandoffDelay time.Duration `yaml:"handoff_delay"`
	SuccessDelay time.Duration `yaml:"success_delay"`
}

// EventsConfig controls job lifecycle event publishing
type EventsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue configuration
type RabbitMQConfig struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queue      QueueConfig      `yaml:"queue"`
	RoutingKey string           `yaml:"routing_key"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
	Consumer   ConsumerConfig   `yaml:"consumer"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds RabbitMQ queue configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// ConsumerConfig holds RabbitMQ consumer settings
type ConsumerConfig struct {
	Tag           string `yaml:"tag"`
	PrefetchCount int    `yaml:"prefetch_count"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// Load reads and parses the configuration file and fills unset values with defaults
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills zero values with defaults
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Downloads.Dir == "" {
		c.Downloads.Dir = "downloads"
	}
	if len(c.Downloads.AllowedHosts) == 0 {
		c.Downloads.AllowedHosts = []string{"youtube.com", "youtu.be"}
	}
	if len(c.Downloads.Strategies) == 0 {
		c.Downloads.Strategies = []FormatStrategy{
			{Format: "bestvideo+bestaudio/best", MergeOutputFormat: "mp4"},
			{Format: "best"},
			{Format: "worst"},
		}
	}
	if c.Downloads.OutputTemplate == "" {
		c.Downloads.OutputTemplate = "%(title)s.%(ext)s"
	}
	if c.Downloads.ExtractorArgs == "" {
		c.Downloads.ExtractorArgs = "youtube:player_client=android,web"
	}

	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.ShutdownTimeout == 0 {
		c.Worker.ShutdownTimeout = 30 * time.Second
	}

	if c.Poll.InitialDelay == 0 {
		c.Poll.InitialDelay = 2 * time.Second
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = time.Second
	}
	if c.Poll.RetryBackoff == 0 {
		c.Poll.RetryBackoff = 2 * time.Second
	}
	if c.Poll.MaxAttempts == 0 {
		c.Poll.MaxAttempts = 300
	}
	if c.Poll.HandoffDelay == 0 {
		c.Poll.HandoffDelay = 3 * time.Second
	}
	if c.Poll.SuccessDelay == 0 {
		c.Poll.SuccessDelay = 10 * time.Second
	}

	if c.RabbitMQ.Exchange.Type == "" {
		c.RabbitMQ.Exchange.Type = "direct"
	}
	if c.RabbitMQ.Connection.RetryAttempts == 0 {
		c.RabbitMQ.Connection.RetryAttempts = 5
	}
	if c.RabbitMQ.Connection.RetryInterval == 0 {
		c.RabbitMQ.Connection.RetryInterval = 2 * time.Second
	}
	if c.RabbitMQ.Consumer.PrefetchCount == 0 {
		c.RabbitMQ.Consumer.PrefetchCount = 10
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

// ValidateWebConfig checks the configuration of the web service
func (c *Config) ValidateWebConfig() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if c.Downloads.Dir == "" {
		return fmt.Errorf("downloads dir is required")
	}

	for i, s := range c.Downloads.Strategies {
		if s.Format == "" {
			return fmt.Errorf("downloads strategy %d: format is required", i)
		}
	}

	if c.Worker.MaxDownloads < 0 {
		return fmt.Errorf("worker max_downloads must not be negative")
	}

	if c.Poll.InitialDelay <= 0 || c.Poll.Interval <= 0 || c.Poll.RetryBackoff <= 0 {
		return fmt.Errorf("poll delays must be greater than 0")
	}

	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll max_attempts must be greater than 0")
	}

	if c.Events.Enabled {
		if err := c.validateRabbitMQ(); err != nil {
			return err
		}
	}

	return nil
}

// ValidateHistoryConfig checks the configuration of the history service
func (c *Config) ValidateHistoryConfig() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if err := c.validateRabbitMQ(); err != nil {
		return err
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}

	if c.Worker.ShutdownTimeout <= 0 {
		return fmt.Errorf("worker shutdown_timeout must be greater than 0")
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}
	return nil
}

func (c *Config) validateRabbitMQ() error {
	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq host is required")
	}

	if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
		return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Exchange.Name == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}

	if c.RabbitMQ.Queue.Name == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}

	return nil
}
