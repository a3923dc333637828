package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
}

// DataConfig holds flat-file storage configuration.
type DataConfig struct {
	Dir         string `envconfig:"DATA_DIR" default:"data" yaml:"dir"`
	CatalogFile string `envconfig:"CATALOG_FILE" default:"course_catalog.json" yaml:"catalog_file"`
}

// CatalogPath returns the full path of the course catalog file.
func (d DataConfig) CatalogPath() string {
	return filepath.Join(d.Dir, d.CatalogFile)
}

// TelemetryConfig holds span pipeline configuration.
type TelemetryConfig struct {
	Enabled       bool          `envconfig:"TRACE_ENABLED" default:"true" yaml:"enabled"`
	SpanFile      string        `envconfig:"SPAN_FILE" default:"spans.json" yaml:"span_file"`
	AgentAddr     string        `envconfig:"TRACE_AGENT_ADDR" default:"localhost:4317" yaml:"agent_addr"`
	AgentEnabled  bool          `envconfig:"TRACE_AGENT_ENABLED" default:"false" yaml:"agent_enabled"`
	BatchSize     int           `envconfig:"TRACE_BATCH_SIZE" default:"100" yaml:"batch_size"`
	FlushInterval time.Duration `envconfig:"TRACE_FLUSH_INTERVAL" default:"5s" yaml:"flush_interval"`
	QueueSize     int           `envconfig:"TRACE_QUEUE_SIZE" default:"2048" yaml:"queue_size"`
}

// SpanPath returns the full path of the span log file.
func (t TelemetryConfig) SpanPath(dataDir string) string {
	return filepath.Join(dataDir, t.SpanFile)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
	File        string `envconfig:"LOG_FILE" default:"" yaml:"file"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// CacheConfig holds catalog read cache configuration.
type CacheConfig struct {
	Enabled    bool  `envconfig:"CACHE_ENABLED" default:"true" yaml:"enabled"`
	MaxEntries int64 `envconfig:"CACHE_MAX_ENTRIES" default:"1024" yaml:"max_entries"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from a YAML file layered over the defaults.
// Environment variables are not consulted.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Data: DataConfig{
			Dir:         "data",
			CatalogFile: "course_catalog.json",
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			SpanFile:      "spans.json",
			AgentAddr:     "localhost:4317",
			AgentEnabled:  false,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
			QueueSize:     2048,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1024,
		},
	}
}
