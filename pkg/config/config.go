// Package config provides configuration management for the SMI migration
// infrastructure. It supports loading configuration from YAML files, JSON
// files, and environment variables with automatic validation and default
// value application.
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml", "SMI")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Or panic on error:
//	cfg := config.MustLoad("config.yaml", "SMI")
package config

import (
	"time"
)

// Config represents the complete configuration for an SMI-based migration run.
type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Source     SourceConfig     `mapstructure:"source"`
	Target     TargetConfig     `mapstructure:"target"`
	Retry      RetryConfig      `mapstructure:"retry"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServiceConfig contains general service information.
type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// SourceConfig describes the storefront being migrated away from.
type SourceConfig struct {
	// StoreURL is the base URL of the source store, e.g. "https://shop.example.com".
	StoreURL string `mapstructure:"store_url"`

	// DirectoryURL is the base URL of the plugin/theme directory used to
	// resolve extensions found on the source site.
	DirectoryURL string `mapstructure:"directory_url"`

	// PageSize is the number of catalog items fetched per page.
	PageSize int `mapstructure:"page_size"`
}

// TargetConfig describes the storefront being provisioned.
type TargetConfig struct {
	// StoreURL is the base URL of the target store's admin API.
	StoreURL string `mapstructure:"store_url"`

	// APIToken authenticates provisioning uploads.
	APIToken string `mapstructure:"api_token"`
}

// RetryConfig contains the shared retry policy configuration applied to
// every network call the migration assistant makes.
type RetryConfig struct {
	// MaxRetries is the retry budget per call (attempts = MaxRetries + 1).
	MaxRetries int `mapstructure:"max_retries"`

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration `mapstructure:"base_delay"`

	// MaxDelay clamps the exponential backoff.
	MaxDelay time.Duration `mapstructure:"max_delay"`

	// RetryableStatuses replaces the built-in transient status set when set.
	RetryableStatuses []int `mapstructure:"retryable_statuses"`
}

// HTTPClientConfig contains HTTP transport configuration shared by the
// catalog, directory, asset and provisioning clients.
type HTTPClientConfig struct {
	// Timeout is the per-attempt request timeout. Default: 30 seconds.
	Timeout time.Duration `mapstructure:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent"`

	// Connection pooling.
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`

	// RateLimitPerSecond caps outbound requests per second (0 = unlimited),
	// to keep the scraper polite against the source site.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`

	// RateLimitBurst is the maximum burst size for rate limiting. Default: 1.
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

// CheckpointConfig contains the Redis checkpoint store configuration.
type CheckpointConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`

	// RunTTL bounds how long checkpoint state from an interrupted run is
	// kept for resumption.
	RunTTL time.Duration `mapstructure:"run_ttl"`
}

// LogConfig contains structured logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Port      int    `mapstructure:"port"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"` // Metric prefix
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`      // OTLP endpoint (e.g., "localhost:4317")
	SampleRate   float64       `mapstructure:"sample_rate"`   // 0.0 to 1.0
	ServiceName  string        `mapstructure:"service_name"`  // Override service name for traces
	Environment  string        `mapstructure:"environment"`   // Environment tag
	ExportMode   string        `mapstructure:"export_mode"`   // "grpc" or "http"
	Insecure     bool          `mapstructure:"insecure"`      // Use insecure connection
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // Batch export timeout
}
