package config

import (
	"fmt"
	"time"
)

// Validate validates the configuration and returns an error if any required
// fields are missing or have invalid values.
func Validate(cfg *Config) error {
	// Validate Source config (if used)
	if cfg.Source.StoreURL == "" && cfg.Source.DirectoryURL == "" && cfg.Target.StoreURL == "" {
		return fmt.Errorf("at least one of source.store_url, source.directory_url or target.store_url is required")
	}
	if cfg.Source.PageSize < 0 {
		return fmt.Errorf("source.page_size must not be negative")
	}

	// Validate Target config (if used)
	if cfg.Target.StoreURL != "" && cfg.Target.APIToken == "" {
		return fmt.Errorf("target.api_token is required when target.store_url is set")
	}

	// Validate Retry config
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if cfg.Retry.BaseDelay < 0 || cfg.Retry.MaxDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	if cfg.Retry.MaxDelay > 0 && cfg.Retry.BaseDelay > cfg.Retry.MaxDelay {
		return fmt.Errorf("retry.base_delay must not exceed retry.max_delay")
	}
	for _, status := range cfg.Retry.RetryableStatuses {
		if status < 100 || status > 599 {
			return fmt.Errorf("retry.retryable_statuses contains invalid status %d", status)
		}
	}

	// Validate HTTP client config
	if cfg.HTTPClient.RateLimitPerSecond < 0 {
		return fmt.Errorf("http_client.rate_limit_per_second must not be negative")
	}

	// Validate Checkpoint config (if used)
	if cfg.Checkpoint.Host != "" && cfg.Checkpoint.Port == 0 {
		return fmt.Errorf("checkpoint.port is required when checkpoint.host is set")
	}

	// Validate Tracing config (if enabled)
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
		}
		if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0")
		}
	}

	// Validate Metrics config (if enabled)
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics.port is required when metrics are enabled")
	}

	return nil
}

// applyDefaults applies default values to the configuration where values are not set.
func applyDefaults(cfg *Config) {
	// Service defaults
	if cfg.Service.Name == "" {
		cfg.Service.Name = "smi"
	}
	if cfg.Service.Env == "" {
		cfg.Service.Env = "development"
	}

	// Source defaults
	if cfg.Source.PageSize == 0 {
		cfg.Source.PageSize = 50
	}

	// Retry delay defaults mirror retry.Config.withDefaults; set here as well
	// so a dumped config shows the effective values. MaxRetries is defaulted
	// at the viper layer in Load, where unset and explicit 0 can be told apart.
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 250 * time.Millisecond
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 10 * time.Second
	}

	// HTTP client defaults
	if cfg.HTTPClient.Timeout == 0 {
		cfg.HTTPClient.Timeout = 30 * time.Second
	}
	if cfg.HTTPClient.UserAgent == "" {
		cfg.HTTPClient.UserAgent = "smi-migrator/" + versionOrDev(cfg)
	}
	if cfg.HTTPClient.MaxIdleConns == 0 {
		cfg.HTTPClient.MaxIdleConns = 100
	}
	if cfg.HTTPClient.MaxIdleConnsPerHost == 0 {
		cfg.HTTPClient.MaxIdleConnsPerHost = 10
	}
	if cfg.HTTPClient.IdleConnTimeout == 0 {
		cfg.HTTPClient.IdleConnTimeout = 90 * time.Second
	}
	if cfg.HTTPClient.TLSHandshakeTimeout == 0 {
		cfg.HTTPClient.TLSHandshakeTimeout = 10 * time.Second
	}
	if cfg.HTTPClient.RateLimitBurst == 0 {
		cfg.HTTPClient.RateLimitBurst = 1
	}

	// Checkpoint defaults
	if cfg.Checkpoint.Port == 0 && cfg.Checkpoint.Host != "" {
		cfg.Checkpoint.Port = 6379
	}
	if cfg.Checkpoint.DialTimeout == 0 {
		cfg.Checkpoint.DialTimeout = 5 * time.Second
	}
	if cfg.Checkpoint.ReadTimeout == 0 {
		cfg.Checkpoint.ReadTimeout = 3 * time.Second
	}
	if cfg.Checkpoint.WriteTimeout == 0 {
		cfg.Checkpoint.WriteTimeout = 3 * time.Second
	}
	if cfg.Checkpoint.PoolSize == 0 {
		cfg.Checkpoint.PoolSize = 10
	}
	if cfg.Checkpoint.RunTTL == 0 {
		cfg.Checkpoint.RunTTL = 7 * 24 * time.Hour
	}

	// Log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "smi"
	}

	// Tracing defaults
	if cfg.Tracing.SampleRate == 0 && cfg.Tracing.Enabled {
		cfg.Tracing.SampleRate = 1.0
	}
	if cfg.Tracing.ExportMode == "" {
		cfg.Tracing.ExportMode = "grpc"
	}
	if cfg.Tracing.BatchTimeout == 0 {
		cfg.Tracing.BatchTimeout = 5 * time.Second
	}
}

func versionOrDev(cfg *Config) string {
	if cfg.Service.Version != "" {
		return cfg.Service.Version
	}
	return "dev"
}
