package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const minimalYAML = `
source:
  store_url: https://shop.example.com
  directory_url: https://directory.example.org
  page_size: 25
target:
  store_url: https://new-shop.example.com
  api_token: secret
`

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := Load(path, "SMI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Source.StoreURL != "https://shop.example.com" {
		t.Errorf("unexpected source store URL: %s", cfg.Source.StoreURL)
	}
	if cfg.Source.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.Source.PageSize)
	}
	if cfg.Target.APIToken != "secret" {
		t.Errorf("expected api token from file, got %q", cfg.Target.APIToken)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := Load(path, "SMI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("expected default max retries 3, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("expected default base delay 250ms, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay != 10*time.Second {
		t.Errorf("expected default max delay 10s, got %v", cfg.Retry.MaxDelay)
	}
	if cfg.HTTPClient.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.HTTPClient.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Metrics.Namespace != "smi" {
		t.Errorf("expected default metrics namespace, got %q", cfg.Metrics.Namespace)
	}
	if cfg.Checkpoint.RunTTL != 7*24*time.Hour {
		t.Errorf("expected default run TTL, got %v", cfg.Checkpoint.RunTTL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)
	t.Setenv("SMI_SOURCE_PAGE_SIZE", "100")

	cfg, err := Load(path, "SMI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Source.PageSize != 100 {
		t.Errorf("expected env override to win, got %d", cfg.Source.PageSize)
	}
}

func TestLoadZeroRetryBudgetSurvives(t *testing.T) {
	path := writeConfigFile(t, minimalYAML+`
retry:
  max_retries: 0
`)

	cfg, err := Load(path, "SMI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Retry.MaxRetries != 0 {
		t.Errorf("an explicit zero-retry budget must not be defaulted, got %d", cfg.Retry.MaxRetries)
	}
}

func TestLoadDefaultEnvPrefix(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)
	t.Setenv("SMI_SOURCE_PAGE_SIZE", "75")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Source.PageSize != 75 {
		t.Errorf("expected the SMI prefix by default, got page size %d", cfg.Source.PageSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "SMI"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Source.StoreURL = "https://shop.example.com"
		cfg.Target.StoreURL = "https://new-shop.example.com"
		cfg.Target.APIToken = "secret"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name: "no endpoints at all",
			mutate: func(cfg *Config) {
				cfg.Source.StoreURL = ""
				cfg.Source.DirectoryURL = ""
				cfg.Target.StoreURL = ""
			},
			wantErr: true,
		},
		{
			name: "target without token",
			mutate: func(cfg *Config) {
				cfg.Target.APIToken = ""
			},
			wantErr: true,
		},
		{
			name: "negative max retries",
			mutate: func(cfg *Config) {
				cfg.Retry.MaxRetries = -1
			},
			wantErr: true,
		},
		{
			name: "base delay above max delay",
			mutate: func(cfg *Config) {
				cfg.Retry.BaseDelay = time.Minute
				cfg.Retry.MaxDelay = time.Second
			},
			wantErr: true,
		},
		{
			name: "invalid retryable status",
			mutate: func(cfg *Config) {
				cfg.Retry.RetryableStatuses = []int{700}
			},
			wantErr: true,
		},
		{
			name: "checkpoint host without port",
			mutate: func(cfg *Config) {
				cfg.Checkpoint.Host = "localhost"
				cfg.Checkpoint.Port = 0
			},
			wantErr: true,
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = ""
			},
			wantErr: true,
		},
		{
			name: "tracing sample rate out of range",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = "localhost:4317"
				cfg.Tracing.SampleRate = 1.5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
