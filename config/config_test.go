package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.SearchEngineID = "test-cx"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "missing api key",
			mutate: func(cfg *Config) {
				cfg.APIKey = ""
			},
			wantErr: "API key",
		},
		{
			name: "missing engine id",
			mutate: func(cfg *Config) {
				cfg.SearchEngineID = ""
			},
			wantErr: "engine id",
		},
		{
			name: "empty endpoint",
			mutate: func(cfg *Config) {
				cfg.Endpoint = ""
			},
			wantErr: "endpoint",
		},
		{
			name: "endpoint without host",
			mutate: func(cfg *Config) {
				cfg.Endpoint = "https://"
			},
			wantErr: "endpoint",
		},
		{
			name: "zero max results",
			mutate: func(cfg *Config) {
				cfg.MaxResults = 0
			},
			wantErr: "max results",
		},
		{
			name: "max results above api cap",
			mutate: func(cfg *Config) {
				cfg.MaxResults = 11
			},
			wantErr: "max results",
		},
		{
			name: "zero max retries",
			mutate: func(cfg *Config) {
				cfg.MaxRetries = 0
			},
			wantErr: "max retries",
		},
		{
			name: "negative min query length",
			mutate: func(cfg *Config) {
				cfg.MinQueryLength = -1
			},
			wantErr: "min query length",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValidWithCredentials(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config with credentials should validate, got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("API_KEY", "key-123")
	t.Setenv("CSE_ID", "cx-456")

	cfg := DefaultConfig()
	if err := cfg.LoadCredentials(); err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	if cfg.APIKey != "key-123" || cfg.SearchEngineID != "cx-456" {
		t.Fatalf("credentials = %q/%q, want key-123/cx-456", cfg.APIKey, cfg.SearchEngineID)
	}
}

func TestLoadCredentialsMissing(t *testing.T) {
	t.Setenv("API_KEY", "key-123")
	t.Setenv("CSE_ID", "")

	cfg := DefaultConfig()
	if err := cfg.LoadCredentials(); err == nil || !strings.Contains(err.Error(), "CSE_ID") {
		t.Fatalf("expected CSE_ID error, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("POSTSEARCH_TEST_INT", "7")
	value, ok, err := EnvInt("POSTSEARCH_TEST_INT")
	if err != nil || !ok || value != 7 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (7, true, nil)", value, ok, err)
	}

	t.Setenv("POSTSEARCH_TEST_INT", "seven")
	if _, _, err := EnvInt("POSTSEARCH_TEST_INT"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}

	if _, ok, _ := EnvInt("POSTSEARCH_TEST_INT_UNSET"); ok {
		t.Fatalf("unset variable should report ok=false")
	}
}
