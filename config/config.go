// Package config defines runtime configuration for the post search tool.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds the settings for one search run.
type Config struct {
	APIKey         string
	SearchEngineID string
	Endpoint       string
	MaxResults     int
	MaxRetries     int
	MinQueryLength int
	Timeout        time.Duration
	CacheSize      int
	OutputSuffix   string
	OutputFormat   string // csv, jsonl, or dual
	ProfileFile    string
	MetricsAddr    string
	VerifyLinks    bool
	Verbose        bool
}

// DefaultConfig returns defaults matching the Google Custom Search API.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "https://www.googleapis.com/customsearch/v1",
		MaxResults:     5,
		MaxRetries:     5,
		MinQueryLength: 200,
		Timeout:        15 * time.Second,
		CacheSize:      256,
		OutputSuffix:   "_with_urls",
		OutputFormat:   "csv",
	}
}

// LoadCredentials reads the required API credentials from the environment.
func (c *Config) LoadCredentials() error {
	key, ok := EnvString("API_KEY")
	if !ok {
		return fmt.Errorf("environment variable API_KEY is not set")
	}
	id, ok := EnvString("CSE_ID")
	if !ok {
		return fmt.Errorf("environment variable CSE_ID is not set")
	}
	c.APIKey = key
	c.SearchEngineID = id
	return nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if c.SearchEngineID == "" {
		return fmt.Errorf("search engine id cannot be empty")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	parsedURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("endpoint must include a host")
	}

	if c.MaxResults <= 0 || c.MaxResults > 10 {
		return fmt.Errorf("max results must be between 1 and 10")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive")
	}
	if c.MinQueryLength < 0 {
		return fmt.Errorf("min query length cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.OutputSuffix == "" {
		return fmt.Errorf("output suffix cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "jsonl" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, jsonl, or dual")
	}
	return nil
}

// EnvString returns the named environment variable and whether it is set to
// a non-empty value.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses the named environment variable as an integer. The boolean
// reports whether the variable was set at all.
func EnvInt(name string) (int, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("parse %s: %w", name, err)
	}
	return parsed, true, nil
}
