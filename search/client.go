// Package search calls the Custom Search API and filters the results
// against a network profile.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-post-search/config"
	"github.com/aluiziolira/go-post-search/profile"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Client performs search API calls with bounded retry on rate limiting.
// All failures resolve to an empty result; a single row's search never
// aborts the batch.
type Client struct {
	endpoint   string
	apiKey     string
	engineID   string
	maxResults int
	maxRetries int

	httpClient *http.Client
	sleep      func(time.Duration)
	cache      *lru.Cache[string, string]

	Metrics *Metrics
}

// NewClient builds a search client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("endpoint must include a host")
	}

	c := &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		engineID:   cfg.SearchEngineID,
		maxResults: cfg.MaxResults,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      time.Sleep,
		Metrics:    NewMetrics(),
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// WithTransport replaces the HTTP transport, used by tests to stub the API.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

type searchItem struct {
	Link string `json:"link"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// Search issues the query and returns the first result link accepted by the
// profile, or "" when nothing matched. Rate-limit responses are retried
// with exponential backoff of 2^attempt seconds, up to the retry cap; any
// other failure resolves to "" immediately.
func (c *Client) Search(ctx context.Context, query string, p profile.Profile) string {
	key := p.Name + "\x00" + query
	if c.cache != nil {
		if link, ok := c.cache.Get(key); ok {
			c.Metrics.IncCacheHit()
			c.Metrics.IncSearch("cached")
			return link
		}
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		link, retry := c.attempt(ctx, query, p)
		if !retry {
			if link != "" {
				c.Metrics.IncSearch("found")
				if c.cache != nil {
					c.cache.Add(key, link)
				}
			} else {
				c.Metrics.IncSearch("not_found")
			}
			return link
		}

		wait := time.Duration(1<<attempt) * time.Second
		slog.Warn("search rate limited, backing off",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
		)
		c.Metrics.IncRetries()
		c.sleep(wait)
	}

	c.Metrics.IncSearch("not_found")
	return ""
}

// attempt performs one API call. retry is true only for HTTP 429.
func (c *Client) attempt(ctx context.Context, query string, p profile.Profile) (link string, retry bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		slog.Error("build search request", slog.Any("error", err))
		c.Metrics.IncError("request")
		return "", false
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("num", strconv.Itoa(c.maxResults))
	req.URL.RawQuery = params.Encode()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("search request failed", slog.Any("error", err))
		c.Metrics.IncError("connection")
		return "", false
	}
	defer resp.Body.Close()
	c.Metrics.ObserveDuration(time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.Metrics.IncError("rate_limited")
		return "", true
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		slog.Error("search returned error status", slog.Int("status", resp.StatusCode))
		c.Metrics.IncError(statusLabel(resp.StatusCode))
		return "", false
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Error("decode search response", slog.Any("error", err))
		c.Metrics.IncError("decode")
		return "", false
	}

	for _, item := range payload.Items {
		if Matches(item.Link, p) {
			return item.Link, false
		}
	}
	return "", false
}

// Matches reports whether a result link belongs to the profile's network:
// it must contain the domain prefix and at least one valid path substring.
func Matches(link string, p profile.Profile) bool {
	if !strings.Contains(link, p.DomainURL) {
		return false
	}
	for _, sub := range p.ValidPaths {
		if strings.Contains(link, sub) {
			return true
		}
	}
	return false
}

func statusLabel(status int) string {
	switch status {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "http_" + strconv.Itoa(status)
	}
}
