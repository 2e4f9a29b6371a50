// Package verify optionally checks that accepted post URLs still resolve.
// It is informational only and never changes the output table.
package verify

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-post-search/profile"
)

// Verifier visits accepted URLs on the profile's domain and reports which
// of them answered with a success status.
type Verifier struct {
	collector *colly.Collector
	lastOK    bool
}

// New builds a verifier restricted to the profile's domain.
func New(p profile.Profile, timeout time.Duration, userAgent string) (*Verifier, error) {
	parsed, err := url.Parse(p.DomainURL)
	if err != nil {
		return nil, fmt.Errorf("parse profile domain: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("profile domain must include a host")
	}

	options := []colly.CollectorOption{
		colly.AllowedDomains(parsed.Host),
		colly.AllowURLRevisit(),
	}
	if userAgent != "" {
		options = append(options, colly.UserAgent(userAgent))
	}

	collector := colly.NewCollector(options...)
	if timeout > 0 {
		collector.SetRequestTimeout(timeout)
	}

	v := &Verifier{collector: collector}
	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			v.lastOK = true
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		slog.Debug("verification request failed",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	})
	return v, nil
}

// WithTransport replaces the HTTP transport, used by tests to stub responses.
func (v *Verifier) WithTransport(rt http.RoundTripper) {
	v.collector.WithTransport(rt)
}

// Check visits every link in order and returns the reachable count plus the
// links that failed.
func (v *Verifier) Check(links []string) (ok int, failed []string) {
	for _, link := range links {
		v.lastOK = false
		if err := v.collector.Visit(link); err != nil {
			slog.Debug("verification visit rejected", slog.String("url", link), slog.Any("error", err))
			failed = append(failed, link)
			continue
		}
		if v.lastOK {
			ok++
		} else {
			failed = append(failed, link)
		}
	}
	return ok, failed
}
