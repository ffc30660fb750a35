package co2

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/ratelimit"
)

const (
	// DefaultTimeout bounds each individual fetch.
	DefaultTimeout = 10 * time.Second

	// Per-host outbound limit, burst of 2.
	defaultRPS   = 0.5
	defaultBurst = 2

	maxBodyBytes = 4 << 20
)

// Fetcher performs bounded, rate-limited GET requests against source hosts.
type Fetcher struct {
	http    *http.Client
	timeout time.Duration
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewFetcher creates a fetcher. A non-positive timeout uses DefaultTimeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the fetcher.
func (f *Fetcher) Close() {
	f.limiter.Stop()
}

// Get fetches rawURL and returns its body. Any status other than 200 is an error.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "CarbonTrack/1.0")

	f.logger.Debug("co2 request", "host", u.Host, "path", u.Path)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
