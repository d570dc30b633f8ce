// Package fetch downloads remote images with retries and caches them
// for the duration of one conversion run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config holds fetcher settings.
type Config struct {
	Timeout    time.Duration // Per-request timeout
	Attempts   uint          // Total attempts per download
	RetryDelay time.Duration
	HTTPClient *http.Client // Optional (tests)
	Logger     *slog.Logger
}

// Fetcher downloads URLs at most once per run. The cache is keyed by
// the exact URL string and never invalidated mid-run.
type Fetcher struct {
	client     *http.Client
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string][]byte
}

// New creates a fetcher, filling defaults.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Fetcher{
		client:     cfg.HTTPClient,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		cache:      make(map[string][]byte),
	}
}

// Get returns the bytes at url, downloading on first use. Concurrent
// callers may download the same URL twice; the cache stays consistent
// either way.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	if data, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := f.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("fetch failed with status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch failed with status %d", resp.StatusCode)
			}

			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	f.logger.Debug("downloaded image", "url", url, "bytes", len(data))

	f.mu.Lock()
	f.cache[url] = data
	f.mu.Unlock()
	return data, nil
}

// CacheSize reports how many URLs are cached.
func (f *Fetcher) CacheSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}
