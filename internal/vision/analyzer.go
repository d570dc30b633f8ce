// Package vision infers the semantic structure of slide images through
// a vision model, shielding callers from transient API failures with
// bounded retries, response repair, and schema validation.
package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redeck/redeck/internal/providers"
)

// Config holds analyzer settings.
type Config struct {
	// Client performs the raw vision call.
	Client providers.VisionClient

	// MaxRetries is the number of retries after the first attempt, so
	// a page sees MaxRetries+1 attempts in total.
	MaxRetries int

	// RetryDelay is the base backoff delay; rate-limited attempt n
	// sleeps RetryDelay * 2^n.
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Analyzer turns page images into validated structure documents.
type Analyzer struct {
	client     providers.VisionClient
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	// sleep is swapped out in tests to observe the backoff schedule.
	sleep func(time.Duration)
}

// New creates an analyzer, filling defaults.
func New(cfg Config) *Analyzer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Analyzer{
		client:     cfg.Client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		sleep:      time.Sleep,
	}
}

// AnalyzePage submits the page image and returns its structure
// document. Parse failures, validation failures, and API errors all
// retry up to the configured bound; rate-limit errors back off
// exponentially first, other errors retry immediately. After the last
// attempt the page fails with a terminal PageAnalysisError and the
// caller chooses whether to substitute Fallback.
func (a *Analyzer) AnalyzePage(ctx context.Context, image []byte, pageNum int) (*StructureDocument, error) {
	var lastErr error

	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		text, err := a.client.GenerateVision(ctx, StructurePrompt, image)
		if err != nil {
			lastErr = err
			a.logger.Warn("vision call failed", "page", pageNum, "attempt", attempt+1, "error", err)

			if isRateLimitSignal(err) {
				delay := a.retryDelay * time.Duration(1<<attempt)
				a.logger.Info("rate limited, backing off", "page", pageNum, "delay", delay)
				a.sleep(delay)
			}
			continue
		}

		doc, err := ParseStructureDocument(text)
		if err != nil {
			lastErr = err
			a.logger.Warn("vision response rejected", "page", pageNum, "attempt", attempt+1, "error", err)
			continue
		}

		a.logger.Debug("page structure analyzed",
			"page", pageNum, "page_type", doc.PageType, "blocks", len(doc.ContentBlocks))
		return doc, nil
	}

	return nil, &PageAnalysisError{Page: pageNum, Attempts: a.maxRetries + 1, Last: lastErr}
}

// PageAnalysisError is the terminal failure for one page after all
// attempts are spent.
type PageAnalysisError struct {
	Page     int
	Attempts int
	Last     error
}

func (e *PageAnalysisError) Error() string {
	return fmt.Sprintf("failed to analyze page %d after %d attempts, last error: %v", e.Page, e.Attempts, e.Last)
}

func (e *PageAnalysisError) Unwrap() error {
	return e.Last
}

// isRateLimitSignal reports whether err carries a rate-limit or quota
// signal, by type when available and by message text otherwise.
func isRateLimitSignal(err error) bool {
	if _, ok := providers.IsRateLimitError(err); ok {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}
