package correct

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redeck/redeck/internal/providers"
)

// DefaultContext biases external corrections when the caller supplies
// no slide context.
const DefaultContext = "Business presentation slide"

// Config holds corrector settings.
type Config struct {
	// LLM is the external correction capability. Nil disables the
	// second stage entirely.
	LLM providers.TextCorrector

	// Context is free text (typically the slide title) sent with each
	// batch to bias corrections.
	Context string

	Logger *slog.Logger
}

// Corrector runs the two-stage correction pipeline.
type Corrector struct {
	llm     providers.TextCorrector
	context string
	logger  *slog.Logger
}

// New creates a corrector, filling defaults.
func New(cfg Config) *Corrector {
	if cfg.Context == "" {
		cfg.Context = DefaultContext
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Corrector{
		llm:     cfg.LLM,
		context: cfg.Context,
		logger:  cfg.Logger,
	}
}

// CorrectText runs the pipeline over a single text. Garbage yields an
// empty string.
func (c *Corrector) CorrectText(ctx context.Context, text string) string {
	return c.CorrectBatch(ctx, []string{text})[0]
}

// CorrectBatch corrects texts preserving index order. Garbage entries
// map to empty strings and are excluded from the external batch; their
// positions in the result are kept. The external stage never fails the
// batch: transport errors and item-count mismatches both fall back to
// the stage-one output unchanged.
func (c *Corrector) CorrectBatch(ctx context.Context, texts []string) []string {
	results := make([]string, 0, len(texts))
	var candidates []string
	var indices []int

	for i, text := range texts {
		if IsGarbage(text) {
			results = append(results, "")
			continue
		}
		fixed, applied := ApplyRewrites(text)
		if len(applied) > 0 {
			c.logger.Debug("applied rewrite rules", "rules", applied)
		}
		results = append(results, fixed)
		if strings.TrimSpace(fixed) != "" {
			candidates = append(candidates, fixed)
			indices = append(indices, i)
		}
	}

	if c.llm == nil || len(candidates) == 0 {
		return results
	}

	corrected, err := c.llm.CorrectTexts(ctx, candidates, c.context)
	if err != nil {
		c.logger.Warn("external correction failed, keeping uncorrected text", "error", err)
		return results
	}
	if len(corrected) != len(candidates) {
		c.logger.Warn("external correction returned wrong item count, discarding batch",
			"submitted", len(candidates), "returned", len(corrected))
		return results
	}

	for n, idx := range indices {
		results[idx] = corrected[n]
	}
	return results
}
