package main

import (
	"log/slog"
	"os"

	"github.com/redeck/redeck/internal/config"
	"github.com/redeck/redeck/internal/correct"
	"github.com/redeck/redeck/internal/deck"
	"github.com/redeck/redeck/internal/fetch"
	"github.com/redeck/redeck/internal/home"
	"github.com/redeck/redeck/internal/pdf"
	"github.com/redeck/redeck/internal/pipeline"
	"github.com/redeck/redeck/internal/providers"
	"github.com/redeck/redeck/internal/vision"
)

// setup loads configuration and builds the logger every command shares.
func setup() (*config.Config, *slog.Logger, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := mgr.Get()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	return cfg, logger, nil
}

// setupHome resolves the home directory and creates its layout.
func setupHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

// buildDeck wires the correction and fetch stages into a deck builder.
// Regex correction is always on; the LLM stage joins when enabled by
// flag or config.
func buildDeck(cfg *config.Config, llmCorrect bool, logger *slog.Logger) (*deck.Builder, error) {
	var llm providers.TextCorrector
	if llmCorrect || cfg.Correction.LLM {
		var err error
		llm, err = cfg.NewCorrector()
		if err != nil {
			return nil, err
		}
	}

	corrector := correct.New(correct.Config{
		LLM:     llm,
		Context: cfg.Correction.Context,
		Logger:  logger,
	})
	fetcher := fetch.New(fetch.Config{
		Timeout:    cfg.Fetch.Timeout(),
		Attempts:   uint(cfg.Fetch.Attempts),
		RetryDelay: cfg.Fetch.Delay(),
		Logger:     logger,
	})

	return deck.New(deck.Config{
		Corrector: corrector,
		Fetcher:   fetcher,
		Logger:    logger,
	}), nil
}

// buildAnalyzer wires the configured vision client into an analyzer.
func buildAnalyzer(cfg *config.Config, logger *slog.Logger) (*vision.Analyzer, error) {
	client, err := cfg.NewVisionClient()
	if err != nil {
		return nil, err
	}
	return vision.New(vision.Config{
		Client:     client,
		MaxRetries: cfg.Vision.MaxRetries,
		RetryDelay: cfg.Vision.RetryDelay(),
		Logger:     logger,
	}), nil
}

// buildPipeline assembles the full PDF conversion pipeline.
func buildPipeline(h *home.Dir, cfg *config.Config, llmCorrect bool, logger *slog.Logger) (*pipeline.Pipeline, error) {
	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return nil, err
	}
	deckBuilder, err := buildDeck(cfg, llmCorrect, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Home:       h,
		Rasterizer: pdf.NewRenderer(pdf.Config{DPI: cfg.Render.DPI, Logger: logger}),
		Analyzer:   analyzer,
		Deck:       deckBuilder,
		Logger:     logger,
	})
}
