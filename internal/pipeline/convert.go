// Package pipeline orchestrates deck conversion: each PDF page is
// rasterized, analyzed by the vision model, and rebuilt as an editable
// slide; the assembled presentation lands in the output directory.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redeck/redeck/internal/deck"
	"github.com/redeck/redeck/internal/home"
	"github.com/redeck/redeck/internal/pptx"
	"github.com/redeck/redeck/internal/vision"
)

// Rasterizer renders PDF pages for analysis. *pdf.Renderer satisfies
// it.
type Rasterizer interface {
	PageCount(pdfPath string) (int, error)
	RenderPage(pdfPath string, page int) ([]byte, error)
}

// Config holds pipeline settings.
type Config struct {
	Home       *home.Dir
	Rasterizer Rasterizer
	Analyzer   *vision.Analyzer
	Deck       *deck.Builder
	Logger     *slog.Logger
}

// Pipeline converts exported PDFs into editable presentations.
type Pipeline struct {
	home       *home.Dir
	rasterizer Rasterizer
	analyzer   *vision.Analyzer
	deck       *deck.Builder
	logger     *slog.Logger
}

// New creates a pipeline. Home, Rasterizer, Analyzer and Deck are
// required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Home == nil {
		return nil, fmt.Errorf("home directory is required")
	}
	if cfg.Rasterizer == nil {
		return nil, fmt.Errorf("rasterizer is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if cfg.Deck == nil {
		return nil, fmt.Errorf("deck builder is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		home:       cfg.Home,
		rasterizer: cfg.Rasterizer,
		analyzer:   cfg.Analyzer,
		deck:       cfg.Deck,
		logger:     cfg.Logger,
	}, nil
}

// Options tunes one conversion run.
type Options struct {
	// OutputPath overrides the artifact location. Empty derives
	// <input stem>.pptx under the home output directory.
	OutputPath string
}

// Summary reports what one conversion run produced.
type Summary struct {
	RunID      string
	OutputPath string
	Pages      int
	Converted  int // pages whose structure came from the vision model
	Fallback   int // pages degraded to a placeholder slide
	Duration   time.Duration
}

// DeriveOutputName maps deck.pdf to deck.pptx.
func DeriveOutputName(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pptx"
}

// Convert runs the whole pipeline over one PDF. A page whose vision
// analysis exhausts its retries degrades to a placeholder slide and
// the run continues; rasterization and artifact I/O failures abort
// the run.
func (p *Pipeline) Convert(ctx context.Context, pdfPath string, opts Options) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = p.home.OutputPath(DeriveOutputName(pdfPath))
	}

	pageCount, err := p.rasterizer.PageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pdfPath, err)
	}
	if err := p.home.EnsureRunDir(runID); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	p.logger.Info("starting conversion", "run_id", runID, "input", pdfPath, "pages", pageCount)

	builder := pptx.NewBuilder()
	summary := &Summary{RunID: runID, OutputPath: outputPath, Pages: pageCount}

	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		image, err := p.rasterizer.RenderPage(pdfPath, page)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}
		if err := os.WriteFile(p.home.PageImagePath(runID, page), image, 0o644); err != nil {
			return nil, fmt.Errorf("failed to save page %d image: %w", page, err)
		}

		doc, err := p.analyzer.AnalyzePage(ctx, image, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.logger.Warn("page analysis exhausted retries, degrading to placeholder",
				"page", page, "error", err)
			doc = vision.Fallback(page)
			summary.Fallback++
		} else {
			summary.Converted++
		}

		if err := p.saveStructure(runID, page, doc); err != nil {
			return nil, err
		}

		builder.AddSlide(p.deck.FromStructure(ctx, doc))
		p.logger.Debug("page converted", "run_id", runID, "page", page)
	}

	if err := builder.Build(outputPath); err != nil {
		return nil, fmt.Errorf("failed to write presentation: %w", err)
	}

	summary.Duration = time.Since(start)
	p.logger.Info("conversion complete",
		"run_id", runID,
		"output", outputPath,
		"pages", summary.Pages,
		"converted", summary.Converted,
		"fallback", summary.Fallback,
		"duration", summary.Duration)
	return summary, nil
}

// saveStructure keeps the analyzed document next to the page image so
// degraded pages can be inspected after the run.
func (p *Pipeline) saveStructure(runID string, page int, doc *vision.StructureDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode page %d structure: %w", page, err)
	}
	if err := os.WriteFile(p.home.PageStructurePath(runID, page), data, 0o644); err != nil {
		return fmt.Errorf("failed to save page %d structure: %w", page, err)
	}
	return nil
}
