// Package pdf rasterizes PDF pages to PNG images sized for vision
// analysis.
package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the rasterization resolution. Slides are low-density,
// so 150 DPI keeps pages comfortably under the vision API size limit
// while leaving text crisp enough for OCR.
const DefaultDPI = 150

// Config holds renderer settings.
type Config struct {
	DPI    int
	Logger *slog.Logger
}

// Renderer rasterizes PDF pages via pdftoppm (poppler-utils).
type Renderer struct {
	dpi    int
	logger *slog.Logger
}

// NewRenderer creates a renderer, filling defaults.
func NewRenderer(cfg Config) *Renderer {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Renderer{dpi: cfg.DPI, logger: cfg.Logger}
}

// PageCount returns the number of pages in the PDF.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// PageCount is the package function as a method, for callers holding a
// renderer.
func (r *Renderer) PageCount(pdfPath string) (int, error) {
	return PageCount(pdfPath)
}

// Info describes a PDF for pipeline planning. Dimensions are taken
// from the first page in PDF points.
type Info struct {
	PageCount   int
	PageWidth   float64
	PageHeight  float64
	Orientation string
	Filename    string
}

// Inspect reads page count and first-page dimensions.
func Inspect(pdfPath string) (*Info, error) {
	count, err := PageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	dims, err := api.PageDimsFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	info := &Info{
		PageCount:   count,
		PageWidth:   dims[0].Width,
		PageHeight:  dims[0].Height,
		Orientation: "portrait",
		Filename:    filepath.Base(pdfPath),
	}
	if info.PageWidth > info.PageHeight {
		info.Orientation = "landscape"
	}
	return info, nil
}

// RenderPage rasterizes one page (1-indexed) and returns PNG bytes,
// downscaled when the encoding exceeds the vision API budget.
func (r *Renderer) RenderPage(pdfPath string, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "redeck-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.Command("pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	fitted, err := FitUnderBudget(data, MaxImageBytes)
	if err != nil {
		return nil, err
	}
	if len(fitted) < len(data) {
		r.logger.Debug("downscaled page image for size budget",
			"page", page, "bytes", len(data), "fitted", len(fitted))
	}
	return fitted, nil
}
