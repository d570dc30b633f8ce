// Package scrub paints over the vendor logo stamped into the
// bottom-right corner of exported slide PDFs. Each page is rasterized
// to sample the colors around the logo region, a gradient patch is
// synthesized from those samples, and the patch is stamped over the
// region so the cover blends into the page background.
package scrub

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/types"
	"golang.org/x/image/draw"

	"github.com/redeck/redeck/internal/pdf"
)

const (
	// DefaultLogoLeft and DefaultLogoTop bound the covered region in
	// PDF points; the region extends to the page's right and bottom
	// edges. Tuned for the 1366x768 slide exports the scrubber targets.
	DefaultLogoLeft = 1269
	DefaultLogoTop  = 747

	// renderDPI matches raster pixels to PDF points one to one.
	renderDPI = 72

	// sampleRadius is the half-width of the averaging window used when
	// sampling page colors.
	sampleRadius = 2
)

// Config holds scrubber settings.
type Config struct {
	LogoLeft float64 // region left bound in points, 0 means default
	LogoTop  float64 // region top bound in points, 0 means default
	Logger   *slog.Logger
}

// Scrubber covers a fixed page region with a color-matched gradient.
type Scrubber struct {
	left     float64
	top      float64
	renderer *pdf.Renderer
	logger   *slog.Logger
}

// New creates a scrubber, filling defaults.
func New(cfg Config) *Scrubber {
	if cfg.LogoLeft <= 0 {
		cfg.LogoLeft = DefaultLogoLeft
	}
	if cfg.LogoTop <= 0 {
		cfg.LogoTop = DefaultLogoTop
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scrubber{
		left:     cfg.LogoLeft,
		top:      cfg.LogoTop,
		renderer: pdf.NewRenderer(pdf.Config{DPI: renderDPI, Logger: cfg.Logger}),
		logger:   cfg.Logger,
	}
}

// DefaultOutput derives the output path for a cleaned copy:
// deck.pdf becomes deck_clean.pdf.
func DefaultOutput(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_clean" + ext
}

// Clean writes a copy of inputPath with the logo region covered on
// every page and returns the output path. An empty outputPath derives
// one next to the input.
func (s *Scrubber) Clean(inputPath, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = DefaultOutput(inputPath)
	}

	dims, err := api.PageDimsFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	stamps := make(map[int]*model.Watermark, len(dims))
	for i, dim := range dims {
		page := i + 1
		if dim.Width-s.left < 1 || dim.Height-s.top < 1 {
			s.logger.Warn("page smaller than logo region, skipping", "page", page)
			continue
		}

		data, err := s.renderer.RenderPage(inputPath, page)
		if err != nil {
			return "", fmt.Errorf("failed to rasterize page %d: %w", page, err)
		}
		pix, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to decode page %d raster: %w", page, err)
		}

		patch, err := s.patchForPage(pix, dim.Width, dim.Height)
		if err != nil {
			return "", fmt.Errorf("failed to build patch for page %d: %w", page, err)
		}

		desc := fmt.Sprintf("pos:bl, off:%g 0, sc:1 abs, rot:0", s.left)
		wm, err := api.ImageWatermarkForReader(bytes.NewReader(patch), desc, true, false, types.POINTS)
		if err != nil {
			return "", fmt.Errorf("failed to configure stamp for page %d: %w", page, err)
		}
		stamps[page] = wm
	}

	if len(stamps) == 0 {
		return "", fmt.Errorf("no page is large enough for the logo region")
	}
	if err := api.AddWatermarksMapFile(inputPath, outputPath, stamps, nil); err != nil {
		return "", fmt.Errorf("failed to stamp pages: %w", err)
	}

	s.logger.Info("scrubbed logo", "pages", len(stamps), "output", outputPath)
	return outputPath, nil
}

// patchForPage synthesizes the cover patch for one page. Sampling and
// gradient construction happen in raster space; the finished patch is
// rescaled to the stamp size in points when raster rounding makes the
// two disagree.
func (s *Scrubber) patchForPage(pix image.Image, pageW, pageH float64) ([]byte, error) {
	b := pix.Bounds()
	rasterW, rasterH := b.Dx(), b.Dy()

	left := int(s.left * float64(rasterW) / pageW)
	top := int(s.top * float64(rasterH) / pageH)
	w := rasterW - left
	h := rasterH - top
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("logo region lies outside the %dx%d raster", rasterW, rasterH)
	}

	// Sample just outside the region: the left edge at two heights,
	// the top edge at two positions.
	leftTop := sampleAveraged(pix, left-2, top+2)
	leftBot := sampleAveraged(pix, left-2, rasterH-2)
	topLeft := sampleAveraged(pix, left+2, top-2)
	topRight := sampleAveraged(pix, rasterW-2, top-2)

	patch := gradientImage(w, h, leftTop, leftBot, topLeft, topRight)

	stampW := int(pageW - s.left)
	stampH := int(pageH - s.top)
	if stampW != w || stampH != h {
		dst := image.NewRGBA(image.Rect(0, 0, stampW, stampH))
		draw.BiLinear.Scale(dst, dst.Bounds(), patch, patch.Bounds(), draw.Src, nil)
		patch = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, patch); err != nil {
		return nil, fmt.Errorf("failed to encode cover patch: %w", err)
	}
	return buf.Bytes(), nil
}

// sampleAveraged averages the colors of a square window around (x, y),
// clamped to the image bounds, to reduce noise from dithering and
// compression artifacts.
func sampleAveraged(img image.Image, x, y int) [3]int {
	b := img.Bounds()
	var sum [3]int
	n := 0
	for dx := -sampleRadius; dx <= sampleRadius; dx++ {
		for dy := -sampleRadius; dy <= sampleRadius; dy++ {
			sx := max(0, min(x+dx, b.Dx()-1))
			sy := max(0, min(y+dy, b.Dy()-1))
			r, g, bl, _ := img.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
			sum[0] += int(r >> 8)
			sum[1] += int(g >> 8)
			sum[2] += int(bl >> 8)
			n++
		}
	}
	return [3]int{sum[0] / n, sum[1] / n, sum[2] / n}
}

// gradientImage fills a w by h region with a bilinear blend of the four
// edge samples. The left edge dominates near the left border and the
// top edge near the top; at the far corner both distance weights vanish
// and the blend splits evenly.
func gradientImage(w, h int, leftTop, leftBot, topLeft, topRight [3]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		ny := float64(y) / float64(max(h-1, 1))
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(max(w-1, 1))

			var left, top [3]int
			for c := 0; c < 3; c++ {
				left[c] = int(float64(leftTop[c])*(1-ny) + float64(leftBot[c])*ny)
				top[c] = int(float64(topLeft[c])*(1-nx) + float64(topRight[c])*nx)
			}

			wLeft := 1 - nx
			wTop := 1 - ny
			if total := wLeft + wTop; total > 0 {
				wLeft /= total
				wTop /= total
			} else {
				wLeft, wTop = 0.5, 0.5
			}

			img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(left[0])*wLeft + float64(top[0])*wTop),
				G: uint8(float64(left[1])*wLeft + float64(top[1])*wTop),
				B: uint8(float64(left[2])*wLeft + float64(top[2])*wTop),
				A: 255,
			})
		}
	}
	return img
}
