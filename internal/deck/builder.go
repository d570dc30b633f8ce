// Package deck turns parsed page structures into presentation slides:
// either a Codia visual-struct tree resolved through the coordinate
// transform, or a vision structure document placed on the normalized
// page grid. Text payloads pass through the correction pipeline before
// they are committed to a slide.
package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redeck/redeck/internal/codia"
	"github.com/redeck/redeck/internal/correct"
	"github.com/redeck/redeck/internal/fetch"
	"github.com/redeck/redeck/internal/pptx"
)

// Config holds deck builder settings.
type Config struct {
	// Corrector rewrites text payloads before they are committed. Nil
	// limits text filtering to garbage classification.
	Corrector *correct.Corrector

	// Fetcher downloads picture content for image elements. Nil skips
	// every picture.
	Fetcher *fetch.Fetcher

	Logger *slog.Logger
}

// Builder assembles pptx slides from page structures.
type Builder struct {
	corrector *correct.Corrector
	fetcher   *fetch.Fetcher
	logger    *slog.Logger
}

// New creates a deck builder.
func New(cfg Config) *Builder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Builder{
		corrector: cfg.Corrector,
		fetcher:   cfg.Fetcher,
		logger:    cfg.Logger,
	}
}

// FromCodia converts one visual-struct document into a slide. Draw order
// is fixed: background fill, pictures, then text boxes. A picture whose
// download fails is skipped with a warning and the rest of the slide is
// unaffected.
func (b *Builder) FromCodia(ctx context.Context, doc *codia.Document) pptx.Slide {
	t := codia.NewTransform(doc.SourceWidth(), doc.SourceHeight(), pptx.SlideWidth, pptx.SlideHeight)
	page := codia.Compose(doc.Root(), t)

	var slide pptx.Slide
	if page.Background != nil {
		slide.Background = &pptx.RGB{R: page.Background.R, G: page.Background.G, B: page.Background.B}
	}

	var textCmds []codia.DrawCommand
	for _, cmd := range page.Commands {
		switch cmd.Layer {
		case codia.LayerImage:
			img, err := b.fetchImage(ctx, cmd)
			if err != nil {
				b.logger.Warn("failed to fetch image, skipping", "url", cmd.ImageURL, "error", err)
				continue
			}
			slide.Images = append(slide.Images, img)
		case codia.LayerText:
			textCmds = append(textCmds, cmd)
		}
	}

	texts := make([]string, len(textCmds))
	for i, cmd := range textCmds {
		texts[i] = cmd.Text
	}
	for i, text := range b.correctTexts(ctx, texts) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		cmd := textCmds[i]
		slide.Texts = append(slide.Texts, pptx.TextBox{
			Text:   text,
			Font:   cmd.FontFamily,
			Size:   cmd.FontSize,
			Bold:   cmd.Bold,
			Italic: cmd.Italic,
			Color:  pptx.RGB{R: cmd.Color.R, G: cmd.Color.G, B: cmd.Color.B},
			Align:  mapAlign(cmd.HAlign),
			Anchor: mapAnchor(cmd.VAlign),
			X:      int64(cmd.ScaledX),
			Y:      int64(cmd.ScaledY),
			W:      int64(cmd.ScaledW),
			H:      int64(cmd.ScaledH),
		})
	}

	return slide
}

func (b *Builder) fetchImage(ctx context.Context, cmd codia.DrawCommand) (pptx.Image, error) {
	if b.fetcher == nil {
		return pptx.Image{}, fmt.Errorf("no image fetcher configured")
	}
	data, err := b.fetcher.Get(ctx, cmd.ImageURL)
	if err != nil {
		return pptx.Image{}, err
	}
	return pptx.Image{
		Data: data,
		X:    int64(cmd.ScaledX),
		Y:    int64(cmd.ScaledY),
		W:    int64(cmd.ScaledW),
		H:    int64(cmd.ScaledH),
	}, nil
}

// correctTexts runs the correction pipeline over a page's texts, or
// plain garbage classification when no corrector is configured. Garbage
// maps to an empty string either way.
func (b *Builder) correctTexts(ctx context.Context, texts []string) []string {
	if len(texts) == 0 {
		return texts
	}
	if b.corrector != nil {
		return b.corrector.CorrectBatch(ctx, texts)
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		if correct.IsGarbage(text) {
			continue
		}
		out[i] = text
	}
	return out
}

// mapAlign maps a detected horizontal alignment tag onto a paragraph
// alignment.
func mapAlign(tag string) pptx.Align {
	switch tag {
	case "CENTER":
		return pptx.AlignCenter
	case "RIGHT":
		return pptx.AlignRight
	default:
		return pptx.AlignLeft
	}
}

// mapAnchor maps a detected vertical alignment tag onto a body anchor.
func mapAnchor(tag string) pptx.Anchor {
	switch tag {
	case "TOP":
		return pptx.AnchorTop
	case "BOTTOM":
		return pptx.AnchorBottom
	default:
		return pptx.AnchorMiddle
	}
}
