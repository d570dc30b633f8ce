package deck

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/redeck/redeck/internal/pptx"
	"github.com/redeck/redeck/internal/vision"
)

// Vision-path font sizes in points.
const (
	titleSize    = 36
	subtitleSize = 24
	contentSize  = 18
)

// FromStructure converts a vision structure document into a slide: a
// title band, an optional subtitle band, then one text box per content
// block at its reported page-relative position. Blocks the model did
// not measure are stacked down the content area instead.
func (b *Builder) FromStructure(ctx context.Context, doc *vision.StructureDocument) pptx.Slide {
	align := pptx.AlignLeft
	if doc.Layout == "title_only" || doc.PageType == "section_header" {
		align = pptx.AlignCenter
	}

	var boxes []pptx.TextBox

	if strings.TrimSpace(doc.Title) != "" {
		boxes = append(boxes, pptx.TextBox{
			Text:  doc.Title,
			Size:  titleSize,
			Bold:  true,
			Align: align,
			X:     emuX(0.05),
			Y:     emuY(0.05),
			W:     emuX(0.90),
			H:     emuY(0.12),
		})
	}
	if strings.TrimSpace(doc.Subtitle) != "" {
		boxes = append(boxes, pptx.TextBox{
			Text:  doc.Subtitle,
			Size:  subtitleSize,
			Align: align,
			X:     emuX(0.05),
			Y:     emuY(0.18),
			W:     emuX(0.90),
			H:     emuY(0.08),
		})
	}

	stacked := 0
	for _, blk := range doc.ContentBlocks {
		text := blockText(blk)
		if strings.TrimSpace(text) == "" {
			continue
		}

		box := pptx.TextBox{
			Text:   text,
			Size:   contentSize,
			Align:  align,
			Anchor: pptx.AnchorTop,
		}
		pos := blk.Position
		if pos.Width > 0 && pos.Height > 0 {
			box.X = emuX(pos.X)
			box.Y = emuY(pos.Y)
			box.W = emuX(pos.Width)
			box.H = emuY(pos.Height)
		} else {
			box.X = emuX(0.05)
			box.Y = emuY(0.30 + 0.12*float64(stacked))
			box.W = emuX(0.90)
			box.H = emuY(0.10)
			stacked++
		}
		boxes = append(boxes, box)
	}

	texts := make([]string, len(boxes))
	for i, box := range boxes {
		texts[i] = box.Text
	}

	var slide pptx.Slide
	for i, text := range b.correctTexts(ctx, texts) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		boxes[i].Text = text
		slide.Texts = append(slide.Texts, boxes[i])
	}
	return slide
}

// blockText renders a content block as plain lines. List items are
// prefixed and joined; other blocks use their content verbatim.
func blockText(blk vision.ContentBlock) string {
	if len(blk.Items) == 0 {
		return blk.Content
	}

	lines := make([]string, len(blk.Items))
	for i, item := range blk.Items {
		if blk.Type == "numbered_list" {
			lines[i] = fmt.Sprintf("%d. %s", i+1, item)
		} else {
			lines[i] = "• " + item
		}
	}
	return strings.Join(lines, "\n")
}

// emuX converts a page-relative horizontal fraction to EMU.
func emuX(v float64) int64 {
	return int64(math.Round(v * pptx.SlideWidth))
}

// emuY converts a page-relative vertical fraction to EMU.
func emuY(v float64) int64 {
	return int64(math.Round(v * pptx.SlideHeight))
}
