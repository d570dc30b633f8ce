// Package pptx writes minimal PowerPoint (OOXML) presentations: a fixed
// master/layout/theme scaffold plus one slide part per page, each carrying
// a background fill, positioned pictures, and positioned text boxes.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// English Metric Units. OOXML positions everything in EMU.
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700

	// Standard 4:3 deck, 10in x 7.5in.
	SlideWidth  = 9144000
	SlideHeight = 6858000
)

// Fallback run properties for text boxes that carry no explicit styling.
const (
	DefaultFont     = "Arial"
	DefaultFontSize = 18.0
)

// Align is a paragraph-level horizontal alignment tag.
type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
	AlignRight  Align = "r"
)

// Anchor is the vertical anchor of a text body within its box.
type Anchor string

const (
	AnchorTop    Anchor = "t"
	AnchorMiddle Anchor = "ctr"
	AnchorBottom Anchor = "b"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as an OOXML srgbClr value.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Image is a positioned picture. Data must be encoded PNG bytes.
type Image struct {
	Data       []byte
	X, Y, W, H int64 // EMU
}

// TextBox is a positioned text frame. Text may span multiple lines; each
// line becomes its own paragraph.
type TextBox struct {
	Text       string
	Font       string
	Size       float64 // points
	Bold       bool
	Italic     bool
	Color      RGB
	Align      Align
	Anchor     Anchor
	X, Y, W, H int64 // EMU
}

// Slide is one page of the deck: an optional solid background fill,
// pictures in z-order, then text boxes on top of them.
type Slide struct {
	Background *RGB
	Images     []Image
	Texts      []TextBox
}

// Builder assembles a PowerPoint file from slides.
type Builder struct {
	slides []Slide
}

// NewBuilder creates an empty presentation builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddSlide appends a slide to the deck.
func (b *Builder) AddSlide(s Slide) {
	b.slides = append(b.slides, s)
}

// SlideCount returns the number of slides added so far.
func (b *Builder) SlideCount() int {
	return len(b.slides)
}

// Build generates the presentation and writes it to the specified path.
func (b *Builder) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := b.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes the presentation package to a writer.
func (b *Builder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	// 1. Content types for every part in the package
	if err := writePart(zw, "[Content_Types].xml", b.generateContentTypes()); err != nil {
		return err
	}

	// 2. Package root relationships
	if err := writePart(zw, "_rels/.rels", rootRels); err != nil {
		return err
	}

	// 3. Presentation part and its slide references
	if err := writePart(zw, "ppt/presentation.xml", b.generatePresentation()); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/_rels/presentation.xml.rels", b.generatePresentationRels()); err != nil {
		return err
	}

	// 4. Fixed scaffold: one blank master, one blank layout, one theme
	if err := writePart(zw, "ppt/slideMasters/slideMaster1.xml", slideMasterXML); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/slideLayouts/slideLayout1.xml", slideLayoutXML); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/theme/theme1.xml", themeXML); err != nil {
		return err
	}

	// 5. Slide parts, their relationships, and picture media
	if err := b.writeSlides(zw); err != nil {
		return err
	}
	return zw.Close()
}

// BuildToBuffer generates the presentation and returns it as a byte buffer.
func (b *Builder) BuildToBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := b.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeSlides writes each slide part with its relationships and media.
// Picture media is numbered globally across the deck; relationship IDs
// restart per slide with rId1 reserved for the layout.
func (b *Builder) writeSlides(zw *zip.Writer) error {
	media := 0
	for i, slide := range b.slides {
		n := i + 1
		firstImage := media + 1

		name := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		if err := writePart(zw, name, generateSlideXML(slide)); err != nil {
			return fmt.Errorf("failed to write slide %d: %w", n, err)
		}

		relsName := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)
		if err := writePart(zw, relsName, generateSlideRels(slide, firstImage)); err != nil {
			return fmt.Errorf("failed to write slide %d relationships: %w", n, err)
		}

		for j, img := range slide.Images {
			mediaName := fmt.Sprintf("ppt/media/image%d.png", firstImage+j)
			mw, err := zw.Create(mediaName)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", mediaName, err)
			}
			if _, err := mw.Write(img.Data); err != nil {
				return fmt.Errorf("failed to write %s: %w", mediaName, err)
			}
		}
		media += len(slide.Images)
	}
	return nil
}

// writePart writes one named part into the package.
func writePart(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	_, err = w.Write([]byte(content))
	return err
}
