// Package codia models the visual-struct document tree produced by the
// Codia structure API: a nested element graph carrying absolute pixel
// coordinates, style hints, and text/image content for one page.
package codia

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source canvas dimensions. Width is normally carried in the document
// configuration; height never is, so the standard envelope applies.
const (
	DefaultBaseWidth = 2867
	BaseHeight       = 1600
)

// Kind classifies an element for rendering.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindText
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindText:
		return "Text"
	case KindContainer:
		return "Container"
	default:
		return "Other"
	}
}

// Document is the top-level visual-struct envelope.
type Document struct {
	VisualStruct VisualStruct `json:"visual_struct"`
}

// VisualStruct wraps the page configuration and the element tree root.
type VisualStruct struct {
	Configuration Configuration `json:"configuration"`
	VisualElement *Element      `json:"visualElement"`
}

// Configuration carries page-level settings. Only the base width is
// populated by the upstream service.
type Configuration struct {
	BaseWidth float64 `json:"baseWidth"`
}

// Element is one node in the visual tree. Children are exclusively owned
// by their parent; the structure is a tree, never a DAG.
type Element struct {
	ElementType   string       `json:"elementType"`
	LayoutConfig  LayoutConfig `json:"layoutConfig"`
	StyleConfig   StyleConfig  `json:"styleConfig"`
	ContentData   ContentData  `json:"contentData"`
	ChildElements []*Element   `json:"childElements"`
}

// LayoutConfig holds positioning attributes.
type LayoutConfig struct {
	AbsoluteAttrs AbsoluteAttrs `json:"absoluteAttrs"`
}

// AbsoluteAttrs carries the node's coordinate in the page's absolute
// frame. OrginCoord (upstream spelling) is the original position and is
// preferred over Coord when present.
type AbsoluteAttrs struct {
	OrginCoord []float64 `json:"orginCoord"`
	Coord      []float64 `json:"coord"`
}

// StyleConfig holds sizing, text, and background styling.
type StyleConfig struct {
	WidthSpec      *DimensionSpec  `json:"widthSpec"`
	HeightSpec     *DimensionSpec  `json:"heightSpec"`
	TextConfig     *TextConfig     `json:"textConfig"`
	TextColor      *TextColor      `json:"textColor"`
	BackgroundSpec *BackgroundSpec `json:"backgroundSpec"`
}

// DimensionSpec is a single measured dimension in source pixels.
type DimensionSpec struct {
	Value float64 `json:"value"`
}

// TextConfig holds font and alignment attributes for text elements.
// TextAlign is [horizontal, vertical].
type TextConfig struct {
	FontFamily string   `json:"fontFamily"`
	FontSize   float64  `json:"fontSize"`
	FontStyle  string   `json:"fontStyle"`
	TextAlign  []string `json:"textAlign"`
}

// TextColor is the detected foreground color.
type TextColor struct {
	RGBValues []int `json:"rgbValues"`
}

// BackgroundSpec describes the element background. Type "COLOR" means a
// solid fill; other types carry no renderable fill.
type BackgroundSpec struct {
	Type            string           `json:"type"`
	BackgroundColor *BackgroundColor `json:"backgroundColor"`
}

// BackgroundColor is a solid fill color.
type BackgroundColor struct {
	RGB []int `json:"rgb"`
}

// ContentData holds the element payload: an image source URL or a text
// value, never both.
type ContentData struct {
	ImageSource string `json:"imageSource"`
	TextValue   string `json:"textValue"`
}

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// ParseDocument decodes a visual-struct JSON document. A payload that is
// a bare element tree (no envelope) is accepted and wrapped.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse visual struct: %w", err)
	}
	if doc.VisualStruct.VisualElement != nil {
		return &doc, nil
	}

	// Bare root fallback: the payload is the element itself.
	var root Element
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse visual element: %w", err)
	}
	if root.ElementType == "" && len(root.ChildElements) == 0 {
		return nil, fmt.Errorf("document contains no visual element")
	}
	doc.VisualStruct.VisualElement = &root
	return &doc, nil
}

// Root returns the element tree root, or nil for an empty document.
func (d *Document) Root() *Element {
	if d == nil {
		return nil
	}
	return d.VisualStruct.VisualElement
}

// SourceWidth returns the source canvas width in pixels.
func (d *Document) SourceWidth() float64 {
	if d == nil || d.VisualStruct.Configuration.BaseWidth <= 0 {
		return DefaultBaseWidth
	}
	return d.VisualStruct.Configuration.BaseWidth
}

// SourceHeight returns the source canvas height in pixels. The upstream
// configuration never carries a height, so this is always the envelope
// constant.
func (d *Document) SourceHeight() float64 {
	return BaseHeight
}

// Kind parses the element type tag.
func (e *Element) Kind() Kind {
	switch e.ElementType {
	case "Image":
		return KindImage
	case "Text":
		return KindText
	case "Container":
		return KindContainer
	default:
		return KindOther
	}
}

// Position resolves the node's coordinate in the absolute page frame:
// orginCoord when the key is present, else coord, else the origin.
func (e *Element) Position() (x, y float64) {
	attrs := e.LayoutConfig.AbsoluteAttrs
	coord := attrs.Coord
	if attrs.OrginCoord != nil {
		coord = attrs.OrginCoord
	}
	if len(coord) < 2 {
		return 0, 0
	}
	return coord[0], coord[1]
}

// Size returns the element dimensions in source pixels, with per-kind
// defaults for elements the detector did not measure.
func (e *Element) Size() (w, h float64) {
	if e.Kind() == KindText {
		w, h = 200, 50
	} else {
		w, h = 100, 100
	}
	if e.StyleConfig.WidthSpec != nil {
		w = e.StyleConfig.WidthSpec.Value
	}
	if e.StyleConfig.HeightSpec != nil {
		h = e.StyleConfig.HeightSpec.Value
	}
	return w, h
}

// Text returns the text payload.
func (e *Element) Text() string {
	return e.ContentData.TextValue
}

// ImageURL returns the image source URL.
func (e *Element) ImageURL() string {
	return e.ContentData.ImageSource
}

// FontFamily returns the detected font family, defaulting to Arial.
func (e *Element) FontFamily() string {
	if tc := e.StyleConfig.TextConfig; tc != nil && tc.FontFamily != "" {
		return tc.FontFamily
	}
	return "Arial"
}

// FontSize returns the detected font size in points, defaulting to 12.
func (e *Element) FontSize() float64 {
	if tc := e.StyleConfig.TextConfig; tc != nil && tc.FontSize > 0 {
		return tc.FontSize
	}
	return 12
}

// Bold reports whether the detected font style implies a bold face.
func (e *Element) Bold() bool {
	return strings.Contains(strings.ToLower(e.fontStyle()), "bold")
}

// Italic reports whether the detected font style implies an italic face.
func (e *Element) Italic() bool {
	return strings.Contains(strings.ToLower(e.fontStyle()), "italic")
}

func (e *Element) fontStyle() string {
	if tc := e.StyleConfig.TextConfig; tc != nil && tc.FontStyle != "" {
		return tc.FontStyle
	}
	return "regular"
}

// Alignment returns the horizontal and vertical text alignment tags,
// defaulting to LEFT / CENTER.
func (e *Element) Alignment() (h, v string) {
	h, v = "LEFT", "CENTER"
	if tc := e.StyleConfig.TextConfig; tc != nil {
		if len(tc.TextAlign) > 0 && tc.TextAlign[0] != "" {
			h = tc.TextAlign[0]
		}
		if len(tc.TextAlign) > 1 && tc.TextAlign[1] != "" {
			v = tc.TextAlign[1]
		}
	}
	return h, v
}

// TextRGB returns the detected text color, or black when absent.
func (e *Element) TextRGB() RGB {
	tc := e.StyleConfig.TextColor
	if tc == nil || len(tc.RGBValues) < 3 {
		return RGB{}
	}
	return RGB{clamp8(tc.RGBValues[0]), clamp8(tc.RGBValues[1]), clamp8(tc.RGBValues[2])}
}

// BackgroundRGB extracts the solid background fill from the element
// style. ok is false when the background spec is absent or not a solid
// color.
func (e *Element) BackgroundRGB() (rgb RGB, ok bool) {
	spec := e.StyleConfig.BackgroundSpec
	if spec == nil || spec.Type != "COLOR" {
		return RGB{}, false
	}
	values := []int{255, 255, 255}
	if spec.BackgroundColor != nil && spec.BackgroundColor.RGB != nil {
		values = spec.BackgroundColor.RGB
	}
	if len(values) < 3 {
		return RGB{}, false
	}
	return RGB{clamp8(values[0]), clamp8(values[1]), clamp8(values[2])}, true
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
