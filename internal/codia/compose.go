package codia

import "strings"

// Layer fixes the render order of a draw command.
type Layer int

const (
	LayerBackground Layer = iota
	LayerImage
	LayerText
)

// DrawCommand is one flattened, positioned render unit. Commands are
// immutable after composition except Text, which the correction pipeline
// may rewrite in place before the page is committed.
type DrawCommand struct {
	Kind  Kind
	Layer Layer

	// Source pixel space, pre-scale.
	X, Y float64
	W, H float64

	// Target canvas units, post-scale.
	ScaledX, ScaledY int
	ScaledW, ScaledH int

	// Image payload.
	ImageURL string

	// Text payload and styling.
	Text       string
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
	Color      RGB
	HAlign     string
	VAlign     string
}

// Page is the composited render plan for one source document: an
// optional background fill followed by z-ordered draw commands.
type Page struct {
	Background *RGB
	Commands   []DrawCommand
}

// Compose flattens the tree rooted at root and emits draw commands in
// fixed z-order: images first (background layer), then text (foreground),
// regardless of source interleaving. Container and Other elements are
// structural only; they are traversed for children but never rendered.
// The background fill comes from the root element's style when it is a
// solid color.
func Compose(root *Element, t Transform) Page {
	var page Page

	if root == nil {
		return page
	}

	if rgb, ok := root.BackgroundRGB(); ok {
		page.Background = &rgb
	}

	elements := Collect(root)

	for _, el := range filterKind(elements, KindImage) {
		if el.ImageURL() == "" {
			continue
		}
		page.Commands = append(page.Commands, newCommand(el, t, LayerImage))
	}

	for _, el := range filterKind(elements, KindText) {
		if strings.TrimSpace(el.Text()) == "" {
			continue
		}
		page.Commands = append(page.Commands, newCommand(el, t, LayerText))
	}

	return page
}

func newCommand(el Positioned, t Transform, layer Layer) DrawCommand {
	w, h := el.Size()

	cmd := DrawCommand{
		Kind:  el.Kind(),
		Layer: layer,
		X:     el.AbsX,
		Y:     el.AbsY,
		W:     w,
		H:     h,
	}
	cmd.ScaledX, cmd.ScaledY = t.Point(el.AbsX, el.AbsY)
	cmd.ScaledW, cmd.ScaledH = t.Size(w, h)

	switch layer {
	case LayerImage:
		cmd.ImageURL = el.ImageURL()
	case LayerText:
		cmd.Text = el.Text()
		cmd.FontFamily = SubstituteFont(el.FontFamily())
		cmd.FontSize = el.FontSize()
		cmd.Bold = el.Bold()
		cmd.Italic = el.Italic()
		cmd.Color = el.TextRGB()
		cmd.HAlign, cmd.VAlign = el.Alignment()
	}
	return cmd
}
