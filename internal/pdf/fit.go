package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// MaxImageBytes is the vision API payload budget for one page image.
const MaxImageBytes = 4 * 1024 * 1024

// FitUnderBudget returns data unchanged when it fits within maxBytes.
// Otherwise it decodes the PNG and downscales both dimensions by the
// square root of the size ratio, which lands the re-encoded image near
// the budget in a single pass.
func FitUnderBudget(data []byte, maxBytes int) ([]byte, error) {
	if len(data) <= maxBytes {
		return data, nil
	}

	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode oversized page image: %w", err)
	}

	factor := math.Sqrt(float64(maxBytes) / float64(len(data)))
	bounds := src.Bounds()
	newW := int(float64(bounds.Dx()) * factor)
	newH := int(float64(bounds.Dy()) * factor)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode downscaled image: %w", err)
	}
	return buf.Bytes(), nil
}
