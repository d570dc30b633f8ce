package codia

import "math"

// Transform maps source pixel coordinates onto a target canvas. X and Y
// scale independently; there is no aspect-ratio lock, since source
// elements are reported in the same anisotropic space.
type Transform struct {
	ScaleX float64
	ScaleY float64
}

// NewTransform builds the transform for a source canvas of srcW x srcH
// onto a target canvas of dstW x dstH.
func NewTransform(srcW, srcH, dstW, dstH float64) Transform {
	return Transform{
		ScaleX: dstW / srcW,
		ScaleY: dstH / srcH,
	}
}

// Point maps a source coordinate to target canvas units.
func (t Transform) Point(x, y float64) (int, int) {
	return round(x * t.ScaleX), round(y * t.ScaleY)
}

// Size maps a source dimension pair to target canvas units. Each
// element scales independently; no accumulation correction across
// siblings.
func (t Transform) Size(w, h float64) (int, int) {
	return round(w * t.ScaleX), round(h * t.ScaleY)
}

func round(v float64) int {
	return int(math.Round(v))
}
