// Package geometry provides the normalized coordinate model used throughout
// the application. Normalized coordinates are fractions of the image width
// or height in [0,1], so rectangles survive any zoom or resolution change.
package geometry

import (
	"image"
	"math"
)

// NormPoint is a point in normalized image coordinates.
type NormPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NormRect is an axis-aligned rectangle in normalized image coordinates.
// Width and Height may be negative while a drag is in progress; committed
// rectangles are always run through NormalizeDrag first.
type NormRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is a rectangle in screen or pixel coordinates, used for the display
// surface a pointer position is measured against.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains returns true if the point (px, py) lies inside the rectangle.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.Width &&
		py >= r.Y && py <= r.Y+r.Height
}

// ToPixel converts the normalized rectangle to pixel coordinates for an
// image of the given intrinsic dimensions.
func (n NormRect) ToPixel(width, height float64) (px, py, pw, ph float64) {
	return n.X * width, n.Y * height, n.W * width, n.H * height
}

// PixelBounds returns the rectangle as an image.Rectangle clipped to the
// image bounds. Rectangles stored beyond the image edge are clipped here,
// not at storage time.
func (n NormRect) PixelBounds(width, height int) image.Rectangle {
	px, py, pw, ph := n.ToPixel(float64(width), float64(height))
	r := image.Rect(
		int(math.Floor(px)),
		int(math.Floor(py)),
		int(math.Ceil(px+pw)),
		int(math.Ceil(py+ph)),
	)
	return r.Intersect(image.Rect(0, 0, width, height))
}

// FromPointerPosition converts a pointer position to normalized coordinates
// relative to the display rectangle. The result is in [0,1] while the
// pointer is over the surface; values outside that range are returned as-is
// when the pointer has left the surface mid-drag, and callers must tolerate
// them.
func FromPointerPosition(pointerX, pointerY float64, display Rect) NormPoint {
	if display.Width == 0 || display.Height == 0 {
		return NormPoint{}
	}
	return NormPoint{
		X: (pointerX - display.X) / display.Width,
		Y: (pointerY - display.Y) / display.Height,
	}
}

// NormalizeDrag resolves negative extents produced by dragging up or left
// into a canonical rectangle with non-negative width and height, shifting
// the origin so (X, Y) is always the top-left corner.
func NormalizeDrag(r NormRect) NormRect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}
