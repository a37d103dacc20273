package geometry

import (
	"image"
	"math"
	"testing"
)

func TestNormalizeDragAllDirections(t *testing.T) {
	tests := []struct {
		name string
		in   NormRect
		want NormRect
	}{
		{"down-right", NormRect{0.2, 0.3, 0.4, 0.2}, NormRect{0.2, 0.3, 0.4, 0.2}},
		{"up-left", NormRect{0.6, 0.5, -0.4, -0.2}, NormRect{0.2, 0.3, 0.4, 0.2}},
		{"down-left", NormRect{0.6, 0.3, -0.4, 0.2}, NormRect{0.2, 0.3, 0.4, 0.2}},
		{"up-right", NormRect{0.2, 0.5, 0.4, -0.2}, NormRect{0.2, 0.3, 0.4, 0.2}},
	}
	for _, tt := range tests {
		got := NormalizeDrag(tt.in)
		if !rectNear(got, tt.want, 1e-12) {
			t.Errorf("%s: NormalizeDrag(%+v) = %+v, want %+v", tt.name, tt.in, got, tt.want)
		}
		if got.W < 0 || got.H < 0 {
			t.Errorf("%s: negative extent after normalization: %+v", tt.name, got)
		}
	}
}

func TestPointerRoundTrip(t *testing.T) {
	display := Rect{X: 17, Y: 42, Width: 800, Height: 600}
	pts := [][2]float64{{17, 42}, {417, 342}, {816.5, 641.5}, {100.25, 599}}
	for _, p := range pts {
		n := FromPointerPosition(p[0], p[1], display)
		// Treating the display rect as a 800x600 image recovers the
		// pointer-relative offset.
		px, py, _, _ := NormRect{X: n.X, Y: n.Y}.ToPixel(display.Width, display.Height)
		if math.Abs(px-(p[0]-display.X)) > 1e-9 || math.Abs(py-(p[1]-display.Y)) > 1e-9 {
			t.Errorf("round trip for %v: got (%g, %g)", p, px, py)
		}
	}
}

func TestFromPointerPositionOutsideSurface(t *testing.T) {
	display := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	n := FromPointerPosition(-30, 140, display)
	if n.X != -0.3 || n.Y != 1.4 {
		t.Errorf("expected out-of-range values to pass through, got %+v", n)
	}
}

func TestPixelBoundsClipsToImage(t *testing.T) {
	r := NormRect{X: 0.5, Y: 0.5, W: 1.0, H: 1.0} // extends past the edge
	got := r.PixelBounds(200, 100)
	want := image.Rect(100, 50, 200, 100)
	if got != want {
		t.Errorf("PixelBounds = %v, want %v", got, want)
	}
}

func TestPixelBoundsEmptyOutside(t *testing.T) {
	r := NormRect{X: 1.5, Y: 1.5, W: 0.2, H: 0.2}
	if !r.PixelBounds(200, 100).Empty() {
		t.Errorf("expected empty bounds for rectangle outside the image")
	}
}

func rectNear(a, b NormRect, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.W-b.W) <= tol && math.Abs(a.H-b.H) <= tol
}
