// Package render composites a source drawing and its mask rectangles onto a
// raster. One algorithm serves two targets: the on-screen display at the
// current zoom, and the full-resolution offscreen surface used for export.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"drawing-redactor/internal/mask"
	"drawing-redactor/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// Target selects which composition variant to produce.
type Target int

const (
	// TargetDisplay scales by the view zoom and adds review decorations:
	// colored outlines on committed masks and the in-progress highlight.
	TargetDisplay Target = iota
	// TargetExport always renders at the intrinsic resolution with plain
	// opaque fills, independent of whatever the user was viewing.
	TargetExport
)

var (
	// maskFill must hide the covered content completely; an export is only
	// as good as this being opaque.
	maskFill = color.RGBA{R: 24, G: 24, B: 26, A: 255}

	outlineManual   = color.RGBA{R: 214, G: 48, B: 49, A: 255}  // red
	outlineDetected = color.RGBA{R: 253, G: 176, B: 10, A: 255} // amber

	draftTint = color.RGBA{R: 52, G: 120, B: 246, A: 255}
)

// Options control a composition pass.
type Options struct {
	Target Target
	// Zoom scales the display target; ignored for export. Values <= 0 are
	// treated as 1.
	Zoom float64
	// Draft is the in-progress rectangle, drawn on the display target only.
	// Extents may still be signed mid-drag.
	Draft *geometry.NormRect
}

// Composite renders the source image with all mask rectangles applied, in
// collection order so later entries draw on top. It is a pure function of
// its inputs and may be invoked repeatedly without side effects.
func Composite(src image.Image, masks []mask.Rect, opts Options) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)

	stroke := strokeWidth(w, h)
	for _, m := range masks {
		r := m.Bounds.PixelBounds(w, h)
		if r.Empty() {
			continue
		}
		fillRect(out, r, maskFill)
		if opts.Target == TargetDisplay {
			col := outlineManual
			if m.Origin == mask.OriginDetected {
				col = outlineDetected
			}
			strokeRect(out, r, col, stroke)
		}
	}

	if opts.Target == TargetDisplay && opts.Draft != nil {
		d := geometry.NormalizeDrag(*opts.Draft)
		if r := d.PixelBounds(w, h); !r.Empty() {
			tintRect(out, r, draftTint, 96)
			strokeRect(out, r, draftTint, stroke)
		}
	}

	if opts.Target == TargetDisplay && opts.Zoom > 0 && opts.Zoom != 1 {
		sw := int(float64(w) * opts.Zoom)
		sh := int(float64(h) * opts.Zoom)
		if sw < 1 {
			sw = 1
		}
		if sh < 1 {
			sh = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, sw, sh))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), out, out.Bounds(), xdraw.Src, nil)
		return scaled
	}
	return out
}

// strokeWidth scales the outline thickness with image size so outlines look
// the same whether the page is a phone photo or a 600 DPI scan.
func strokeWidth(w, h int) int {
	m := w
	if h < m {
		m = h
	}
	s := m / 400
	if s < 2 {
		s = 2
	}
	return s
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// tintRect blends col over the rectangle at the given alpha, leaving the
// underlying content visible. Used only for the in-progress highlight.
func tintRect(dst *image.RGBA, r image.Rectangle, col color.RGBA, alpha uint8) {
	over := color.RGBA{R: col.R, G: col.G, B: col.B, A: alpha}
	draw.Draw(dst, r, &image.Uniform{C: over}, image.Point{}, draw.Over)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, col color.RGBA, t int) {
	bounds := dst.Bounds()
	for i := 0; i < t; i++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(dst, bounds, x, r.Min.Y+i, col)
			setClipped(dst, bounds, x, r.Max.Y-1-i, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(dst, bounds, r.Min.X+i, y, col)
			setClipped(dst, bounds, r.Max.X-1-i, y, col)
		}
	}
}

func setClipped(dst *image.RGBA, bounds image.Rectangle, x, y int, col color.RGBA) {
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		dst.SetRGBA(x, y, col)
	}
}
