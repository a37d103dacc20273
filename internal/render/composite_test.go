package render

import (
	"image"
	"image/color"
	"testing"

	"drawing-redactor/internal/mask"
	"drawing-redactor/pkg/geometry"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 3), uint8(y * 5), 200, 255})
		}
	}
	return img
}

func TestExportWithZeroMasksPreservesPixels(t *testing.T) {
	src := testImage(64, 48)
	out := Composite(src, nil, Options{Target: TargetExport})
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed: %v -> %v", x, y, src.RGBAAt(x, y), out.RGBAAt(x, y))
			}
		}
	}
}

func TestFullImageMaskLeavesNoOriginalPixels(t *testing.T) {
	src := testImage(64, 48)
	masks := []mask.Rect{{ID: 1, Bounds: geometry.NormRect{X: 0, Y: 0, W: 1, H: 1}}}
	out := Composite(src, masks, Options{Target: TargetExport})
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			got := out.RGBAAt(x, y)
			if got != maskFill {
				t.Fatalf("pixel (%d,%d) = %v, not fully redacted", x, y, got)
			}
			if got.A != 255 {
				t.Fatalf("redaction fill not opaque at (%d,%d)", x, y)
			}
		}
	}
}

func TestExportIgnoresZoomAndDecorations(t *testing.T) {
	src := testImage(100, 80)
	masks := []mask.Rect{{
		ID:     1,
		Bounds: geometry.NormRect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
		Origin: mask.OriginManual,
	}}
	draft := &geometry.NormRect{X: 0.0, Y: 0.0, W: 0.2, H: 0.2}
	out := Composite(src, masks, Options{Target: TargetExport, Zoom: 0.3, Draft: draft})

	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 80 {
		t.Fatalf("export target not at intrinsic resolution: %v", out.Bounds())
	}
	// No outline on export: the border pixel of the mask is plain fill.
	if got := out.RGBAAt(25, 20); got != maskFill {
		t.Errorf("export mask edge = %v, want plain fill", got)
	}
	// No draft highlight on export.
	if got := out.RGBAAt(5, 5); got != src.RGBAAt(5, 5) {
		t.Errorf("draft leaked into export target at (5,5): %v", got)
	}
}

func TestDisplayOutlineColorsByOrigin(t *testing.T) {
	src := testImage(200, 200)
	masks := []mask.Rect{
		{ID: 1, Bounds: geometry.NormRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}, Origin: mask.OriginManual},
		{ID: 2, Bounds: geometry.NormRect{X: 0.6, Y: 0.6, W: 0.2, H: 0.2}, Origin: mask.OriginDetected},
	}
	out := Composite(src, masks, Options{Target: TargetDisplay, Zoom: 1})

	if got := out.RGBAAt(20, 20); got != outlineManual {
		t.Errorf("manual mask corner = %v, want red outline %v", got, outlineManual)
	}
	if got := out.RGBAAt(120, 120); got != outlineDetected {
		t.Errorf("detected mask corner = %v, want amber outline %v", got, outlineDetected)
	}
	// Interior is still the opaque fill on both.
	if got := out.RGBAAt(40, 40); got != maskFill {
		t.Errorf("manual mask interior = %v, want fill", got)
	}
}

func TestDisplayDraftIsTranslucentAndDistinct(t *testing.T) {
	src := testImage(100, 100)
	draft := &geometry.NormRect{X: 0.7, Y: 0.2, W: -0.4, H: 0.4} // dragged left
	out := Composite(src, nil, Options{Target: TargetDisplay, Zoom: 1, Draft: draft})

	// Normalized draft covers x [30,70), y [20,60). Interior is a blend,
	// neither the source pixel nor the opaque mask fill.
	got := out.RGBAAt(50, 40)
	if got == src.RGBAAt(50, 40) {
		t.Errorf("draft interior unchanged; highlight missing")
	}
	if got == maskFill {
		t.Errorf("draft rendered as a committed mask")
	}
	// Outside the draft the source shows through untouched.
	if got := out.RGBAAt(90, 90); got != src.RGBAAt(90, 90) {
		t.Errorf("pixel outside draft changed: %v", got)
	}
}

func TestDisplayScalesByZoom(t *testing.T) {
	src := testImage(200, 100)
	out := Composite(src, nil, Options{Target: TargetDisplay, Zoom: 0.5})
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Errorf("display at zoom 0.5 = %v, want 100x50", out.Bounds())
	}
}

func TestCompositeIsIdempotent(t *testing.T) {
	src := testImage(64, 64)
	masks := []mask.Rect{{ID: 1, Bounds: geometry.NormRect{X: 0.2, Y: 0.2, W: 0.3, H: 0.3}}}
	a := Composite(src, masks, Options{Target: TargetDisplay, Zoom: 1})
	b := Composite(src, masks, Options{Target: TargetDisplay, Zoom: 1})
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("two passes over identical inputs differ at byte %d", i)
		}
	}
}

func TestLaterMasksDrawOnTop(t *testing.T) {
	src := testImage(100, 100)
	masks := []mask.Rect{
		{ID: 1, Bounds: geometry.NormRect{X: 0.1, Y: 0.1, W: 0.5, H: 0.5}, Origin: mask.OriginDetected},
		{ID: 2, Bounds: geometry.NormRect{X: 0.1, Y: 0.1, W: 0.5, H: 0.5}, Origin: mask.OriginManual},
	}
	out := Composite(src, masks, Options{Target: TargetDisplay, Zoom: 1})
	// The later (manual) outline wins on the shared edge.
	if got := out.RGBAAt(10, 10); got != outlineManual {
		t.Errorf("z-order violated: edge = %v, want %v", got, outlineManual)
	}
}
