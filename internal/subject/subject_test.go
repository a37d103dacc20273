package subject

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImagePage(t *testing.T) {
	s, err := Decode("drawing_p1.png", pngBytes(t, 40, 30))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !s.IsImage() {
		t.Fatalf("expected an image subject, got kind %v", s.Kind)
	}
	if s.Width != 40 || s.Height != 30 {
		t.Errorf("intrinsic size = %dx%d, want 40x30", s.Width, s.Height)
	}
	if s.Masks == nil || s.Masks.Len() != 0 {
		t.Errorf("new subject should own an empty mask collection")
	}
}

func TestDecodeCorruptImageFails(t *testing.T) {
	if _, err := Decode("broken.png", []byte("not a png")); err == nil {
		t.Fatalf("expected a decode error for corrupt bytes")
	}
}

func TestNonImagePagesPassThrough(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"housing.stl", KindModel3D},
		{"manual.pdf", KindPDF},
		{"bom.xlsx", KindTable},
		{"readme.txt", KindUnknown},
	}
	for _, tt := range tests {
		s, err := Decode(tt.name, []byte("payload"))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if s.Kind != tt.want {
			t.Errorf("%s: kind = %v, want %v", tt.name, s.Kind, tt.want)
		}
		if s.IsImage() {
			t.Errorf("%s: non-image subject claims image capability", tt.name)
		}
		if string(s.Raw) != "payload" {
			t.Errorf("%s: original bytes not retained", tt.name)
		}
	}
}

func TestKindFromFilenameCaseInsensitive(t *testing.T) {
	if kindFromFilename("SCAN.TIF") != KindImage {
		t.Errorf("uppercase extension not recognized")
	}
}
