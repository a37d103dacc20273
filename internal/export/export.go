// Package export flattens redacted pages to encoded images and packages
// whole projects into a single archive.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"drawing-redactor/internal/render"
	"drawing-redactor/internal/subject"
)

// Composite renders the subject's full-resolution redacted raster. The
// result never depends on the on-screen zoom; redaction fidelity is the
// same whatever the user happened to be viewing.
func Composite(s *subject.Subject) (*image.RGBA, error) {
	if !s.IsImage() {
		return nil, fmt.Errorf("%s: redaction is defined only for raster images (kind %s)", s.Name, s.Kind)
	}
	return render.Composite(s.Image, s.Masks.Rects(), render.Options{Target: render.TargetExport}), nil
}

// PNG returns the redacted page as encoded PNG bytes.
func PNG(s *subject.Subject) ([]byte, error) {
	img, err := Composite(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%s: failed to encode: %w", s.Name, err)
	}
	return buf.Bytes(), nil
}

// Write delivers the redacted page to the sink. For a single-subject
// export a composition failure is fatal and surfaces to the caller.
func Write(s *subject.Subject, w io.Writer) error {
	data, err := PNG(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
