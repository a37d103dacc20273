// Package subject provides loading and classification of the pages a
// project works on: raster drawings, 3D previews, and tabular BOMs.
package subject

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"drawing-redactor/internal/mask"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Kind is the tagged variant of page types. The masking and export core
// operates only on KindImage; the other cases pass through untouched.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindPDF
	KindModel3D
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	case KindModel3D:
		return "3d model"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Subject is one loaded drawing page and the state attached to it.
type Subject struct {
	Name string // display name, usually the base filename
	Path string // original file path, empty for in-memory pages

	Kind   Kind
	Image  image.Image // decoded raster, nil unless Kind is KindImage
	Width  int         // intrinsic pixel width
	Height int         // intrinsic pixel height
	Raw    []byte      // original bytes, kept for pass-through export

	// Masks is exclusively owned by this subject.
	Masks *mask.Store

	// Audit caches the most recent audit report text for this page.
	Audit string
}

// IsImage reports whether the masking core can operate on this subject.
// Dispatch on page type is this capability check, done at the boundary.
func (s *Subject) IsImage() bool {
	return s.Kind == KindImage && s.Image != nil
}

// Load reads and decodes a page from disk.
func Load(path string) (*Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	s, err := Decode(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Decode builds a Subject from raw bytes. For image pages a decode failure
// is fatal for the page and surfaces to the caller.
func Decode(name string, data []byte) (*Subject, error) {
	s := &Subject{
		Name:  name,
		Kind:  kindFromFilename(name),
		Raw:   data,
		Masks: mask.NewStore(),
	}
	if s.Kind != KindImage {
		return s, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	s.Image = img
	s.Width = img.Bounds().Dx()
	s.Height = img.Bounds().Dy()
	return s, nil
}

// FromImage wraps an already-decoded raster, e.g. a rasterized PDF page.
func FromImage(name string, img image.Image) *Subject {
	return &Subject{
		Name:   name,
		Kind:   KindImage,
		Image:  img,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Masks:  mask.NewStore(),
	}
}

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp", ".webp"}
	modelExts = []string{".stl", ".step", ".stp", ".iges", ".igs"}
	tableExts = []string{".csv", ".xls", ".xlsx"}
)

// kindFromFilename classifies a page by its file extension. PDF pages are
// pass-through here; rasterized pages arrive via FromImage once an external
// renderer has flattened them.
func kindFromFilename(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		return KindPDF
	}
	for _, e := range imageExts {
		if ext == e {
			return KindImage
		}
	}
	for _, e := range modelExts {
		if ext == e {
			return KindModel3D
		}
	}
	for _, e := range tableExts {
		if ext == e {
			return KindTable
		}
	}
	return KindUnknown
}

// SupportedFormats returns the image extensions the loader accepts.
func SupportedFormats() []string {
	return append([]string(nil), imageExts...)
}

// IsSupportedImage checks whether the path has a decodable image extension.
func IsSupportedImage(path string) bool {
	return kindFromFilename(path) == KindImage
}
