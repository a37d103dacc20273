// Package mask stores the redaction rectangles attached to a drawing page.
package mask

import (
	"drawing-redactor/pkg/geometry"
)

// Origin records where a mask rectangle came from.
type Origin int

const (
	OriginManual   Origin = iota // drawn by the user
	OriginDetected               // produced by a detector
)

func (o Origin) String() string {
	switch o {
	case OriginManual:
		return "manual"
	case OriginDetected:
		return "detected"
	default:
		return "unknown"
	}
}

// Rect is a single redaction rectangle in normalized image coordinates.
// Bounds always hold non-negative extents; the drag that created them is
// normalized before commit.
type Rect struct {
	ID     int64             `json:"id"`
	Bounds geometry.NormRect `json:"bounds"`
	Origin Origin            `json:"origin"`
	Label  string            `json:"label,omitempty"`
}
