// Package detect supplies machine-detected redaction candidates: a Gemini
// vision client, a local OCR fallback, and the reconciler that maps either
// detector's output into the normalized mask model.
package detect

import (
	"drawing-redactor/internal/mask"
	"drawing-redactor/pkg/geometry"
)

// Region is one externally detected rectangle. Box order is
// (ymin, xmin, ymax, xmax), the convention vision models emit, with values
// either already normalized to [0,1] or on a fixed 0-1000 scale.
type Region struct {
	Label string     `json:"label"`
	Box   [4]float64 `json:"box"`
}

// Reconcile converts detected regions to mask rectangles with origin
// detected and appends them to the store, never replacing what is already
// there. An empty region list is a valid outcome, not an error. The
// appended rectangles are returned.
func Reconcile(store *mask.Store, regions []Region) []mask.Rect {
	appended := make([]mask.Rect, 0, len(regions))
	for _, reg := range regions {
		appended = append(appended, store.Append(mask.Rect{
			Bounds: NormalizeBox(reg.Box),
			Origin: mask.OriginDetected,
			Label:  reg.Label,
		}))
	}
	return appended
}

// NormalizeBox maps a detection box to the normalized rectangle model. The
// 0-1000 versus [0,1] decision is made per component, not per tuple: each
// of the two origin coordinates and the two extents is divided by 1000 only
// if it exceeds 1. Detector output is not always internally consistent, so
// a whole-tuple decision would mangle mixed boxes.
func NormalizeBox(box [4]float64) geometry.NormRect {
	ymin, xmin, ymax, xmax := box[0], box[1], box[2], box[3]
	r := geometry.NormRect{
		X: scaleUnit(xmin),
		Y: scaleUnit(ymin),
		W: scaleUnit(xmax - xmin),
		H: scaleUnit(ymax - ymin),
	}
	// Fold inverted boxes the same way an up-left drag is folded.
	return geometry.NormalizeDrag(r)
}

func scaleUnit(v float64) float64 {
	if v > 1 || v < -1 {
		return v / 1000
	}
	return v
}
