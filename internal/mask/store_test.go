package mask

import (
	"testing"

	"drawing-redactor/pkg/geometry"
)

func TestAppendAssignsCreationOrderedIDs(t *testing.T) {
	s := NewStore()
	a := s.Append(Rect{Bounds: geometry.NormRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}, Origin: OriginManual})
	b := s.Append(Rect{Bounds: geometry.NormRect{X: 0.3, Y: 0.3, W: 0.1, H: 0.1}, Origin: OriginDetected})
	if a.ID >= b.ID {
		t.Fatalf("IDs not creation-ordered: %d then %d", a.ID, b.ID)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got := s.Rects()[1].Origin; got != OriginDetected {
		t.Errorf("insertion order not preserved, got origin %v", got)
	}
}

func TestAppendDoesNotMutatePriorSlice(t *testing.T) {
	s := NewStore()
	s.Append(Rect{Bounds: geometry.NormRect{W: 0.5, H: 0.5}})
	before := s.Rects()
	s.Append(Rect{Bounds: geometry.NormRect{W: 0.1, H: 0.1}})
	if len(before) != 1 {
		t.Fatalf("previously observed collection changed length: %d", len(before))
	}
}

func TestReplaceAllAndClear(t *testing.T) {
	s := NewStore()
	s.Append(Rect{Bounds: geometry.NormRect{W: 0.5, H: 0.5}})
	s.ReplaceAll([]Rect{
		{ID: 7, Bounds: geometry.NormRect{W: 0.2, H: 0.2}},
	})
	if s.Len() != 1 || s.Rects()[0].ID != 7 {
		t.Fatalf("ReplaceAll did not install the new collection: %+v", s.Rects())
	}
	// IDs issued after a replace must stay unique.
	r := s.Append(Rect{Bounds: geometry.NormRect{W: 0.1, H: 0.1}})
	if r.ID <= 7 {
		t.Errorf("Append after ReplaceAll reused ID %d", r.ID)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Clear left %d rectangles", s.Len())
	}
}

func TestCopyToProducesIndependentCollections(t *testing.T) {
	src := NewStore()
	src.Append(Rect{Bounds: geometry.NormRect{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}, Label: "logo"})
	src.Append(Rect{Bounds: geometry.NormRect{X: 0.5, Y: 0.5, W: 0.1, H: 0.1}})

	targets := []*Store{NewStore(), NewStore(), NewStore()}
	for _, tgt := range targets {
		tgt.Append(Rect{Bounds: geometry.NormRect{W: 0.9, H: 0.9}}) // overwritten below
	}
	src.CopyTo(targets...)

	for i, tgt := range targets {
		if tgt.Len() != src.Len() {
			t.Fatalf("target %d has %d rects, want %d", i, tgt.Len(), src.Len())
		}
		for j, r := range tgt.Rects() {
			if r != src.Rects()[j] {
				t.Errorf("target %d rect %d = %+v, want %+v", i, j, r, src.Rects()[j])
			}
		}
	}

	// Mutating one copy must not leak into the others or the source.
	targets[0].ReplaceAll(nil)
	if targets[1].Len() != 2 || src.Len() != 2 {
		t.Errorf("collections share identity after CopyTo")
	}
}

func TestCopyToSelfIsNoOp(t *testing.T) {
	s := NewStore()
	s.Append(Rect{Bounds: geometry.NormRect{W: 0.5, H: 0.5}})
	s.CopyTo(s)
	if s.Len() != 1 {
		t.Errorf("CopyTo(self) changed the collection: %d rects", s.Len())
	}
}
