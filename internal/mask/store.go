package mask

// Store holds the ordered rectangle collection for one page. Collection
// order is insertion order; later entries draw on top. The backing slice is
// treated as an immutable value: every mutation builds a fresh slice and
// reassigns it, so a render pass holding the previous slice never observes
// a half-updated collection.
type Store struct {
	nextID int64
	rects  []Rect
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Rects returns the current collection. Callers must not modify it.
func (s *Store) Rects() []Rect {
	return s.rects
}

// Len returns the number of rectangles.
func (s *Store) Len() int {
	return len(s.rects)
}

// Append adds a rectangle and returns it with a fresh creation-ordered ID.
func (s *Store) Append(r Rect) Rect {
	r.ID = s.nextID
	s.nextID++

	next := make([]Rect, len(s.rects)+1)
	copy(next, s.rects)
	next[len(s.rects)] = r
	s.rects = next
	return r
}

// ReplaceAll swaps in a whole new collection. There is deliberately no
// edit-in-place of a single rectangle; whole-collection replacement and
// append are the only mutation granularities.
func (s *Store) ReplaceAll(rects []Rect) {
	next := make([]Rect, len(rects))
	copy(next, rects)
	s.rects = next
	for _, r := range next {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
}

// Clear removes all rectangles.
func (s *Store) Clear() {
	s.rects = nil
}

// Snapshot returns a value copy of the collection with a fresh backing
// array. Mutating the copy does not affect the store.
func (s *Store) Snapshot() []Rect {
	out := make([]Rect, len(s.rects))
	copy(out, s.rects)
	return out
}

// CopyTo overwrites every target's collection with a snapshot of this
// store's collection. Each target receives its own backing array, so the
// copies share no mutable identity with the source or with each other.
func (s *Store) CopyTo(targets ...*Store) {
	for _, t := range targets {
		if t == nil || t == s {
			continue
		}
		t.ReplaceAll(s.rects)
	}
}
