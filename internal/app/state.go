// Package app provides the central application state and its event bus.
package app

import (
	"fmt"
	"sync"

	"drawing-redactor/internal/interaction"
	"drawing-redactor/internal/mask"
	"drawing-redactor/internal/subject"
	"drawing-redactor/pkg/geometry"
)

// Zoom bounds and the factor applied when a page becomes active.
const (
	MinZoom     = 0.1
	MaxZoom     = 5.0
	DefaultZoom = 0.7
	ZoomStep    = 1.25
)

// State holds the loaded pages, the active page, and the view parameters.
// It is the single owner of shared mutable project state; every mutation
// goes through one of the narrow update methods below, so a whole mask
// collection is always swapped atomically and a render pass in flight sees
// the previously committed collection.
type State struct {
	mu sync.RWMutex

	subjects []*subject.Subject
	active   int

	// Free-form requirements description, exported as the archive manifest.
	requirements string

	zoom float64
	tool interaction.Tool

	listeners map[EventType][]EventListener
}

// EventType identifies application events.
type EventType int

const (
	EventSubjectsChanged EventType = iota
	EventActiveChanged
	EventMasksChanged
	EventZoomChanged
	EventToolChanged
	EventAuditComplete
	EventExportComplete
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty project state.
func NewState() *State {
	return &State{
		active:    -1,
		zoom:      DefaultZoom,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, l := range listeners {
		l(data)
	}
}

// AddSubject loads a page from disk and appends it to the project.
func (s *State) AddSubject(path string) (*subject.Subject, error) {
	sub, err := subject.Load(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.subjects = append(s.subjects, sub)
	first := len(s.subjects) == 1
	s.mu.Unlock()

	s.Emit(EventSubjectsChanged, sub)
	if first {
		s.SetActive(0)
	}
	return sub, nil
}

// Subjects returns the loaded pages in load order.
func (s *State) Subjects() []*subject.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*subject.Subject, len(s.subjects))
	copy(out, s.subjects)
	return out
}

// Active returns the active page, or nil when the project is empty.
func (s *State) Active() *subject.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active < 0 || s.active >= len(s.subjects) {
		return nil
	}
	return s.subjects[s.active]
}

// ActiveIndex returns the index of the active page, -1 when none.
func (s *State) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive switches the active page. View state is per active page: the
// zoom resets to its default and any in-progress rectangle is dropped by
// the canvas listening for the event.
func (s *State) SetActive(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.subjects) {
		s.mu.Unlock()
		return fmt.Errorf("no page at index %d", index)
	}
	s.active = index
	s.zoom = DefaultZoom
	s.mu.Unlock()

	s.Emit(EventActiveChanged, index)
	s.Emit(EventZoomChanged, DefaultZoom)
	return nil
}

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// SetZoom clamps and applies a zoom factor.
func (s *State) SetZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	s.mu.Lock()
	s.zoom = z
	s.mu.Unlock()
	s.Emit(EventZoomChanged, z)
}

// ZoomIn increases the zoom by one step.
func (s *State) ZoomIn() {
	s.SetZoom(s.Zoom() * ZoomStep)
}

// ZoomOut decreases the zoom by one step.
func (s *State) ZoomOut() {
	s.SetZoom(s.Zoom() / ZoomStep)
}

// Tool returns the active tool mode.
func (s *State) Tool() interaction.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetTool switches between pan and draw.
func (s *State) SetTool(t interaction.Tool) {
	s.mu.Lock()
	s.tool = t
	s.mu.Unlock()
	s.Emit(EventToolChanged, t)
}

// Requirements returns the project's requirements description.
func (s *State) Requirements() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requirements
}

// SetRequirements stores the requirements description.
func (s *State) SetRequirements(text string) {
	s.mu.Lock()
	s.requirements = text
	s.mu.Unlock()
}

// AppendMask commits a drawn rectangle to the active page.
func (s *State) AppendMask(bounds geometry.NormRect) {
	sub := s.Active()
	if sub == nil {
		return
	}
	sub.Masks.Append(mask.Rect{Bounds: bounds, Origin: mask.OriginManual})
	s.Emit(EventMasksChanged, sub)
}

// ClearMasks removes every rectangle from the active page.
func (s *State) ClearMasks() {
	sub := s.Active()
	if sub == nil {
		return
	}
	sub.Masks.Clear()
	s.Emit(EventMasksChanged, sub)
}

// CopyMasksToAll overwrites every other image page's collection with a
// snapshot of the active page's collection.
func (s *State) CopyMasksToAll() {
	src := s.Active()
	if src == nil {
		return
	}
	for _, sub := range s.Subjects() {
		if sub == src || !sub.IsImage() {
			continue
		}
		src.Masks.CopyTo(sub.Masks)
	}
	s.Emit(EventMasksChanged, src)
}

// SetAudit caches an audit report on a page.
func (s *State) SetAudit(sub *subject.Subject, report string) {
	sub.Audit = report
	s.Emit(EventAuditComplete, sub)
}
