// Package interaction turns pointer-drag gestures into either a canvas pan
// or a new mask rectangle, depending on the active tool. It is independent
// of the UI toolkit: the canvas widget feeds it pointer events together
// with the normalized position under the pointer.
package interaction

import (
	"drawing-redactor/pkg/geometry"
)

// Tool selects what a drag does.
type Tool int

const (
	ToolPan Tool = iota
	ToolDraw
)

func (t Tool) String() string {
	if t == ToolDraw {
		return "draw"
	}
	return "pan"
}

// State is the gesture state.
type State int

const (
	Idle State = iota
	Panning
	Drawing
)

// MinExtent is the minimum normalized width and height a drag must reach to
// commit a rectangle. Smaller drags are treated as accidental clicks.
const MinExtent = 0.005

// Gesture is the drag state machine. Exactly one drag may be in flight; a
// pointer-down while not Idle is ignored.
type Gesture struct {
	state State
	tool  Tool

	// Pan bookkeeping: pointer position and viewport scroll offset at
	// pointer-down, both in screen coordinates.
	panStartX, panStartY   float64
	panOffsetX, panOffsetY float64

	// Draw bookkeeping: the anchor corner and the signed in-progress
	// rectangle. The draft lives here, never in the mask store.
	anchor geometry.NormPoint
	draft  geometry.NormRect

	// OnPan receives the new viewport scroll offset while panning.
	OnPan func(offsetX, offsetY float64)
	// OnDraft is called whenever the in-progress rectangle changes.
	OnDraft func()
	// OnCommit receives the normalized rectangle of a completed draw drag
	// that passed the minimum-size threshold.
	OnCommit func(r geometry.NormRect)
}

// NewGesture creates a gesture machine starting in Idle with the pan tool.
func NewGesture() *Gesture {
	return &Gesture{}
}

// State returns the current state.
func (g *Gesture) State() State {
	return g.state
}

// Tool returns the active tool.
func (g *Gesture) Tool() Tool {
	return g.tool
}

// SetTool switches the active tool. The tool of a drag already in flight is
// not changed.
func (g *Gesture) SetTool(t Tool) {
	g.tool = t
}

// Draft returns the in-progress rectangle and whether one exists. The
// extents are signed; the rectangle has not been normalized yet.
func (g *Gesture) Draft() (geometry.NormRect, bool) {
	return g.draft, g.state == Drawing
}

// PointerDown starts a drag. screenX/screenY are viewport coordinates,
// scrollX/scrollY the viewport's current scroll offset, and norm the
// normalized position under the pointer.
func (g *Gesture) PointerDown(screenX, screenY, scrollX, scrollY float64, norm geometry.NormPoint) {
	if g.state != Idle {
		return
	}
	switch g.tool {
	case ToolPan:
		g.state = Panning
		g.panStartX, g.panStartY = screenX, screenY
		g.panOffsetX, g.panOffsetY = scrollX, scrollY
	case ToolDraw:
		g.state = Drawing
		g.anchor = norm
		g.draft = geometry.NormRect{X: norm.X, Y: norm.Y}
		if g.OnDraft != nil {
			g.OnDraft()
		}
	}
}

// PointerMove updates the drag in flight. Ignored while Idle.
func (g *Gesture) PointerMove(screenX, screenY float64, norm geometry.NormPoint) {
	switch g.state {
	case Panning:
		if g.OnPan != nil {
			// Dragging feels like grabbing the canvas: the content follows
			// the pointer, so the scroll offset moves against the delta.
			g.OnPan(g.panOffsetX-(screenX-g.panStartX), g.panOffsetY-(screenY-g.panStartY))
		}
	case Drawing:
		g.draft.W = norm.X - g.anchor.X
		g.draft.H = norm.Y - g.anchor.Y
		if g.OnDraft != nil {
			g.OnDraft()
		}
	}
}

// PointerUp ends the drag. A draw drag commits its rectangle only when both
// normalized extents exceed MinExtent; anything smaller is discarded as a
// no-op, not an error.
func (g *Gesture) PointerUp() {
	state := g.state
	g.state = Idle

	if state != Drawing {
		return
	}
	draft := geometry.NormalizeDrag(g.draft)
	g.draft = geometry.NormRect{}
	if g.OnDraft != nil {
		g.OnDraft()
	}
	if draft.W <= MinExtent || draft.H <= MinExtent {
		return
	}
	if g.OnCommit != nil {
		g.OnCommit(draft)
	}
}

// PointerLeave cancels the drag in flight. An in-progress rectangle is
// discarded without being committed; the pan scroll position stays where
// the last move left it.
func (g *Gesture) PointerLeave() {
	if g.state == Idle {
		return
	}
	g.state = Idle
	g.draft = geometry.NormRect{}
	if g.OnDraft != nil {
		g.OnDraft()
	}
}

// Reset cancels any drag and clears the draft, used when the active page
// changes under the pointer.
func (g *Gesture) Reset() {
	g.state = Idle
	g.draft = geometry.NormRect{}
}
