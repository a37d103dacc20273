// Package canvas provides the drawing view with pan, zoom, and mask drawing.
package canvas

import (
	"image"

	"drawing-redactor/internal/app"
	"drawing-redactor/internal/interaction"
	"drawing-redactor/internal/render"
	"drawing-redactor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// MaskCanvas displays the active page with its masks and turns pointer drags
// into pans or new mask rectangles. All view math happens in normalized page
// coordinates, so masks survive any zoom or window size.
type MaskCanvas struct {
	widget.BaseWidget

	state   *app.State
	gesture *interaction.Gesture

	raster  *fynecanvas.Raster
	content *maskContent
	scroll  *zoomScroll

	imgSize fyne.Size
}

// NewMaskCanvas creates a canvas bound to the application state. The canvas
// listens for state events; it never mutates the state except through the
// gesture commit path.
func NewMaskCanvas(state *app.State) *MaskCanvas {
	mc := &MaskCanvas{
		state:   state,
		gesture: interaction.NewGesture(),
		imgSize: fyne.NewSize(400, 300),
	}

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.raster.SetMinSize(mc.imgSize)

	mc.content = newMaskContent(mc, mc.raster)
	mc.scroll = newZoomScroll(mc.content, state)

	mc.gesture.OnPan = func(offsetX, offsetY float64) {
		mc.scroll.ScrollTo(fyne.NewPos(float32(offsetX), float32(offsetY)))
	}
	mc.gesture.OnDraft = func() {
		mc.raster.Refresh()
	}
	mc.gesture.OnCommit = func(r geometry.NormRect) {
		mc.state.AppendMask(r)
	}

	state.On(app.EventActiveChanged, func(interface{}) {
		mc.gesture.Reset()
		mc.updateContentSize()
	})
	state.On(app.EventZoomChanged, func(interface{}) {
		mc.updateContentSize()
	})
	state.On(app.EventMasksChanged, func(interface{}) {
		mc.raster.Refresh()
	})
	state.On(app.EventSubjectsChanged, func(interface{}) {
		mc.updateContentSize()
	})
	state.On(app.EventToolChanged, func(data interface{}) {
		if t, ok := data.(interaction.Tool); ok {
			mc.gesture.SetTool(t)
		}
	})

	mc.ExtendBaseWidget(mc)
	return mc
}

// Container returns the scrollable canvas for embedding in layouts.
func (mc *MaskCanvas) Container() fyne.CanvasObject {
	return mc.scroll
}

// Refresh redraws the page.
func (mc *MaskCanvas) Refresh() {
	mc.raster.Refresh()
}

// updateContentSize resizes the raster to the active page at the current zoom.
func (mc *MaskCanvas) updateContentSize() {
	sub := mc.state.Active()
	if sub == nil || !sub.IsImage() {
		mc.imgSize = fyne.NewSize(400, 300)
	} else {
		zoom := mc.state.Zoom()
		mc.imgSize = fyne.NewSize(
			float32(float64(sub.Width)*zoom),
			float32(float64(sub.Height)*zoom),
		)
	}

	mc.raster.SetMinSize(mc.imgSize)
	mc.raster.Resize(mc.imgSize)
	if mc.content != nil {
		mc.content.Resize(mc.imgSize)
		mc.content.Refresh()
	}
	mc.raster.Refresh()
	if mc.scroll != nil {
		mc.scroll.Refresh()
	}
}

// draw is the raster drawing function. It composes the display target fresh
// on every call; the in-progress rectangle comes from the gesture, never
// from the mask collection.
func (mc *MaskCanvas) draw(w, h int) image.Image {
	sub := mc.state.Active()
	if sub == nil || !sub.IsImage() {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 255
		}
		return out
	}

	opts := render.Options{
		Target: render.TargetDisplay,
		Zoom:   mc.state.Zoom(),
	}
	if draft, ok := mc.gesture.Draft(); ok {
		opts.Draft = &draft
	}
	return render.Composite(sub.Image, sub.Masks.Rects(), opts)
}

// normAt converts a viewport position into normalized page coordinates.
func (mc *MaskCanvas) normAt(pos fyne.Position) geometry.NormPoint {
	offset := mc.scroll.Offset()
	display := geometry.Rect{
		Width:  float64(mc.imgSize.Width),
		Height: float64(mc.imgSize.Height),
	}
	return geometry.FromPointerPosition(
		float64(pos.X+offset.X),
		float64(pos.Y+offset.Y),
		display,
	)
}

// CreateRenderer implements fyne.Widget.
func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.scroll)
}

// zoomScroll wraps a scroll container but routes the wheel to zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	state  *app.State
}

func newZoomScroll(content fyne.CanvasObject, state *app.State) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, state: state}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.state.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.state.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// ScrollTo moves the scroll container to the given offset.
func (zs *zoomScroll) ScrollTo(pos fyne.Position) {
	zs.scroll.Offset = pos
	zs.scroll.Refresh()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// maskContent wraps the raster and feeds pointer events to the gesture.
type maskContent struct {
	widget.BaseWidget
	canvas *MaskCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable  = (*maskContent)(nil)
	_ desktop.Hoverable  = (*maskContent)(nil)
	_ fyne.Draggable     = (*maskContent)(nil)
	_ desktop.Cursorable = (*maskContent)(nil)
)

func newMaskContent(mc *MaskCanvas, raster *fynecanvas.Raster) *maskContent {
	c := &maskContent{canvas: mc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *maskContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *maskContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

func (c *maskContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	offset := c.canvas.scroll.Offset()
	c.canvas.gesture.PointerDown(
		float64(ev.Position.X), float64(ev.Position.Y),
		float64(offset.X), float64(offset.Y),
		c.canvas.normAt(ev.Position),
	)
}

func (c *maskContent) MouseUp(ev *desktop.MouseEvent) {
	c.canvas.gesture.PointerUp()
}

func (c *maskContent) Dragged(ev *fyne.DragEvent) {
	c.canvas.gesture.PointerMove(
		float64(ev.Position.X), float64(ev.Position.Y),
		c.canvas.normAt(ev.Position),
	)
}

func (c *maskContent) DragEnd() {
	c.canvas.gesture.PointerUp()
}

func (c *maskContent) MouseIn(ev *desktop.MouseEvent) {}

func (c *maskContent) MouseMoved(ev *desktop.MouseEvent) {}

// MouseOut cancels the drag in flight; a rectangle must not commit from a
// drag that left the canvas.
func (c *maskContent) MouseOut() {
	c.canvas.gesture.PointerLeave()
}

func (c *maskContent) Cursor() desktop.Cursor {
	if c.canvas.state.Tool() == interaction.ToolDraw {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}
