// Package canvas provides the interactive polygon sketch canvas.
package canvas

import (
	"fmt"
	"image"

	"polygon-measure/internal/app"
	"polygon-measure/pkg/colorutil"
	"polygon-measure/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	// grabRadius is the screen-space radius for picking up a vertex handle.
	grabRadius = 8.0

	// handleSize is the screen-space edge length of a vertex handle square.
	handleSize = 6
)

// SketchCanvas displays the drawing session and turns pointer input into
// session transitions: clicks place vertices, drags move vertices of
// completed polygons, the wheel zooms.
type SketchCanvas struct {
	widget.BaseWidget

	state *app.State

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Logical sheet size in canvas coordinates (pre-zoom)
	sheetSize fyne.Size

	// Interaction state
	dragPoly   int
	dragVertex int
	dragging   bool

	// Selection (from the polygon list panel), -1 = none
	selected int

	// Container
	scroll  *zoomScroll
	content *sketchContent
	imgSize fyne.Size

	// Callbacks
	onZoomChange   func(zoom float64)
	onPolygonHover func(index int) // Index of completed polygon under cursor, -1 = none
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SketchCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *SketchCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Use wheel for zoom, not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// sketchContent wraps the raster to handle mouse events.
type sketchContent struct {
	widget.BaseWidget
	canvas *SketchCanvas
	raster *fynecanvas.Raster
}

var _ fyne.Tappable = (*sketchContent)(nil)
var _ fyne.SecondaryTappable = (*sketchContent)(nil)
var _ fyne.Draggable = (*sketchContent)(nil)
var _ desktop.Hoverable = (*sketchContent)(nil)

func newSketchContent(sc *SketchCanvas, raster *fynecanvas.Raster) *sketchContent {
	c := &sketchContent{
		canvas: sc,
		raster: raster,
	}
	c.ExtendBaseWidget(c)
	return c
}

func (c *sketchContent) CreateRenderer() fyne.WidgetRenderer {
	return &sketchContentRenderer{content: c}
}

func (c *sketchContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

// toCanvas converts a widget event position to canvas (pre-zoom) coordinates.
func (c *sketchContent) toCanvas(pos fyne.Position) geometry.Point2D {
	offset := c.canvas.scroll.Offset()
	return geometry.Point2D{
		X: float64(pos.X+offset.X) / c.canvas.zoom,
		Y: float64(pos.Y+offset.Y) / c.canvas.zoom,
	}
}

// inBounds rejects event positions outside the widget, working around
// stray events Fyne can deliver during layout changes.
func (c *sketchContent) inBounds(pos fyne.Position) bool {
	size := c.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

// Tapped places a vertex (or closes the polygon) while drawing is enabled.
func (c *sketchContent) Tapped(ev *fyne.PointEvent) {
	if !c.inBounds(ev.Position) {
		return
	}
	c.canvas.state.AddPoint(c.toCanvas(ev.Position))
}

// TappedSecondary cancels the polygon currently being placed.
func (c *sketchContent) TappedSecondary(ev *fyne.PointEvent) {
	if !c.inBounds(ev.Position) {
		return
	}
	c.canvas.state.CancelInProgress()
}

// Dragged moves a vertex of a completed polygon. The first event of a drag
// picks the handle under the pointer; later events reposition it.
func (c *sketchContent) Dragged(ev *fyne.DragEvent) {
	pos := c.toCanvas(ev.Position)

	if !c.canvas.dragging {
		poly, vertex := c.canvas.hitTestVertex(pos)
		if poly < 0 {
			return
		}
		c.canvas.dragging = true
		c.canvas.dragPoly = poly
		c.canvas.dragVertex = vertex
	}

	c.canvas.state.MoveVertex(c.canvas.dragPoly, c.canvas.dragVertex, pos)
}

func (c *sketchContent) DragEnd() {
	c.canvas.dragging = false
}

func (c *sketchContent) Scrolled(ev *fyne.ScrollEvent) {
	// Use mouse wheel for zooming
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}

func (c *sketchContent) MouseIn(ev *desktop.MouseEvent) {
	c.reportHover(ev.Position)
}

func (c *sketchContent) MouseMoved(ev *desktop.MouseEvent) {
	c.reportHover(ev.Position)
}

func (c *sketchContent) MouseOut() {
	if c.canvas.onPolygonHover != nil {
		c.canvas.onPolygonHover(-1)
	}
}

// reportHover tells the hover callback which completed polygon is under the
// pointer, for status bar readouts.
func (c *sketchContent) reportHover(pos fyne.Position) {
	if c.canvas.onPolygonHover == nil {
		return
	}
	p := c.toCanvas(pos)
	for i, pg := range c.canvas.state.Polygons() {
		if geometry.PointInPolygon(p, pg.Points) {
			c.canvas.onPolygonHover(i)
			return
		}
	}
	c.canvas.onPolygonHover(-1)
}

type sketchContentRenderer struct {
	content *sketchContent
}

func (r *sketchContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *sketchContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *sketchContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *sketchContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *sketchContentRenderer) Destroy() {}

// NewSketchCanvas creates a sketch canvas bound to the given session.
func NewSketchCanvas(state *app.State) *SketchCanvas {
	sc := &SketchCanvas{
		state:     state,
		zoom:      1.0,
		sheetSize: fyne.NewSize(1200, 800),
		selected:  -1,
	}

	// Create the raster for drawing
	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels

	// Wrap the raster in event-handling content
	sc.content = newSketchContent(sc, sc.raster)

	// Create zoomable scroll container (wheel = zoom, bars = pan)
	sc.scroll = newZoomScroll(sc.content, sc)

	sc.updateContentSize()

	// Re-render whenever the session changes
	state.On(app.EventSketchChanged, func(interface{}) {
		sc.Refresh()
	})

	sc.ExtendBaseWidget(sc)
	return sc
}

// Container returns the canvas container for embedding in layouts.
func (sc *SketchCanvas) Container() fyne.CanvasObject {
	return sc.scroll
}

// SetSelected highlights the completed polygon at index (-1 clears).
func (sc *SketchCanvas) SetSelected(index int) {
	sc.selected = index
	sc.Refresh()
}

// Selected returns the highlighted polygon index, -1 for none.
func (sc *SketchCanvas) Selected() int {
	return sc.selected
}

// SetZoom sets the zoom level, clamped to the allowed range.
func (sc *SketchCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	sc.zoom = zoom
	sc.updateContentSize()

	if sc.onZoomChange != nil {
		sc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (sc *SketchCanvas) Zoom() float64 {
	return sc.zoom
}

// ZoomIn increases the zoom level.
func (sc *SketchCanvas) ZoomIn() {
	sc.SetZoom(sc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (sc *SketchCanvas) ZoomOut() {
	sc.SetZoom(sc.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (sc *SketchCanvas) OnZoomChange(callback func(zoom float64)) {
	sc.onZoomChange = callback
}

// OnPolygonHover sets a callback reporting the completed polygon under the
// cursor (-1 when over empty canvas).
func (sc *SketchCanvas) OnPolygonHover(callback func(index int)) {
	sc.onPolygonHover = callback
}

// Refresh refreshes the canvas display.
func (sc *SketchCanvas) Refresh() {
	sc.raster.Refresh()
}

// hitTestVertex finds the completed-polygon vertex within grab range of p,
// returning (-1, -1) when none is close enough. The grab radius shrinks in
// canvas units as zoom grows so it stays constant on screen.
func (sc *SketchCanvas) hitTestVertex(p geometry.Point2D) (int, int) {
	radius := grabRadius / sc.zoom
	bestPoly, bestVertex := -1, -1
	bestDist := radius

	for i, pg := range sc.state.Polygons() {
		for j, v := range pg.Points {
			if d := p.Distance(v); d <= bestDist {
				bestDist = d
				bestPoly, bestVertex = i, j
			}
		}
	}
	return bestPoly, bestVertex
}

// updateContentSize updates the content size from the sheet size and zoom.
func (sc *SketchCanvas) updateContentSize() {
	sc.imgSize = fyne.NewSize(
		sc.sheetSize.Width*float32(sc.zoom),
		sc.sheetSize.Height*float32(sc.zoom),
	)

	sc.raster.SetMinSize(sc.imgSize)
	sc.raster.Resize(sc.imgSize)
	if sc.content != nil {
		sc.content.Resize(sc.imgSize)
		sc.content.Refresh()
	}
	sc.raster.Refresh()
	if sc.scroll != nil {
		sc.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (sc *SketchCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// White sheet background
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
		output.Pix[i+1] = 255
		output.Pix[i+2] = 255
		output.Pix[i+3] = 255
	}

	scale := sc.state.Scale()
	dpi := sc.state.DPI()

	for i, pg := range sc.state.Polygons() {
		outline := colorutil.Blue
		if i == sc.selected {
			outline = colorutil.Orange
		}
		sc.drawCompletedPolygon(output, pg, outline, scale, dpi)
	}

	sc.drawInProgress(output, sc.state.InProgress())

	return output
}

// CreateRenderer implements fyne.Widget.
func (sc *SketchCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &sketchCanvasRenderer{canvas: sc}
}

type sketchCanvasRenderer struct {
	canvas *SketchCanvas
}

func (r *sketchCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	}
}

func (r *sketchCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *sketchCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *sketchCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *sketchCanvasRenderer) Destroy() {}

// formatArea renders an area value for canvas labels.
func formatArea(area float64) string {
	return fmt.Sprintf("A=%.2f", area)
}

// formatLength renders an edge length for canvas labels.
func formatLength(length float64) string {
	return fmt.Sprintf("%.1f", length)
}
