package canvas

import (
	"image"

	"polygon-measure/internal/app"
	"polygon-measure/pkg/colorutil"
	"polygon-measure/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// hoverRadius is the distance in pixels within which the pointer is
// considered to be over an edge.
const hoverRadius = 6.0

// StaticEditor displays a fixed polygon whose vertices are always
// draggable. Hovering an edge shows a tooltip with the edge length in raw
// canvas units. There is no zoom, no drawing mode, and no persistence.
type StaticEditor struct {
	widget.BaseWidget

	editor *app.Editor
	raster *fynecanvas.Raster
	size   fyne.Size

	dragVertex int
	dragging   bool
}

var _ fyne.Draggable = (*StaticEditor)(nil)
var _ desktop.Hoverable = (*StaticEditor)(nil)

// NewStaticEditor creates a static polygon editor widget of the given size.
func NewStaticEditor(editor *app.Editor, size fyne.Size) *StaticEditor {
	se := &StaticEditor{
		editor: editor,
		size:   size,
	}

	se.raster = fynecanvas.NewRaster(se.draw)
	se.raster.ScaleMode = fynecanvas.ImageScalePixels
	se.raster.SetMinSize(size)

	editor.OnChange(func() {
		se.Refresh()
	})

	se.ExtendBaseWidget(se)
	return se
}

// MinSize implements fyne.Widget.
func (se *StaticEditor) MinSize() fyne.Size {
	return se.size
}

// Dragged moves the vertex picked up at the start of the drag.
func (se *StaticEditor) Dragged(ev *fyne.DragEvent) {
	pos := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}

	if !se.dragging {
		vertex := se.hitTestVertex(pos)
		if vertex < 0 {
			return
		}
		se.dragging = true
		se.dragVertex = vertex
		se.editor.ClearHover()
	}

	se.editor.MoveVertex(se.dragVertex, pos)
}

// DragEnd implements fyne.Draggable.
func (se *StaticEditor) DragEnd() {
	se.dragging = false
}

func (se *StaticEditor) MouseIn(ev *desktop.MouseEvent) {
	se.updateHover(ev.Position)
}

func (se *StaticEditor) MouseMoved(ev *desktop.MouseEvent) {
	se.updateHover(ev.Position)
}

func (se *StaticEditor) MouseOut() {
	se.editor.ClearHover()
}

// updateHover activates the tooltip for the edge under the pointer, or
// clears it when the pointer is not near any edge.
func (se *StaticEditor) updateHover(pos fyne.Position) {
	if se.dragging {
		return
	}
	p := geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}

	edge, dist := geometry.NearestEdge(p, se.editor.Points())
	if edge >= 0 && dist <= hoverRadius {
		se.editor.HoverEdge(edge)
		return
	}
	se.editor.ClearHover()
}

// hitTestVertex returns the vertex within grab range of p, or -1.
func (se *StaticEditor) hitTestVertex(p geometry.Point2D) int {
	best := -1
	bestDist := grabRadius
	for i, v := range se.editor.Points() {
		if d := p.Distance(v); d <= bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Refresh refreshes the editor display.
func (se *StaticEditor) Refresh() {
	se.raster.Refresh()
}

// draw is the raster drawing function.
func (se *StaticEditor) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// White background
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
		output.Pix[i+1] = 255
		output.Pix[i+2] = 255
		output.Pix[i+3] = 255
	}

	points := se.editor.Points()
	n := len(points)
	if n == 0 {
		return output
	}

	if n >= 3 {
		fillPolygon(output, points, colorutil.Magenta, fillOpacity)
	}
	for i := 0; i < n; i++ {
		p1 := points[i]
		p2 := points[(i+1)%n]
		drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), colorutil.Magenta, 2)
	}
	for _, p := range points {
		drawHandle(output, p, colorutil.Orange)
	}

	if tip, ok := se.editor.Tooltip(); ok {
		drawTooltip(output, tip)
	}

	return output
}

// drawTooltip draws the hover tooltip: a bordered box with the edge length.
func drawTooltip(output *image.RGBA, tip app.EdgeTooltip) {
	const padX, padY = 4, 3

	// Box sized to the text, centered on the tooltip anchor
	width := textWidth(tip.Text)
	x1 := int(tip.Position.X) - width/2 - padX
	y1 := int(tip.Position.Y) - 13/2 - padY
	x2 := int(tip.Position.X) + width/2 + padX
	y2 := int(tip.Position.Y) + 13/2 + padY

	bounds := output.Bounds()
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			if x == x1 || x == x2 || y == y1 || y == y2 {
				output.Set(x, y, colorutil.Black)
			} else {
				output.Set(x, y, colorutil.Yellow)
			}
		}
	}

	drawText(output, tip.Text, tip.Position, colorutil.Black)
}

// CreateRenderer implements fyne.Widget.
func (se *StaticEditor) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(se.raster)
}
