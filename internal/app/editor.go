package app

import (
	"fmt"
	"sync"

	"polygon-measure/pkg/geometry"
)

// TooltipRise is the fixed pixel bias lifting an edge tooltip above the
// edge midpoint so the pointer does not cover it.
const TooltipRise = 15.0

// defaultEditorVertices is the vertex count of the demo pentagon.
const defaultEditorVertices = 5

// EdgeTooltip is the payload shown while hovering an edge: the anchor
// position and the formatted edge length.
type EdgeTooltip struct {
	Position geometry.Point2D
	Text     string
}

// Editor holds the static polygon editor: a fixed ring of vertices that are
// always draggable, plus the optional hover tooltip. There is no drawing
// mode and no persistence; edge lengths are reported in raw canvas units.
type Editor struct {
	mu      sync.RWMutex
	points  []geometry.Point2D
	tooltip *EdgeTooltip

	onChange func()
}

// NewEditor creates an editor over the given ring. The ring needs at least
// 3 vertices to have a meaningful edge set.
func NewEditor(points []geometry.Point2D) *Editor {
	ring := make([]geometry.Point2D, len(points))
	copy(ring, points)
	return &Editor{points: ring}
}

// DefaultEditor creates an editor holding a regular pentagon centered in a
// canvas of the given size.
func DefaultEditor(width, height float64) *Editor {
	radius := width
	if height < radius {
		radius = height
	}
	radius = radius / 2 * 0.7
	return NewEditor(geometry.GenerateCirclePoints(width/2, height/2, radius, defaultEditorVertices))
}

// OnChange sets a callback invoked after every state change. The canvas
// uses it to refresh.
func (e *Editor) OnChange(callback func()) {
	e.mu.Lock()
	e.onChange = callback
	e.mu.Unlock()
}

func (e *Editor) notify() {
	e.mu.RLock()
	cb := e.onChange
	e.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

// Points returns the current ring.
func (e *Editor) Points() []geometry.Point2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]geometry.Point2D, len(e.points))
	copy(out, e.points)
	return out
}

// MoveVertex replaces the coordinates of one vertex. Indices come from
// rendered handles; out-of-range indices are ignored.
func (e *Editor) MoveVertex(index int, pos geometry.Point2D) {
	e.mu.Lock()
	if index < 0 || index >= len(e.points) {
		e.mu.Unlock()
		return
	}
	e.points[index] = pos
	e.mu.Unlock()

	e.notify()
}

// HoverEdge activates the tooltip for the edge between vertex edgeIndex and
// its successor (wrapping). The tooltip anchors at the edge midpoint raised
// by TooltipRise and shows the edge length in raw canvas units.
func (e *Editor) HoverEdge(edgeIndex int) EdgeTooltip {
	e.mu.Lock()
	n := len(e.points)
	if n == 0 {
		e.mu.Unlock()
		return EdgeTooltip{}
	}
	a := e.points[edgeIndex%n]
	b := e.points[(edgeIndex+1)%n]

	mid := geometry.Midpoint(a, b)
	tip := EdgeTooltip{
		Position: geometry.Point2D{X: mid.X, Y: mid.Y - TooltipRise},
		Text:     fmt.Sprintf("%.1f px", a.Distance(b)),
	}
	e.tooltip = &tip
	e.mu.Unlock()

	e.notify()
	return tip
}

// ClearHover removes the tooltip.
func (e *Editor) ClearHover() {
	e.mu.Lock()
	changed := e.tooltip != nil
	e.tooltip = nil
	e.mu.Unlock()

	if changed {
		e.notify()
	}
}

// Tooltip returns the active tooltip, if any.
func (e *Editor) Tooltip() (EdgeTooltip, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.tooltip == nil {
		return EdgeTooltip{}, false
	}
	return *e.tooltip, true
}
