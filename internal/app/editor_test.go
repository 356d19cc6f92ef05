package app

import (
	"testing"

	"polygon-measure/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func squareEditor() *Editor {
	return NewEditor([]geometry.Point2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
	})
}

func TestEditorMoveVertex(t *testing.T) {
	e := squareEditor()

	e.MoveVertex(1, pt(120, -10))

	points := e.Points()
	require.Equal(t, pt(120, -10), points[1])
	require.Equal(t, pt(0, 0), points[0])
	require.Equal(t, pt(100, 100), points[2])
	require.Len(t, points, 4)
}

func TestEditorMoveVertexOutOfRangeIgnored(t *testing.T) {
	e := squareEditor()
	before := e.Points()

	e.MoveVertex(-1, pt(5, 5))
	e.MoveVertex(4, pt(5, 5))

	require.Equal(t, before, e.Points())
}

func TestEditorHoverEdge(t *testing.T) {
	e := squareEditor()

	tip := e.HoverEdge(0)
	// Top edge runs (0,0)-(100,0): midpoint (50,0), raised by the bias.
	require.Equal(t, pt(50, -TooltipRise), tip.Position)
	require.Equal(t, "100.0 px", tip.Text)

	got, ok := e.Tooltip()
	require.True(t, ok)
	require.Equal(t, tip, got)
}

func TestEditorHoverWrappingEdge(t *testing.T) {
	e := squareEditor()

	// Edge 3 wraps from the last vertex back to the first.
	tip := e.HoverEdge(3)
	require.Equal(t, pt(0, 50-TooltipRise), tip.Position)
	require.Equal(t, "100.0 px", tip.Text)
}

func TestEditorHoverUsesRawUnits(t *testing.T) {
	// 3-4-5 triangle edge: length must be raw canvas pixels with no
	// scale/dpi conversion in this variant.
	e := NewEditor([]geometry.Point2D{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 0, Y: 8}})
	tip := e.HoverEdge(0)
	require.Equal(t, "5.0 px", tip.Text)
}

func TestEditorClearHover(t *testing.T) {
	e := squareEditor()
	e.HoverEdge(2)

	e.ClearHover()
	_, ok := e.Tooltip()
	require.False(t, ok)
}

func TestEditorOnChange(t *testing.T) {
	e := squareEditor()
	var calls int
	e.OnChange(func() { calls++ })

	e.MoveVertex(0, pt(1, 1))
	e.HoverEdge(0)
	e.ClearHover()
	e.ClearHover() // already clear: no notification

	require.Equal(t, 3, calls)
}

func TestDefaultEditorIsRegularPentagon(t *testing.T) {
	e := DefaultEditor(400, 300)
	points := e.Points()
	require.Len(t, points, 5)

	center := geometry.Centroid(points)
	require.InDelta(t, 200, center.X, 1e-9)
	require.InDelta(t, 150, center.Y, 1e-9)
	for _, p := range points {
		require.InDelta(t, 105, p.Distance(center), 1e-9)
	}
}

func TestEditorPointsDetached(t *testing.T) {
	e := squareEditor()
	points := e.Points()
	points[0] = pt(999, 999)
	require.Equal(t, pt(0, 0), e.Points()[0])
}
