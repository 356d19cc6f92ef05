package app

import (
	"os"
	"path/filepath"
	"testing"

	"polygon-measure/internal/snapshot"
	"polygon-measure/pkg/geometry"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

func TestAddPointIgnoredWhenDrawingDisabled(t *testing.T) {
	s := NewState()

	s.AddPoint(pt(10, 10))

	require.Empty(t, s.InProgress())
	require.Empty(t, s.Polygons())
}

func TestClosingGesture(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()

	a := pt(100, 100)
	b := pt(200, 100)
	c := pt(150, 200)

	s.AddPoint(a)
	s.AddPoint(b)
	s.AddPoint(c)
	// Within the default tolerance of A: closes the ring.
	s.AddPoint(pt(104, 103))

	polys := s.Polygons()
	require.Len(t, polys, 1)
	require.True(t, polys[0].Completed)
	require.Equal(t, []geometry.Point2D{a, b, c}, polys[0].Points,
		"the closing click must not become a vertex")
	require.Empty(t, s.InProgress())
	require.True(t, s.DrawingEnabled(), "closing a polygon keeps drawing mode on")
}

func TestFirstPointNeverCloses(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()

	// The very first click always becomes vertex 0, even though it is
	// trivially "near" a (nonexistent) first vertex.
	s.AddPoint(pt(50, 50))
	require.Len(t, s.InProgress(), 1)
	require.Empty(t, s.Polygons())
}

func TestClickBeyondToleranceAppends(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()

	s.AddPoint(pt(0, 0))
	s.AddPoint(pt(10, 0)) // exactly at default tolerance: not a close
	require.Len(t, s.InProgress(), 2)
	require.Empty(t, s.Polygons())
}

func TestCustomCloseTolerance(t *testing.T) {
	s := NewState()
	s.SetCloseTolerance(50)
	s.ToggleDrawingMode()

	s.AddPoint(pt(0, 0))
	s.AddPoint(pt(100, 0))
	s.AddPoint(pt(30, 0)) // within 50 of the first vertex

	require.Len(t, s.Polygons(), 1)
	require.Equal(t, []geometry.Point2D{pt(0, 0), pt(100, 0)}, s.Polygons()[0].Points)
}

func TestToggleDrawingModeClearsInProgress(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()
	s.AddPoint(pt(1, 1))
	s.AddPoint(pt(50, 1))

	s.ToggleDrawingMode() // off, stray points remain parked
	s.ToggleDrawingMode() // on again: must start fresh

	require.Empty(t, s.InProgress())
}

func TestMoveVertexTouchesOnlyThatVertex(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(2, 2)) // close first square
	for _, p := range []geometry.Point2D{pt(300, 300), pt(400, 300), pt(350, 400)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(301, 301)) // close triangle

	before := s.Polygons()
	s.MoveVertex(0, 2, pt(120, 130))
	after := s.Polygons()

	require.Equal(t, pt(120, 130), after[0].Points[2])
	for i := range before[0].Points {
		if i == 2 {
			continue
		}
		require.Equal(t, before[0].Points[i], after[0].Points[i])
	}
	require.Equal(t, before[1].Points, after[1].Points, "other polygons must be untouched")
}

func TestMoveVertexOutOfRangeIgnored(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(10, 0), pt(5, 10)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(1, 1))

	before := s.Polygons()
	s.MoveVertex(5, 0, pt(1, 1))
	s.MoveVertex(0, 99, pt(1, 1))
	s.MoveVertex(-1, 0, pt(1, 1))
	require.Equal(t, before, s.Polygons())
}

func TestCancelInProgress(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()
	s.AddPoint(pt(1, 1))
	s.AddPoint(pt(2, 2))

	s.CancelInProgress()
	require.Empty(t, s.InProgress())
	require.True(t, s.DrawingEnabled())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewState()
	s.SetCalibration(2.54, 300)
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(3, 3))

	exported := s.ExportSnapshot()

	restored := NewState()
	restored.ImportSnapshot(exported)

	require.Equal(t, s.Polygons(), restored.Polygons())
	require.Equal(t, 2.54, restored.Scale())
	require.Equal(t, float64(300), restored.DPI())
	require.Empty(t, restored.InProgress())
}

func TestExportSnapshotIsDetached(t *testing.T) {
	s := NewState()
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(10, 0), pt(5, 10)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(1, 1))

	exported := s.ExportSnapshot()
	s.MoveVertex(0, 0, pt(500, 500))

	require.Equal(t, pt(0, 0), exported.Polygons[0].Points[0],
		"export must not alias live session geometry")
}

func TestLoadSnapshotFailureLeavesStateIntact(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad"+snapshot.Ext)
	// Parseable JSON, but the dpi field is missing.
	require.NoError(t,
		writeFile(bad, `{"polygons": [], "scale": 1}`))

	s := NewState()
	s.SetCalibration(3, 150)
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(10, 0), pt(5, 10)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(1, 1))
	before := s.Polygons()

	err := s.LoadSnapshot(bad)
	require.True(t, errors.Is(err, snapshot.ErrParse), "want ErrParse, got %v", err)
	require.Equal(t, before, s.Polygons())
	require.Equal(t, float64(3), s.Scale())
	require.Equal(t, float64(150), s.DPI())
}

func TestSaveAndLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session"+snapshot.Ext)

	s := NewState()
	s.SetCalibration(1.5, 72)
	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(40, 0), pt(20, 30)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(2, 1))

	require.NoError(t, s.SaveSnapshot(path))
	require.False(t, s.Modified)

	loaded := NewState()
	require.NoError(t, loaded.LoadSnapshot(path))
	require.Equal(t, s.Polygons(), loaded.Polygons())
	require.Equal(t, path, loaded.SnapshotPath)
}

func TestSetCalibrationRejectsNonPositive(t *testing.T) {
	s := NewState()
	require.False(t, s.SetCalibration(0, 96))
	require.False(t, s.SetCalibration(1, -5))
	require.Equal(t, DefaultScale, s.Scale())
	require.Equal(t, DefaultDPI, s.DPI())

	require.True(t, s.SetCalibration(2, 120))
	require.Equal(t, float64(2), s.Scale())
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestEvents(t *testing.T) {
	s := NewState()

	var added int
	var modeChanges []bool
	s.On(EventPolygonAdded, func(data interface{}) {
		added++
		pg, ok := data.(geometry.Polygon)
		require.True(t, ok)
		require.True(t, pg.Completed)
	})
	s.On(EventModeChanged, func(data interface{}) {
		modeChanges = append(modeChanges, data.(bool))
	})

	s.ToggleDrawingMode()
	for _, p := range []geometry.Point2D{pt(0, 0), pt(10, 0), pt(5, 10)} {
		s.AddPoint(p)
	}
	s.AddPoint(pt(1, 1))
	s.ToggleDrawingMode()

	require.Equal(t, 1, added)
	require.Equal(t, []bool{true, false}, modeChanges)
}
