// Package app provides application state, events, and lifecycle helpers.
package app

import (
	"sync"

	"polygon-measure/internal/snapshot"
	"polygon-measure/pkg/geometry"
)

// Default calibration. Scale is real-world units per reference unit, DPI is
// reference units per canvas unit. Both must stay positive: area and
// distance conversion divide by DPI.
const (
	DefaultScale = 1.0
	DefaultDPI   = 96.0
)

// EventType identifies different application events.
type EventType int

const (
	EventModeChanged EventType = iota
	EventSketchChanged
	EventPolygonAdded
	EventPolygonRemoved
	EventVertexMoved
	EventCalibrationChanged
	EventSnapshotLoaded
	EventSnapshotSaved
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// VertexMove describes a vertex drag delivered by the canvas.
type VertexMove struct {
	Polygon  int
	Vertex   int
	Position geometry.Point2D
}

// State holds the drawing session: the completed polygons, the polygon
// currently being placed, the drawing-mode flag, and the calibration
// scalars. All transitions run synchronously on the UI goroutine; the
// mutex only guards against listeners registered from other goroutines.
type State struct {
	mu sync.RWMutex

	// Snapshot
	SnapshotPath string
	Modified     bool

	polygons   []geometry.Polygon
	inProgress []geometry.Point2D
	drawing    bool

	scale float64
	dpi   float64

	closeTolerance float64

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewState creates a new session with default calibration and an empty
// polygon list.
func NewState() *State {
	return &State{
		scale:          DefaultScale,
		dpi:            DefaultDPI,
		closeTolerance: geometry.DefaultCloseTolerance,
		listeners:      make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// DrawingEnabled returns whether clicks currently place vertices.
func (s *State) DrawingEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawing
}

// ToggleDrawingMode flips the drawing-enabled flag. Enabling always starts
// from a fresh in-progress polygon, discarding any stray points left over
// from an earlier session.
func (s *State) ToggleDrawingMode() {
	s.mu.Lock()
	s.drawing = !s.drawing
	if s.drawing {
		s.inProgress = nil
	}
	enabled := s.drawing
	s.mu.Unlock()

	s.Emit(EventModeChanged, enabled)
	s.Emit(EventSketchChanged, nil)
}

// AddPoint handles a click at p. Ignored unless drawing is enabled. A click
// within the close tolerance of the first in-progress vertex finalizes the
// polygon; the closing click itself does not become a vertex, the ring
// implicitly wraps back to vertex 0. Any other click appends a vertex.
func (s *State) AddPoint(p geometry.Point2D) {
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return
	}

	if len(s.inProgress) > 0 && geometry.IsNearFirstPoint(s.inProgress[0], p, s.closeTolerance) {
		poly := geometry.Polygon{Points: s.inProgress, Completed: true}
		s.polygons = append(s.polygons, poly)
		s.inProgress = nil
		s.Modified = true
		s.mu.Unlock()

		s.Emit(EventPolygonAdded, poly)
		s.Emit(EventSketchChanged, nil)
		s.Emit(EventModified, true)
		return
	}

	s.inProgress = append(s.inProgress, p)
	s.mu.Unlock()

	s.Emit(EventSketchChanged, nil)
}

// CancelInProgress discards the polygon currently being placed.
func (s *State) CancelInProgress() {
	s.mu.Lock()
	changed := len(s.inProgress) > 0
	s.inProgress = nil
	s.mu.Unlock()

	if changed {
		s.Emit(EventSketchChanged, nil)
	}
}

// MoveVertex replaces the coordinates of one vertex of a completed polygon.
// Indices come from rendered vertex handles and are expected to be valid;
// out-of-range indices are ignored rather than panicking the UI.
func (s *State) MoveVertex(polygonIndex, vertexIndex int, pos geometry.Point2D) {
	s.mu.Lock()
	if polygonIndex < 0 || polygonIndex >= len(s.polygons) {
		s.mu.Unlock()
		return
	}
	points := s.polygons[polygonIndex].Points
	if vertexIndex < 0 || vertexIndex >= len(points) {
		s.mu.Unlock()
		return
	}
	points[vertexIndex] = pos
	s.Modified = true
	s.mu.Unlock()

	s.Emit(EventVertexMoved, VertexMove{Polygon: polygonIndex, Vertex: vertexIndex, Position: pos})
	s.Emit(EventSketchChanged, nil)
	s.Emit(EventModified, true)
}

// DeletePolygon removes a completed polygon.
func (s *State) DeletePolygon(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.polygons) {
		s.mu.Unlock()
		return
	}
	s.polygons = append(s.polygons[:index], s.polygons[index+1:]...)
	s.Modified = true
	s.mu.Unlock()

	s.Emit(EventPolygonRemoved, index)
	s.Emit(EventSketchChanged, nil)
	s.Emit(EventModified, true)
}

// Clear removes all polygons and the in-progress points.
func (s *State) Clear() {
	s.mu.Lock()
	s.polygons = nil
	s.inProgress = nil
	s.Modified = true
	s.mu.Unlock()

	s.Emit(EventPolygonRemoved, -1)
	s.Emit(EventSketchChanged, nil)
	s.Emit(EventModified, true)
}

// Polygons returns the completed polygons in insertion order.
func (s *State) Polygons() []geometry.Polygon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geometry.Polygon, len(s.polygons))
	copy(out, s.polygons)
	return out
}

// InProgress returns the points of the polygon being placed.
func (s *State) InProgress() []geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geometry.Point2D, len(s.inProgress))
	copy(out, s.inProgress)
	return out
}

// Scale returns the current scale calibration.
func (s *State) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// DPI returns the current DPI calibration.
func (s *State) DPI() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dpi
}

// SetCalibration updates the calibration scalars. Non-positive values are
// rejected to keep derived area and length computations finite. Stored
// geometry is untouched; only future derived values change.
func (s *State) SetCalibration(scale, dpi float64) bool {
	if scale <= 0 || dpi <= 0 {
		return false
	}
	s.mu.Lock()
	s.scale = scale
	s.dpi = dpi
	s.mu.Unlock()

	s.Emit(EventCalibrationChanged, nil)
	s.Emit(EventSketchChanged, nil)
	return true
}

// CloseTolerance returns the closing-gesture radius in canvas units.
func (s *State) CloseTolerance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeTolerance
}

// SetCloseTolerance overrides the closing-gesture radius.
func (s *State) SetCloseTolerance(tol float64) {
	if tol <= 0 {
		return
	}
	s.mu.Lock()
	s.closeTolerance = tol
	s.mu.Unlock()
}

// ExportSnapshot projects the session into its serializable form. The
// polygons are deep-copied so later edits do not leak into the export.
func (s *State) ExportSnapshot() *snapshot.File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polygons := make([]geometry.Polygon, len(s.polygons))
	for i, pg := range s.polygons {
		polygons[i] = pg.Clone()
	}
	return snapshot.New(polygons, s.scale, s.dpi)
}

// ImportSnapshot replaces the polygon list and calibration wholesale with
// the parsed snapshot. The in-progress polygon is discarded.
func (s *State) ImportSnapshot(f *snapshot.File) {
	s.mu.Lock()
	s.polygons = make([]geometry.Polygon, len(f.Polygons))
	for i, pg := range f.Polygons {
		s.polygons[i] = pg.Clone()
	}
	s.inProgress = nil
	s.scale = f.Scale
	s.dpi = f.DPI
	s.Modified = false
	path := s.SnapshotPath
	s.mu.Unlock()

	s.Emit(EventSnapshotLoaded, path)
	s.Emit(EventCalibrationChanged, nil)
	s.Emit(EventSketchChanged, nil)
}

// LoadSnapshot loads a snapshot file from disk into the session. On any
// load or parse failure the session is left untouched.
func (s *State) LoadSnapshot(path string) error {
	f, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.SnapshotPath = path
	s.mu.Unlock()

	s.ImportSnapshot(f)
	return nil
}

// SaveSnapshot writes the session to a snapshot file.
func (s *State) SaveSnapshot(path string) error {
	if err := s.ExportSnapshot().Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.SnapshotPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSnapshotSaved, path)
	s.Emit(EventModified, false)
	return nil
}
