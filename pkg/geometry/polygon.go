package geometry

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultCloseTolerance is the radius in raw canvas units within which a
// click on the first vertex closes the polygon being drawn.
const DefaultCloseTolerance = 10.0

// Polygon is an ordered ring of vertices. The edge set connects consecutive
// points and wraps from the last point back to the first once completed.
type Polygon struct {
	Points    []Point2D `json:"points"`
	Completed bool      `json:"isCompleted"`
}

// NewPolygon creates a completed polygon from the given vertices.
func NewPolygon(points []Point2D) Polygon {
	return Polygon{Points: points, Completed: true}
}

// Clone returns a deep copy of the polygon.
func (pg Polygon) Clone() Polygon {
	points := make([]Point2D, len(pg.Points))
	copy(points, pg.Points)
	return Polygon{Points: points, Completed: pg.Completed}
}

// Edge returns the endpoints of edge i, wrapping from the last vertex
// back to the first.
func (pg Polygon) Edge(i int) (Point2D, Point2D) {
	n := len(pg.Points)
	return pg.Points[i%n], pg.Points[(i+1)%n]
}

// Area computes the polygon area via the shoelace formula, converted to
// squared real-world units by (scale/dpi)². Fewer than 3 points degenerate
// to an area of 0.
func Area(points []Point2D, scale, dpi float64) float64 {
	n := len(points)
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	unit := scale / dpi
	return math.Abs(sum/2) * unit * unit
}

// Centroid computes the vertex average of a set of points. This is the
// arithmetic mean position, not the area-weighted centroid.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return Point2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// Distance returns the Euclidean distance between two points converted to
// real-world units by scale/dpi.
func Distance(p1, p2 Point2D, scale, dpi float64) float64 {
	return p1.Distance(p2) * scale / dpi
}

// IsNearFirstPoint reports whether candidate lies strictly within tolerance
// of first, measured in raw canvas units. This is the polygon-closing
// gesture detector.
func IsNearFirstPoint(first, candidate Point2D, tolerance float64) bool {
	return first.Distance(candidate) < tolerance
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// NearestEdge returns the index of the polygon edge closest to p and the
// perpendicular distance to it in raw canvas units. Returns -1 for polygons
// with fewer than 2 points.
func NearestEdge(p Point2D, polygon []Point2D) (int, float64) {
	n := len(polygon)
	if n < 2 {
		return -1, 0
	}

	best := -1
	bestDist := math.MaxFloat64
	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		d := distanceToSegment(p, a, b)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, bestDist
}

// distanceToSegment computes the distance from p to the segment a-b.
func distanceToSegment(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(a.Add(ab.Scale(t)))
}
