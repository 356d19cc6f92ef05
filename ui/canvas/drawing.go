// Package canvas provides drawing primitives for the sketch canvas.
package canvas

import (
	"image"
	"image/color"

	"polygon-measure/pkg/colorutil"
	"polygon-measure/pkg/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// fillOpacity is the translucency of a completed polygon's interior.
	fillOpacity = 0.15

	// minLabelEdge is the on-screen edge length below which the length
	// label is omitted to avoid clutter.
	minLabelEdge = 30.0
)

// drawCompletedPolygon renders one completed polygon: translucent fill,
// outline, vertex handles, the area label at the vertex centroid, and an
// edge-length label at each edge midpoint.
func (sc *SketchCanvas) drawCompletedPolygon(output *image.RGBA, pg geometry.Polygon, outline color.RGBA, scale, dpi float64) {
	scaled := sc.scalePoints(pg.Points)
	n := len(scaled)
	if n == 0 {
		return
	}

	if n >= 3 {
		fillPolygon(output, scaled, colorutil.WithAlpha(outline, 255), fillOpacity)
	}

	for i := 0; i < n; i++ {
		p1 := scaled[i]
		p2 := scaled[(i+1)%n]
		drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), outline, 2)
	}

	for _, p := range scaled {
		drawHandle(output, p, colorutil.Orange)
	}

	if n >= 3 {
		center := geometry.Centroid(scaled)
		drawText(output, formatArea(geometry.Area(pg.Points, scale, dpi)), center, colorutil.Black)
	}

	for i := 0; i < n; i++ {
		a, b := pg.Edge(i)
		sa, sb := scaled[i], scaled[(i+1)%n]
		if sa.Distance(sb) < minLabelEdge {
			continue
		}
		mid := geometry.Midpoint(sa, sb)
		drawText(output, formatLength(geometry.Distance(a, b, scale, dpi)), mid, colorutil.Blue)
	}
}

// drawInProgress renders the polyline being placed and the closing-gesture
// ring around its first vertex.
func (sc *SketchCanvas) drawInProgress(output *image.RGBA, points []geometry.Point2D) {
	if len(points) == 0 {
		return
	}
	scaled := sc.scalePoints(points)

	for i := 0; i+1 < len(scaled); i++ {
		drawLine(output,
			int(scaled[i].X), int(scaled[i].Y),
			int(scaled[i+1].X), int(scaled[i+1].Y),
			colorutil.Green, 2)
	}

	for _, p := range scaled {
		drawHandle(output, p, colorutil.Green)
	}

	// Ring showing where a click closes the polygon
	drawCircleOutline(output, scaled[0], sc.state.CloseTolerance()*sc.zoom, colorutil.Cyan)
}

// scalePoints converts canvas coordinates to output pixels at current zoom.
func (sc *SketchCanvas) scalePoints(points []geometry.Point2D) []geometry.Point2D {
	scaled := make([]geometry.Point2D, len(points))
	for i, p := range points {
		scaled[i] = p.Scale(sc.zoom)
	}
	return scaled
}

// fillPolygon fills a polygon with a translucent color using a scanline
// algorithm, blending against whatever is already on the output.
func fillPolygon(output *image.RGBA, points []geometry.Point2D, col color.RGBA, opacity float64) {
	bounds := output.Bounds()
	box := geometry.BoundingBox(points)
	n := len(points)

	for y := int(box.Y); y <= int(box.Y+box.Height); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		// Find all x intersections with polygon edges at this y
		var xIntersections []float64
		for i := 0; i < n; i++ {
			p1 := points[i]
			p2 := points[(i+1)%n]

			if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
				(p2.Y <= float64(y) && p1.Y > float64(y)) {
				t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
				xIntersections = append(xIntersections, p1.X+t*(p2.X-p1.X))
			}
		}

		// Sort intersections
		for i := 0; i < len(xIntersections)-1; i++ {
			for j := i + 1; j < len(xIntersections); j++ {
				if xIntersections[j] < xIntersections[i] {
					xIntersections[i], xIntersections[j] = xIntersections[j], xIntersections[i]
				}
			}
		}

		// Fill between pairs of intersections
		for i := 0; i+1 < len(xIntersections); i += 2 {
			x1 := int(xIntersections[i])
			x2 := int(xIntersections[i+1])
			for x := x1; x <= x2; x++ {
				if x >= bounds.Min.X && x < bounds.Max.X {
					output.SetRGBA(x, y, colorutil.Blend(output.RGBAAt(x, y), col, opacity))
				}
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		// Draw thick point
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawHandle draws a filled square vertex handle centered at p, with a
// black border so it reads on any background.
func drawHandle(output *image.RGBA, p geometry.Point2D, col color.RGBA) {
	bounds := output.Bounds()
	half := handleSize / 2
	cx, cy := int(p.X), int(p.Y)

	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			if x == cx-half || x == cx+half || y == cy-half || y == cy+half {
				output.Set(x, y, colorutil.Black)
			} else {
				output.Set(x, y, col)
			}
		}
	}
}

// drawCircleOutline draws a 2 pixel thick circle outline.
func drawCircleOutline(output *image.RGBA, center geometry.Point2D, radius float64, col color.RGBA) {
	bounds := output.Bounds()

	minX := int(center.X - radius - 1)
	maxX := int(center.X + radius + 1)
	minY := int(center.Y - radius - 1)
	maxY := int(center.Y + radius + 1)

	r2 := radius * radius
	innerR2 := (radius - 2) * (radius - 2)

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - center.X
			dy := float64(y) - center.Y
			dist2 := dx*dx + dy*dy

			if dist2 <= r2 && dist2 >= innerR2 {
				output.Set(x, y, col)
			}
		}
	}
}

// textWidth returns the rendered width of text in pixels.
func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// drawText draws a label centered at p using the basicfont face.
func drawText(output *image.RGBA, text string, p geometry.Point2D, col color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()

	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(int(p.X)-width/2, int(p.Y)+face.Metrics().Ascent.Ceil()/2),
	}
	d.DrawString(text)
}
