package line

import (
	"image"
)

// PointsBetween returns all points on a line from a to b (inclusive, in order)
func PointsBetween(a, b image.Point) []image.Point {
	pts := []image.Point{}
	walk(a.X, a.Y, b.X, b.Y, func(x, y int) bool {
		pts = append(pts, image.Pt(x, y))
		return true
	})
	return pts
}

