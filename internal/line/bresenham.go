package line

// Visitor is called for every pixel on a line, in order from start to end.
// Returning false stops the walk.
type Visitor func(x, y int) bool

// walk runs the all-octant integer bresenham from (x1,y1) to (x2,y2).
// Unlike the usual "sort by x" trick we keep the original direction since
// callers care which end a run of pixels starts at.
func walk(x1, y1, x2, y2 int, fn Visitor) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	e := dx + dy
	for {
		if !fn(x1, y1) {
			return
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy { // step x
			e += dy
			x1 += sx
		}
		if e2 <= dx { // step y
			e += dx
			y1 += sy
		}
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
