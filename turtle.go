package roadgraph

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model2d"
)

// Turtle is a little growth agent; where it is, which way it faces and
// how many segments it is from where it was spawned.
// Turtles are values - copy them freely, branches never share state.
type Turtle struct {
	position model2d.Coord
	heading  model2d.Coord // always unit length
	depth    int
}

// NewTurtle returns a turtle at pos facing heading (normalised).
// A zero length heading can't be normalised & is rejected.
func NewTurtle(pos, heading model2d.Coord, depth int) (Turtle, error) {
	n := heading.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Turtle{}, fmt.Errorf("%w: heading %v", ErrDegenerateHeading, heading)
	}
	if depth < 0 {
		depth = 0
	}
	return Turtle{position: pos, heading: heading.Scale(1 / n), depth: depth}, nil
}

// Position of the turtle
func (t Turtle) Position() model2d.Coord {
	return t.position
}

// Heading is the unit vector the turtle faces
func (t Turtle) Heading() model2d.Coord {
	return t.heading
}

// Depth is the number of segments travelled since spawn
func (t Turtle) Depth() int {
	return t.depth
}

// Advance moves the turtle distance along its heading
func (t *Turtle) Advance(distance float64) {
	t.position = t.position.Add(t.heading.Scale(distance))
}

// Rotated returns a copy turned counter-clockwise by deg degrees about z.
func (t Turtle) Rotated(deg float64) Turtle {
	rad := deg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	h := model2d.Coord{
		X: t.heading.X*cos - t.heading.Y*sin,
		Y: t.heading.X*sin + t.heading.Y*cos,
	}
	// rotation keeps length, normalise anyway so float drift can't build up
	t.heading = h.Normalize()
	return t
}

// SpawnChild returns a copy one segment deeper
func (t Turtle) SpawnChild() Turtle {
	t.depth++
	return t
}

// String for debugging
func (t Turtle) String() string {
	return fmt.Sprintf("turtle{pos: (%.2f, %.2f) heading: (%.3f, %.3f) depth: %d}",
		t.position.X, t.position.Y, t.heading.X, t.heading.Y, t.depth)
}
