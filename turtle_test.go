package roadgraph

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

const eps = 1e-9

func closeTo(a, b model2d.Coord, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestNewTurtleDegenerate(t *testing.T) {
	cases := []struct {
		name    string
		heading model2d.Coord
	}{
		{"zero", model2d.Coord{}},
		{"nan", model2d.Coord{X: math.NaN(), Y: 1}},
		{"inf", model2d.Coord{X: math.Inf(1), Y: 0}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTurtle(model2d.Coord{}, tt.heading, 0)
			if !errors.Is(err, ErrDegenerateHeading) {
				t.Errorf("Error must be %v, but got %v", ErrDegenerateHeading, err)
			}
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("Error must wrap %v, but got %v", ErrDegenerateGeometry, err)
			}
		})
	}
}

func TestTurtleMoves(t *testing.T) {
	tr, err := NewTurtle(model2d.Coord{X: 1, Y: 1}, model2d.Coord{X: 3, Y: 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !closeTo(tr.Heading(), model2d.Coord{X: 0.6, Y: 0.8}, eps) {
		t.Errorf("Heading must be normalised to (0.6, 0.8), but got %v", tr.Heading())
	}

	tr.Advance(10)
	if !closeTo(tr.Position(), model2d.Coord{X: 7, Y: 9}, eps) {
		t.Errorf("Position must be (7, 9), but got %v", tr.Position())
	}
	if tr.Depth() != 2 {
		t.Errorf("Depth must be 2, but got %d", tr.Depth())
	}
}

func TestTurtleRotated(t *testing.T) {
	tr, err := NewTurtle(model2d.Coord{}, model2d.Coord{X: 1}, 3)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		deg  float64
		want model2d.Coord
	}{
		{0, model2d.Coord{X: 1, Y: 0}},
		{90, model2d.Coord{X: 0, Y: 1}},
		{180, model2d.Coord{X: -1, Y: 0}},
		{270, model2d.Coord{X: 0, Y: -1}},
		{-90, model2d.Coord{X: 0, Y: -1}},
		{45, model2d.Coord{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}},
	}
	for _, tt := range cases {
		got := tr.Rotated(tt.deg)
		if !closeTo(got.Heading(), tt.want, eps) {
			t.Errorf("Rotated(%v) heading must be %v, but got %v", tt.deg, tt.want, got.Heading())
		}
		if got.Depth() != 3 {
			t.Errorf("Rotated(%v) depth must be 3, but got %d", tt.deg, got.Depth())
		}
	}

	if !closeTo(tr.Heading(), model2d.Coord{X: 1}, 0) {
		t.Errorf("Rotated must not change the original, heading is %v", tr.Heading())
	}
}

func TestTurtleSpawnChild(t *testing.T) {
	tr, err := NewTurtle(model2d.Coord{X: 5, Y: 5}, model2d.Coord{Y: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}

	child := tr.SpawnChild()
	child.Advance(1)
	if child.Depth() != 1 {
		t.Errorf("Child depth must be 1, but got %d", child.Depth())
	}
	if tr.Position() != (model2d.Coord{X: 5, Y: 5}) {
		t.Errorf("Parent must not move with child, but is at %v", tr.Position())
	}
	if tr.Depth() != 0 {
		t.Errorf("Parent depth must stay 0, but got %d", tr.Depth())
	}
}
