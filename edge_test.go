package roadgraph

import (
	"encoding/json"
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

func mustEdge(t *testing.T, x1, y1, x2, y2 float64, highway bool) *Edge {
	t.Helper()
	e, err := NewEdge(model2d.Coord{X: x1, Y: y1}, model2d.Coord{X: x2, Y: y2}, highway)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewEdgeCanonical(t *testing.T) {
	cases := []struct {
		name        string
		p1, p2      model2d.Coord
		left, right model2d.Coord
	}{
		{
			name: "further first",
			p1:   model2d.Coord{X: 100, Y: 0}, p2: model2d.Coord{X: 0, Y: 0},
			left: model2d.Coord{X: 100, Y: 0}, right: model2d.Coord{X: 0, Y: 0},
		},
		{
			name: "further second",
			p1:   model2d.Coord{X: 0, Y: 0}, p2: model2d.Coord{X: 100, Y: 0},
			left: model2d.Coord{X: 100, Y: 0}, right: model2d.Coord{X: 0, Y: 0},
		},
		{
			name: "negative side",
			p1:   model2d.Coord{X: -10, Y: 100}, p2: model2d.Coord{X: -400, Y: 0},
			left: model2d.Coord{X: -400, Y: 0}, right: model2d.Coord{X: -10, Y: 100},
		},
		{
			name: "tie goes to second",
			p1:   model2d.Coord{X: 100, Y: 0}, p2: model2d.Coord{X: 0, Y: 100},
			left: model2d.Coord{X: 0, Y: 100}, right: model2d.Coord{X: 100, Y: 0},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEdge(tt.p1, tt.p2, false)
			if err != nil {
				t.Fatal(err)
			}
			if !closeTo(e.Left(), tt.left, eps) {
				t.Errorf("Left must be %v, but got %v", tt.left, e.Left())
			}
			if !closeTo(e.Right(), tt.right, eps) {
				t.Errorf("Right must be %v, but got %v", tt.right, e.Right())
			}
			if e.Left().Norm() < e.Right().Norm() {
				t.Errorf("Left %v must be at least as far from the origin as Right %v", e.Left(), e.Right())
			}
		})
	}
}

func TestNewEdgeDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		p1, p2 model2d.Coord
	}{
		{"coincident", model2d.Coord{X: 3, Y: 4}, model2d.Coord{X: 3, Y: 4}},
		{"nan", model2d.Coord{X: math.NaN()}, model2d.Coord{X: 1}},
		{"inf", model2d.Coord{}, model2d.Coord{Y: math.Inf(-1)}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEdge(tt.p1, tt.p2, true)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("Error must be %v, but got %v", ErrDegenerateGeometry, err)
			}
		})
	}
}

func TestEdgePlacement(t *testing.T) {
	e := mustEdge(t, 0, 0, 100, 0, true)

	if e.Kind() != Highway || !e.Highway() {
		t.Errorf("Kind must be %s, but got %s", Highway, e.Kind())
	}
	if e.Length() != 100 {
		t.Errorf("Length must be 100, but got %v", e.Length())
	}
	if !closeTo(e.Midpoint(), model2d.Coord{X: 50}, eps) {
		t.Errorf("Midpoint must be (50, 0), but got %v", e.Midpoint())
	}
	if !closeTo(e.Direction(), model2d.Coord{X: -1}, eps) {
		t.Errorf("Direction must be (-1, 0), but got %v", e.Direction())
	}
	if e.Width() != 10 {
		t.Errorf("Width must be 10, but got %v", e.Width())
	}
	if math.Abs(e.Rotation()-math.Pi/2) > eps {
		t.Errorf("Rotation must be pi/2, but got %v", e.Rotation())
	}

	want := [4]model2d.Coord{{X: 100, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: -5}, {X: 100, Y: -5}}
	for i, c := range e.Quad() {
		if !closeTo(c, want[i], eps) {
			t.Errorf("Quad corner %d must be %v, but got %v", i, want[i], c)
		}
	}

	s := mustEdge(t, 0, 0, 0, 10, false)
	if s.Kind() != Street || s.Width() != 3 {
		t.Errorf("Street must be %s with width 3, but got %s with width %v", Street, s.Kind(), s.Width())
	}
}

func TestEdgeSections(t *testing.T) {
	land, err := NewRaster(10, 1, []uint8{255, 255, 255, 255, 0, 0, 255, 255, 255, 255})
	if err != nil {
		t.Fatal(err)
	}
	want := []*Section{
		{Path: [2]image.Point{image.Pt(9, 0), image.Pt(6, 0)}},
		{Path: [2]image.Point{image.Pt(5, 0), image.Pt(4, 0)}, Bridge: true},
		{Path: [2]image.Point{image.Pt(3, 0), image.Pt(0, 0)}},
	}

	cases := []struct {
		name string
		edge *Edge
	}{
		{"inside", mustEdge(t, 0, 0, 9, 0, false)},
		{"hangs off the map", mustEdge(t, -5, 0, 9, 0, true)},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.edge.Sections(land, defaultLandThreshold)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Sections must be %v, but got %v", want, got)
			}
		})
	}
}

func TestEdgeMarshalJSON(t *testing.T) {
	e := mustEdge(t, 1, 2, 30, 40, true)

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	got := struct {
		Left    [2]float64
		Right   [2]float64
		Highway bool
	}{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Left != [2]float64{30, 40} || got.Right != [2]float64{1, 2} || !got.Highway {
		t.Errorf("Decoded edge must be {[30 40] [1 2] true}, but got %v", got)
	}
}
