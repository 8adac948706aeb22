package roadgraph

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/roadgraph/internal/line"
)

// frameOffset is the working origin edges are canonicalised against.
// Points are stored shifted by -frameOffset & compared by distance from
// -frameOffset, so the endpoint further from (0,0) of the generator frame
// always ends up as Left.
var frameOffset = model2d.Coord{X: 850, Y: 530}

// Edge is a straight piece of road between two points.
// Edges are immutable once built; Left / Right is a canonical labelling
// only, roads have no direction.
type Edge struct {
	leftPt  model2d.Coord
	rightPt model2d.Coord
	highway bool
}

// Section is a piece of an edge, either over land or bridging water
type Section struct {
	Path   [2]image.Point
	Bridge bool `json:",omitempty"`
}

// NewEdge builds a canonicalised edge between p1 & p2.
// Coincident (or NaN) endpoints are rejected.
func NewEdge(p1, p2 model2d.Coord, highway bool) (*Edge, error) {
	if p1 == p2 || !finite(p1) || !finite(p2) {
		return nil, fmt.Errorf("%w: edge (%v) -> (%v)", ErrDegenerateGeometry, p1, p2)
	}

	p1o := p1.Sub(frameOffset)
	p2o := p2.Sub(frameOffset)
	origin := frameOffset.Scale(-1)

	e := &Edge{highway: highway}
	if origin.Dist(p1o) > origin.Dist(p2o) {
		e.leftPt, e.rightPt = p1o, p2o
	} else {
		e.leftPt, e.rightPt = p2o, p1o
	}
	return e, nil
}

// Left returns the endpoint furthest from the origin
func (e *Edge) Left() model2d.Coord {
	return e.leftPt.Add(frameOffset)
}

// Right returns the endpoint nearest the origin
func (e *Edge) Right() model2d.Coord {
	return e.rightPt.Add(frameOffset)
}

// Highway is true for phase one roads
func (e *Edge) Highway() bool {
	return e.highway
}

// Kind returns Highway or Street
func (e *Edge) Kind() RoadKind {
	if e.highway {
		return Highway
	}
	return Street
}

// Length of the edge
func (e *Edge) Length() float64 {
	return e.leftPt.Dist(e.rightPt)
}

// Midpoint of the edge
func (e *Edge) Midpoint() model2d.Coord {
	return e.Left().Mid(e.Right())
}

// Direction is the unit vector Left -> Right
func (e *Edge) Direction() model2d.Coord {
	return e.rightPt.Sub(e.leftPt).Normalize()
}

// Rotation returns the angle (radians, counter-clockwise) that takes the +y
// axis onto Direction(). Renderers place a unit quad along y, rotate by
// this & scale by (Width(), Length()).
func (e *Edge) Rotation() float64 {
	d := e.rightPt.Sub(e.leftPt)
	return math.Atan2(-d.X, d.Y)
}

// Width of the quad a renderer should draw for this edge
func (e *Edge) Width() float64 {
	return e.Kind().Width()
}

// Quad returns the four corners of the placed road quad, starting at Left.
// Corners wind counter-clockwise when Left -> Right points along +x.
func (e *Edge) Quad() [4]model2d.Coord {
	half := e.Width() / 2
	d := e.Direction()
	perp := model2d.Coord{X: -d.Y, Y: d.X}.Scale(half)
	l, r := e.Left(), e.Right()
	return [4]model2d.Coord{
		l.Sub(perp),
		r.Sub(perp),
		r.Add(perp),
		l.Add(perp),
	}
}

// Sections breaks the edge (Left -> Right) into runs of pixels that are
// either on land or over water (bridges) according to the land sampler.
// Pixels outside of the sampler are dropped.
func (e *Edge) Sections(land Sampler, threshold float64) []*Section {
	path := line.PointsBetween(toPixel(e.Left()), toPixel(e.Right()))

	sections := []*Section{}
	start := -1
	prevBridge := false

	flush := func(end int) {
		if start < 0 {
			return
		}
		sections = append(sections, &Section{Path: [2]image.Point{path[start], path[end]}, Bridge: prevBridge})
		start = -1
	}

	for i, p := range path {
		v := land.Sample(float64(p.X), float64(p.Y))
		if v == OutOfBounds {
			flush(i - 1)
			continue
		}
		bridge := v <= threshold
		if start >= 0 && bridge != prevBridge {
			flush(i - 1)
		}
		if start < 0 {
			start = i
			prevBridge = bridge
		}
	}
	flush(len(path) - 1)

	return sections
}

// MarshalJSON writes the edge in the generator frame
func (e *Edge) MarshalJSON() ([]byte, error) {
	l, r := e.Left(), e.Right()
	return json.Marshal(struct {
		Left    [2]float64
		Right   [2]float64
		Highway bool
	}{
		Left:    [2]float64{l.X, l.Y},
		Right:   [2]float64{r.X, r.Y},
		Highway: e.highway,
	})
}

// String for debugging
func (e *Edge) String() string {
	l, r := e.Left(), e.Right()
	return fmt.Sprintf("%s (%.2f, %.2f) -> (%.2f, %.2f)", e.Kind(), l.X, l.Y, r.X, r.Y)
}

// toPixel floors a coord to the raster cell it sits in
func toPixel(c model2d.Coord) image.Point {
	return image.Pt(int(math.Floor(c.X)), int(math.Floor(c.Y)))
}

// finite is false for NaN / Inf coords
func finite(c model2d.Coord) bool {
	return !math.IsNaN(c.X) && !math.IsNaN(c.Y) && !math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0)
}
