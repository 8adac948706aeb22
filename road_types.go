package roadgraph

import (
	"sort"

	"github.com/unixpickle/model3d/model2d"
)

// RoadKind says what sort of road an Edge is. There are only two;
// highways are laid first chasing population, streets fill in a grid around them.
type RoadKind string

const (
	Highway RoadKind = "highway" // density seeking main roads (phase one)
	Street  RoadKind = "street"  // local grid roads (phase two)
)

var (
	allKinds = []RoadKind{Highway, Street}

	kindIndex = map[RoadKind]int{
		Highway: 1,
		Street:  2,
	}

	invKindIndex = map[int]RoadKind{}

	// quad widths handed to renderers
	kindWidth = map[RoadKind]float64{
		Highway: 10,
		Street:  3,
	}
)

func init() {
	for k, v := range kindIndex {
		invKindIndex[v] = k
	}
}

// ID returns the index of a road kind, 0 if unknown
func (k RoadKind) ID() int {
	v, ok := kindIndex[k]
	if !ok {
		return 0
	}
	return v
}

// Width of a quad drawn for this kind of road
func (k RoadKind) Width() float64 {
	return kindWidth[k]
}

// kindForID is the inversion of RoadKind.ID()
func kindForID(i int) (RoadKind, bool) {
	k, ok := invKindIndex[i]
	return k, ok
}

// AllRoadKinds returns all known RoadKind enums
func AllRoadKinds() []RoadKind {
	return allKinds
}

// sortCoordsByDistance sorts points by how close they are to p
func sortCoordsByDistance(p model2d.Coord, in []model2d.Coord) {
	sort.SliceStable(in, func(a, b int) bool {
		return in[a].Dist(p) < in[b].Dist(p)
	})
}
