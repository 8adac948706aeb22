package roadgraph

import (
	"encoding/json"
	"io/ioutil"
	"sync"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

// SnapRadius is the default radius for IntersectionNear lookups
const SnapRadius = 20.0

// NetworkStats holds some counts about a finished network
type NetworkStats struct {
	EdgesByKind    map[RoadKind]int
	LengthByKind   map[RoadKind]float64
	Intersections  int
	HighwayBridges int // highway sections running over water
	MaxStreetDepth int // deepest turtle that laid a street
}

func newNetworkStats() *NetworkStats {
	return &NetworkStats{
		EdgesByKind:  map[RoadKind]int{},
		LengthByKind: map[RoadKind]float64{},
	}
}

// Network is the output of a generator run; an ordered list of edges
// (highways first, in creation order, then streets) and every intersection
// point recorded along the way.
// Once handed out a Network is never written to again.
type Network struct {
	edges         []*Edge
	highways      []*Edge
	intersections []model2d.Coord
	maxDepth      int

	Stats *NetworkStats

	treeOnce sync.Once
	tree     *model2d.CoordTree
}

func newNetwork() *Network {
	return &Network{
		edges:         []*Edge{},
		highways:      []*Edge{},
		intersections: []model2d.Coord{},
		Stats:         newNetworkStats(),
	}
}

// clone returns a writable copy (edges themselves are immutable & shared)
func (n *Network) clone() *Network {
	c := newNetwork()
	c.edges = append(c.edges, n.edges...)
	c.highways = append(c.highways, n.highways...)
	c.intersections = append(c.intersections, n.intersections...)
	c.maxDepth = n.maxDepth
	return c
}

func (n *Network) addHighway(e *Edge) {
	n.edges = append(n.edges, e)
	n.highways = append(n.highways, e)
}

func (n *Network) addStreet(e *Edge, depth int) {
	n.edges = append(n.edges, e)
	if depth > n.maxDepth {
		n.maxDepth = depth
	}
}

func (n *Network) addIntersection(c model2d.Coord) {
	n.intersections = append(n.intersections, c)
}

// finalise fills in Stats, called once before a network is published
func (n *Network) finalise(land Sampler, threshold float64) {
	stats := newNetworkStats()
	for _, e := range n.edges {
		stats.EdgesByKind[e.Kind()]++
		stats.LengthByKind[e.Kind()] += e.Length()
	}
	// streets join points that are both on land, only highways are worth
	// walking for water
	for _, e := range n.highways {
		for _, s := range e.Sections(land, threshold) {
			if s.Bridge {
				stats.HighwayBridges++
			}
		}
	}
	stats.Intersections = len(n.intersections)
	stats.MaxStreetDepth = n.maxDepth
	n.Stats = stats
}

// Edges returns all edges in generation order
func (n *Network) Edges() []*Edge {
	out := make([]*Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Highways returns edges laid by highway growth, in creation order
func (n *Network) Highways() []*Edge {
	out := make([]*Edge, len(n.highways))
	copy(out, n.highways)
	return out
}

// Streets returns edges laid by street growth
func (n *Network) Streets() []*Edge {
	out := []*Edge{}
	for _, e := range n.edges {
		if !e.Highway() {
			out = append(out, e)
		}
	}
	return out
}

// Intersections returns every recorded intersection point.
// Points are recorded as roads are laid & are not de-duplicated.
func (n *Network) Intersections() []model2d.Coord {
	out := make([]model2d.Coord, len(n.intersections))
	copy(out, n.intersections)
	return out
}

// Len is the number of edges
func (n *Network) Len() int {
	return len(n.edges)
}

// Bound returns the smallest box containing every edge.
// An empty network returns an empty bound at (0,0).
func (n *Network) Bound() orb.Bound {
	if len(n.edges) == 0 {
		return orb.Bound{}
	}
	return n.multiLineString().Bound()
}

// IntersectionNear returns the closest recorded intersection to p if it
// is within radius.
// Nothing in generation calls this; growth never snaps to existing points.
func (n *Network) IntersectionNear(p model2d.Coord, radius float64) (model2d.Coord, bool) {
	tree := n.coordTree()
	if tree == nil {
		return model2d.Coord{}, false
	}
	found := tree.KNN(1, p)
	if len(found) == 0 || found[0].Dist(p) > radius {
		return model2d.Coord{}, false
	}
	return found[0], true
}

// IntersectionsWithin returns all recorded intersections within radius
// of p, closest first. Duplicates are returned as many times as recorded.
func (n *Network) IntersectionsWithin(p model2d.Coord, radius float64) []model2d.Coord {
	tree := n.coordTree()
	if tree == nil {
		return []model2d.Coord{}
	}

	var found []model2d.Coord
	for k := 8; true; k *= 2 {
		found = tree.KNN(k, p)
		if len(found) < k || found[len(found)-1].Dist(p) > radius {
			break
		}
	}

	out := []model2d.Coord{}
	for _, c := range found {
		if c.Dist(p) <= radius {
			out = append(out, c)
		}
	}
	sortCoordsByDistance(p, out)
	return out
}

// coordTree lazily builds a lookup tree over intersections
func (n *Network) coordTree() *model2d.CoordTree {
	n.treeOnce.Do(func() {
		if len(n.intersections) == 0 {
			return
		}
		n.tree = model2d.NewCoordTree(n.intersections)
	})
	return n.tree
}

// JSON returns the network as json
func (n *Network) JSON() ([]byte, error) {
	points := make([][2]float64, len(n.intersections))
	for i, c := range n.intersections {
		points[i] = [2]float64{c.X, c.Y}
	}
	return json.Marshal(struct {
		Edges         []*Edge
		Intersections [][2]float64
		Stats         *NetworkStats
	}{
		Edges:         n.edges,
		Intersections: points,
		Stats:         n.Stats,
	})
}

// SaveJSON writes JSON() to disk
func (n *Network) SaveJSON(fpath string) error {
	data, err := n.JSON()
	if err != nil {
		return errors.Wrap(err, "can't marshal network")
	}
	return errors.Wrapf(ioutil.WriteFile(fpath, data, 0644), "can't write %s", fpath)
}

// multiLineString converts edges to orb lines (Left -> Right)
func (n *Network) multiLineString() orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(n.edges))
	for _, e := range n.edges {
		l, r := e.Left(), e.Right()
		mls = append(mls, orb.LineString{{l.X, l.Y}, {r.X, r.Y}})
	}
	return mls
}
