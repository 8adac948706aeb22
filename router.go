package roadgraph

import (
	"fmt"
	"sync"

	"github.com/LdDl/ch"
	"github.com/unixpickle/model3d/model2d"
)

// ErrNoRoute implies two points aren't joined by the network (or aren't on it)
var ErrNoRoute = fmt.Errorf("no route")

// Router answers shortest path queries over a finished network.
// Vertices are edge endpoints (exact coords, nothing is snapped together),
// edges run both ways & cost their length.
type Router struct {
	lock sync.Mutex // ch queries share scratch state

	graph  ch.Graph
	ids    map[model2d.Coord]int64
	coords []model2d.Coord
	tree   *model2d.CoordTree
}

// NewRouter builds a contraction hierarchy over the network
func NewRouter(net *Network) (*Router, error) {
	r := &Router{
		graph:  ch.Graph{},
		ids:    map[model2d.Coord]int64{},
		coords: []model2d.Coord{},
	}

	vertex := func(c model2d.Coord) (int64, error) {
		id, ok := r.ids[c]
		if ok {
			return id, nil
		}
		id = int64(len(r.coords))
		err := r.graph.CreateVertex(id)
		if err != nil {
			return 0, err
		}
		r.ids[c] = id
		r.coords = append(r.coords, c)
		return id, nil
	}

	// overlapping streets are common; keep one (the cheapest) per pair
	type pair struct{ a, b int64 }
	costs := map[pair]float64{}
	order := []pair{}

	for _, e := range net.edges {
		a, err := vertex(e.Left())
		if err != nil {
			return nil, err
		}
		b, err := vertex(e.Right())
		if err != nil {
			return nil, err
		}
		if b < a {
			a, b = b, a
		}
		p := pair{a, b}
		cost, ok := costs[p]
		if !ok {
			order = append(order, p)
		}
		if !ok || e.Length() < cost {
			costs[p] = e.Length()
		}
	}

	for _, p := range order {
		err := r.graph.AddEdge(p.a, p.b, costs[p])
		if err != nil {
			return nil, err
		}
		err = r.graph.AddEdge(p.b, p.a, costs[p])
		if err != nil {
			return nil, err
		}
	}

	if len(r.coords) > 0 {
		r.graph.PrepareContractionHierarchies()
		r.tree = model2d.NewCoordTree(r.coords)
	}

	return r, nil
}

// Vertices is the number of distinct edge endpoints
func (r *Router) Vertices() int {
	return len(r.coords)
}

// Nearest returns the closest network vertex to p
func (r *Router) Nearest(p model2d.Coord) (model2d.Coord, bool) {
	if r.tree == nil {
		return model2d.Coord{}, false
	}
	found := r.tree.KNN(1, p)
	if len(found) == 0 {
		return model2d.Coord{}, false
	}
	return found[0], true
}

// Route returns the length & vertices of the shortest path between two
// edge endpoints. Points must match an endpoint exactly (see Nearest).
func (r *Router) Route(from, to model2d.Coord) (float64, []model2d.Coord, error) {
	src, ok := r.ids[from]
	if !ok {
		return 0, nil, fmt.Errorf("%w: (%.2f, %.2f) is not on the network", ErrNoRoute, from.X, from.Y)
	}
	dst, ok := r.ids[to]
	if !ok {
		return 0, nil, fmt.Errorf("%w: (%.2f, %.2f) is not on the network", ErrNoRoute, to.X, to.Y)
	}
	if src == dst {
		return 0, []model2d.Coord{from}, nil
	}

	r.lock.Lock()
	cost, path := r.graph.ShortestPath(src, dst)
	r.lock.Unlock()

	if cost < 0 || len(path) == 0 {
		return 0, nil, fmt.Errorf("%w: (%.2f, %.2f) -> (%.2f, %.2f)", ErrNoRoute, from.X, from.Y, to.X, to.Y)
	}

	coords := make([]model2d.Coord, len(path))
	for i, id := range path {
		coords[i] = r.coords[id]
	}
	return cost, coords, nil
}
