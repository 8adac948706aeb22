package roadgraph

import (
	"io/ioutil"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// highways sit a little above streets in the mesh so overlapping quads
// don't fight
const highwayMeshZ = 0.5

// GeoJSON returns the network as a FeatureCollection. Edges are LineStrings
// (Left -> Right) with "kind" & "length" properties, intersections are Points.
// Coordinates are in the generator frame, not lon / lat.
func (n *Network) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, e := range n.edges {
		l, r := e.Left(), e.Right()
		f := geojson.NewLineStringFeature([][]float64{{l.X, l.Y}, {r.X, r.Y}})
		f.SetProperty("id", i)
		f.SetProperty("kind", string(e.Kind()))
		f.SetProperty("length", e.Length())
		fc.AddFeature(f)
	}
	for _, c := range n.intersections {
		f := geojson.NewPointFeature([]float64{c.X, c.Y})
		f.SetProperty("kind", "intersection")
		fc.AddFeature(f)
	}
	return fc.MarshalJSON()
}

// SaveGeoJSON writes GeoJSON() to disk
func (n *Network) SaveGeoJSON(fpath string) error {
	data, err := n.GeoJSON()
	if err != nil {
		return errors.Wrap(err, "can't convert network to geojson")
	}
	return errors.Wrapf(ioutil.WriteFile(fpath, data, 0644), "can't write %s", fpath)
}

// WKT returns every edge as a single MULTILINESTRING
func (n *Network) WKT() string {
	return wkt.MarshalString(n.multiLineString())
}

// SaveWKT writes WKT() to disk
func (n *Network) SaveWKT(fpath string) error {
	return errors.Wrapf(ioutil.WriteFile(fpath, []byte(n.WKT()), 0644), "can't write %s", fpath)
}

// Mesh returns a flat mesh with one quad (two triangles) per edge, placed
// the way a renderer would; centred on the edge, rotated along it & scaled
// by the road width.
func (n *Network) Mesh() *model3d.Mesh {
	mesh := model3d.NewMesh()
	for _, e := range n.edges {
		z := 0.0
		if e.Highway() {
			z = highwayMeshZ
		}

		q := e.Quad()
		corners := [4]model3d.Coord3D{}
		for i, c := range q {
			corners[i] = model3d.XYZ(c.X, c.Y, z)
		}
		mesh.Add(&model3d.Triangle{corners[0], corners[1], corners[2]})
		mesh.Add(&model3d.Triangle{corners[0], corners[2], corners[3]})
	}
	return mesh
}

// SaveSTL writes Mesh() to disk as an STL file
func (n *Network) SaveSTL(fpath string) error {
	return errors.Wrapf(n.Mesh().SaveGroupedSTL(fpath), "can't write %s", fpath)
}
