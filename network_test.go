package roadgraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/unixpickle/model3d/model2d"
)

// smallNetwork is 4 highways & 29 streets, see TestStreets
func smallNetwork(t *testing.T) *Network {
	t.Helper()
	g := world(t, 1, 0, gridSize(130))
	if err := g.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	return g.Network()
}

func TestNetworkStats(t *testing.T) {
	net := smallNetwork(t)

	if net.Stats.EdgesByKind[Highway] != 4 {
		t.Errorf("Highway count must be 4, but got %d", net.Stats.EdgesByKind[Highway])
	}
	if net.Stats.EdgesByKind[Street] != 29 {
		t.Errorf("Street count must be 29, but got %d", net.Stats.EdgesByKind[Street])
	}
	if net.Stats.Intersections != 33 {
		t.Errorf("Intersections must be 33, but got %d", net.Stats.Intersections)
	}
	if net.Stats.MaxStreetDepth != 2 {
		t.Errorf("MaxStreetDepth must be 2, but got %d", net.Stats.MaxStreetDepth)
	}
	if net.Stats.HighwayBridges != 0 {
		t.Errorf("HighwayBridges must be 0 on dry land, but got %d", net.Stats.HighwayBridges)
	}

	total := 0.0
	for _, e := range net.Streets() {
		total += e.Length()
	}
	if diff := net.Stats.LengthByKind[Street] - total; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Street length must be %v, but got %v", total, net.Stats.LengthByKind[Street])
	}
}

func TestNetworkBound(t *testing.T) {
	net := smallNetwork(t)

	b := net.Bound()
	// highway start on the left, a street reaching up past it
	lo := model2d.Coord{X: b.Min[0], Y: b.Min[1]}
	if !closeTo(lo, model2d.Coord{X: -10, Y: 97.06945757817898}, 1e-6) {
		t.Errorf("Bound min must be (-10, 97.07), but got %v", b.Min)
	}
	if b.Max[1] != 999 {
		t.Errorf("Bound max y must be 999, but got %v", b.Max[1])
	}

	if newNetwork().Bound() != (orb.Bound{}) {
		t.Errorf("Empty network bound must be empty, but got %v", newNetwork().Bound())
	}
}

func TestIntersectionNear(t *testing.T) {
	net := smallNetwork(t)

	got, ok := net.IntersectionNear(model2d.Coord{X: 290, Y: 370}, SnapRadius)
	if !ok {
		t.Fatal("Must find an intersection near (290, 370)")
	}
	want := model2d.Coord{X: 287.2579301909577, Y: 367.6522425435433}
	if !closeTo(got, want, 1e-6) {
		t.Errorf("Intersection must be %v, but got %v", want, got)
	}

	if _, ok := net.IntersectionNear(model2d.Coord{X: 1800, Y: 50}, SnapRadius); ok {
		t.Error("Must not find an intersection near (1800, 50)")
	}
	if _, ok := newNetwork().IntersectionNear(want, SnapRadius); ok {
		t.Error("Empty network must have no intersections")
	}
}

func TestIntersectionsWithin(t *testing.T) {
	net := smallNetwork(t)
	p := model2d.Coord{X: 290, Y: 370}
	radius := 250.0

	expect := 0
	for _, c := range net.Intersections() {
		if c.Dist(p) <= radius {
			expect++
		}
	}

	got := net.IntersectionsWithin(p, radius)
	if len(got) != expect {
		t.Fatalf("Intersections within %v must be %d, but got %d", radius, expect, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Dist(p) < got[i-1].Dist(p) {
			t.Errorf("Intersections must be sorted by distance, %v comes after %v", got[i], got[i-1])
		}
	}
	if len(newNetwork().IntersectionsWithin(p, radius)) != 0 {
		t.Error("Empty network must have no intersections")
	}
}

func TestNetworkJSON(t *testing.T) {
	net := smallNetwork(t)

	data, err := net.JSON()
	if err != nil {
		t.Fatal(err)
	}
	got := struct {
		Edges         []json.RawMessage
		Intersections [][2]float64
		Stats         NetworkStats
	}{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Edges) != 33 || len(got.Intersections) != 33 {
		t.Errorf("JSON must have 33 edges & intersections, but got %d & %d", len(got.Edges), len(got.Intersections))
	}
	if got.Stats.EdgesByKind[Street] != 29 {
		t.Errorf("JSON stats must have 29 streets, but got %d", got.Stats.EdgesByKind[Street])
	}
}

func TestNetworkGeoJSON(t *testing.T) {
	net := smallNetwork(t)

	data, err := net.GeoJSON()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 66 {
		t.Fatalf("Features must be 66, but got %d", len(fc.Features))
	}
	if kind := fc.Features[0].Properties["kind"]; kind != "highway" {
		t.Errorf("First feature must be a highway, but got %v", kind)
	}
	if !fc.Features[0].Geometry.IsLineString() {
		t.Errorf("Edges must be LineStrings, but got %s", fc.Features[0].Geometry.Type)
	}
	if !fc.Features[65].Geometry.IsPoint() {
		t.Errorf("Intersections must be Points, but got %s", fc.Features[65].Geometry.Type)
	}
}

func TestNetworkWKT(t *testing.T) {
	net := smallNetwork(t)

	got := net.WKT()
	if !strings.HasPrefix(got, "MULTILINESTRING((") {
		t.Errorf("WKT must be a MULTILINESTRING, but got %.40s", got)
	}
	if n := strings.Count(got, "("); n != 34 {
		t.Errorf("WKT must hold 33 lines, but got %d brackets", n)
	}
	if newNetwork().WKT() != "MULTILINESTRING EMPTY" {
		t.Errorf("Empty WKT must be MULTILINESTRING EMPTY, but got %s", newNetwork().WKT())
	}
}

func TestNetworkMesh(t *testing.T) {
	net := smallNetwork(t)

	mesh := net.Mesh()
	if n := len(mesh.TriangleSlice()); n != 66 {
		t.Errorf("Mesh must have 66 triangles, but got %d", n)
	}
}

func TestNetworkSave(t *testing.T) {
	net := smallNetwork(t)
	dir := t.TempDir()

	cases := []struct {
		name string
		save func(string) error
	}{
		{"roads.json", net.SaveJSON},
		{"roads.geojson", net.SaveGeoJSON},
		{"roads.wkt", net.SaveWKT},
		{"roads.stl", net.SaveSTL},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			fpath := filepath.Join(dir, tt.name)
			if err := tt.save(fpath); err != nil {
				t.Fatal(err)
			}
			info, err := os.Stat(fpath)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() == 0 {
				t.Errorf("%s must not be empty", tt.name)
			}
		})
	}
}
