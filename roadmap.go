package roadgraph

import (
	"fmt"
	"image"
	"image/color"

	"github.com/boljen/go-bitmap"
	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/voidshard/roadgraph/internal/encoding"
)

// ErrOutOfBounds implies a pixel query outside of a RoadMap
var ErrOutOfBounds = fmt.Errorf("out of bounds")

const (
	// bit numbers for our bitmap
	bitRoad         = 0
	bitHighway      = 1
	bitBridge       = 2
	bitIntersection = 3
)

// RoadMap is a graphical representation of a Network laid over the
// land & population it was grown on.
type RoadMap interface {
	// Save as custom file in a format defined by the library
	Save(fpath string) error

	// SaveAdv saves as an image with the given color scheme
	SaveAdv(fpath string, scheme *ColourScheme) error

	// CustomImage returns an image with the given color scheme
	CustomImage(scheme *ColourScheme) (image.Image, error)

	// IsRoad is true for any road pixel, highway or street
	IsRoad(x, y int) bool
	IsHighway(x, y int) bool
	IsBridge(x, y int) bool
	IsIntersection(x, y int) bool

	// Land & population values [0,1] that the map was built over
	Land(x, y int) (float64, error)
	Population(x, y int) (float64, error)

	// Kind of the widest road at x,y
	Kind(x, y int) (RoadKind, bool)
}

// imageMap is a particular implementation of RoadMap using a RGBA64
type imageMap struct {
	// Map is an RGBA64 image where each pixel of 64 bits is split via
	//
	// R [16 bits] -> land value scaled to 0-65535
	// G [16 bits] -> population value scaled to 0-65535
	// B [16 bits] -> unused
	// A [16 bits]
	//   16-9 [8 bits] -> road kind id (0 for none)
	//    8-1 [8 bits] -> bitmap (true if set, false if not)
	//       bit 0 -> isRoad
	//       bit 1 -> isHighway
	//       bit 2 -> isBridge
	//       bit 3 -> isIntersection
	//       bit 4-7 -> unused
	//
	im *image.RGBA64

	// values at or below this in R are water
	landThreshold float64

	// temporary map for the road network. We draw lines with a drawing lib
	// then transfer the result into im in endDraw()
	ctx *gg.Context
}

// ColourScheme defines how the various features of a RoadMap are coloured.
type ColourScheme struct {
	Roads         color.Color
	Highways      color.Color
	Bridges       color.Color
	Intersections color.Color
	Land          color.Color
	Water         color.Color
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Roads:         colornames.Dimgray,
		Highways:      colornames.Goldenrod,
		Bridges:       colornames.Darkgray,
		Intersections: colornames.Crimson,
		Land:          colornames.Darkseagreen,
		Water:         colornames.Steelblue,
	}
}

// NewRoadMap paints net over the given land & population. The map takes
// the size of the land sampler; pixels with land <= landThreshold that
// carry a road are bridges.
func NewRoadMap(net *Network, land, population Sampler, landThreshold float64) (RoadMap, error) {
	if net == nil || land == nil || population == nil {
		return nil, fmt.Errorf("%w: road map needs a network, land & population", ErrInvalidConfig)
	}
	w, h := land.Bounds()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: land sampler is %dx%d", ErrInvalidConfig, w, h)
	}

	c := newMap(image.Rect(0, 0, w, h), landThreshold)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.setValues(x, y, land.Sample(float64(x), float64(y)), population.Sample(float64(x), float64(y)))
		}
	}

	// streets first so highways paint over them
	for _, e := range net.edges {
		if !e.Highway() {
			c.drawRoad(e)
		}
	}
	for _, e := range net.highways {
		c.drawRoad(e)
	}
	c.endDraw()

	for _, p := range net.intersections {
		px := toPixel(p)
		if c.isOutOfBounds(px.X, px.Y) {
			continue
		}
		c.setBit(px.X, px.Y, bitIntersection)
	}

	return c, nil
}

// Map paints the generator's current network over its samplers
func (g *Generator) Map() (RoadMap, error) {
	return NewRoadMap(g.Network(), g.water, g.population, g.Config().LandThreshold)
}

// Save the RoadMap as is to disk
func (c *imageMap) Save(fpath string) error {
	return savePNG(fpath, c.im)
}

// CustomImage returns the RoadMap coloured with the given Scheme
func (c *imageMap) CustomImage(scheme *ColourScheme) (image.Image, error) {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	bnds := c.im.Bounds()
	im := image.NewRGBA(bnds)

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			bm := c.getBM(dx, dy)

			if bm.Get(bitIntersection) {
				im.Set(dx, dy, scheme.Intersections)
				continue
			} else if bm.Get(bitBridge) {
				im.Set(dx, dy, scheme.Bridges)
				continue
			} else if bm.Get(bitHighway) {
				im.Set(dx, dy, scheme.Highways)
				continue
			} else if bm.Get(bitRoad) {
				im.Set(dx, dy, scheme.Roads)
				continue
			}

			land, err := c.Land(dx, dy)
			if err != nil {
				return nil, err
			}
			if land > c.landThreshold {
				im.Set(dx, dy, scheme.Land)
			} else {
				im.Set(dx, dy, scheme.Water)
			}
		}
	}

	return im, nil
}

// SaveAdv essentially saves the RoadMap using the given scheme to disk.
// Essentially sugar around "CustomImage()" followed by writing out a PNG.
func (c *imageMap) SaveAdv(fpath string, scheme *ColourScheme) error {
	im, err := c.CustomImage(scheme)
	if err != nil {
		return err
	}
	ctx := gg.NewContextForRGBA(im.(*image.RGBA))
	return ctx.SavePNG(fpath)
}

// Land returns the land / water value at x,y
func (c *imageMap) Land(x, y int) (float64, error) {
	if c.isOutOfBounds(x, y) {
		return OutOfBounds, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return encoding.FromUnit16(c.im.RGBA64At(x, y).R), nil
}

// Population returns the population value at x,y
func (c *imageMap) Population(x, y int) (float64, error) {
	if c.isOutOfBounds(x, y) {
		return OutOfBounds, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return encoding.FromUnit16(c.im.RGBA64At(x, y).G), nil
}

// Kind returns the kind of the widest road at x,y
func (c *imageMap) Kind(x, y int) (RoadKind, bool) {
	if c.isOutOfBounds(x, y) {
		return "", false
	}
	id, _ := encoding.Split16(c.im.RGBA64At(x, y).A)
	return kindForID(int(id))
}

// IsRoad returns if there is a road at x,y
func (c *imageMap) IsRoad(x, y int) bool {
	return c.hasBit(x, y, bitRoad)
}

// IsHighway returns if there is a highway at x,y
func (c *imageMap) IsHighway(x, y int) bool {
	return c.hasBit(x, y, bitHighway)
}

// IsBridge returns if there is a bridge at x,y
func (c *imageMap) IsBridge(x, y int) bool {
	return c.hasBit(x, y, bitBridge)
}

// IsIntersection returns if an intersection was recorded at x,y
func (c *imageMap) IsIntersection(x, y int) bool {
	return c.hasBit(x, y, bitIntersection)
}

func (c *imageMap) hasBit(x, y, bit int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bit)
}

// setValues sets land & population at x,y
func (c *imageMap) setValues(x, y int, land, population float64) {
	v := c.im.RGBA64At(x, y)
	v.R = encoding.Unit16(land)
	v.G = encoding.Unit16(population)
	c.im.SetRGBA64(x, y, v)
}

// setKind sets the road kind at x,y
func (c *imageMap) setKind(x, y int, k RoadKind) {
	v := c.im.RGBA64At(x, y)
	_, bmbits := encoding.Split16(v.A)
	v.A = encoding.Merge8(uint8(k.ID()), bmbits)
	c.im.SetRGBA64(x, y, v)
}

// setBit sets a single bit at x,y
func (c *imageMap) setBit(x, y, bit int) {
	bm := c.getBM(x, y)
	bm.Set(bit, true)
	c.setBM(x, y, bm)
}

// setBM sets the 8 bit bitmap at x,y
func (c *imageMap) setBM(x, y int, bm bitmap.Bitmap) {
	num := encoding.FromBytes8(bm.Data(true))

	current := c.im.RGBA64At(x, y)
	kind, _ := encoding.Split16(current.A)
	current.A = encoding.Merge8(kind, num)

	c.im.SetRGBA64(x, y, current)
}

// getBM gets the 8 bit bitmap at x,y
func (c *imageMap) getBM(x, y int) bitmap.Bitmap {
	current := c.im.RGBA64At(x, y)

	_, bmdata := encoding.Split16(current.A)
	data := encoding.ToBytes8(bmdata)
	return bitmap.Bitmap(data)
}

// isOutOfBounds determines if x,y is outside of the image area
func (c *imageMap) isOutOfBounds(x, y int) bool {
	return !(image.Point{X: x, Y: y}).In(c.im.Bounds())
}

// drawRoad (line) on to our scratch image.
// Red marks a road, blue a highway.
func (c *imageMap) drawRoad(e *Edge) {
	col := color.RGBA{255, 0, 0, 255}
	if e.Highway() {
		col = color.RGBA{255, 0, 255, 255}
	}
	l, r := e.Left(), e.Right()

	c.ctx.SetColor(col)
	c.ctx.SetLineCapSquare()
	c.ctx.SetLineWidth(e.Width())
	c.ctx.DrawLine(l.X, l.Y, r.X, r.Y)
	c.ctx.Stroke()
}

// endDraw copies our rough road sketch to our proper map.
// We paint roads because it's much easier to lean on a graphics library
// & then copy the results over to our main image later.
func (c *imageMap) endDraw() {
	temp := c.ctx.Image()
	bnds := temp.Bounds()

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			r, _, b, _ := temp.At(dx, dy).RGBA()
			r = r >> 8
			b = b >> 8
			if r == 0 {
				continue
			}

			bm := bitmap.New(8)
			bm.Set(bitRoad, true)
			kind := Street
			if b > 0 {
				bm.Set(bitHighway, true)
				kind = Highway
			}

			land, _ := c.Land(dx, dy)
			if land <= c.landThreshold {
				bm.Set(bitBridge, true)
			}

			c.setBM(dx, dy, bm)
			c.setKind(dx, dy, kind)
		}
	}
}

// newMap returns a new map with the given bounds
func newMap(bounds image.Rectangle, landThreshold float64) *imageMap {
	ctx := gg.NewContextForRGBA(image.NewRGBA(bounds))
	ctx.SetRGBA(0, 0, 0, 0)
	ctx.Clear()

	return &imageMap{
		ctx:           ctx,
		im:            image.NewRGBA64(bounds),
		landThreshold: landThreshold,
	}
}
