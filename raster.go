package roadgraph

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoders for LoadRaster
	_ "image/png"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// OutOfBounds is returned by Sample for points outside of the grid
const OutOfBounds = -1.0

// Channel picks which 8 bit channel of an image a Raster reads
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

// Raster is a Sampler over a fixed size grid of 8 bit values.
// Values are normalised 0..255 -> 0.0..1.0 when sampled.
type Raster struct {
	width  int
	height int
	data   []uint8

	// clamp area, [0,w-1] x [0,h-1]
	area r2.Rect
}

// NewRaster returns a raster of w x h cells, data is row major (index x + y*w).
func NewRaster(w, h int, data []uint8) (*Raster, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: raster must be at least 1x1, got %dx%d", ErrInvalidConfig, w, h)
	}
	if len(data) != w*h {
		return nil, fmt.Errorf("%w: raster %dx%d expects %d values, got %d", ErrInvalidConfig, w, h, w*h, len(data))
	}
	return &Raster{
		width:  w,
		height: h,
		data:   data,
		area:   r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: float64(w - 1), Y: float64(h - 1)}),
	}, nil
}

// NewUniformRaster returns a w x h raster where every cell samples as v (clamped to [0,1]).
// Handy for tests & flat maps.
func NewUniformRaster(w, h int, v float64) (*Raster, error) {
	b := uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	data := make([]uint8, w*h)
	for i := range data {
		data[i] = b
	}
	return NewRaster(w, h, data)
}

// RasterFromImage reads channel `ch` of every pixel in img.
// The image bounds Min becomes (0,0) of the raster.
func RasterFromImage(img image.Image, ch Channel) (*Raster, error) {
	bnds := img.Bounds()
	w := bnds.Max.X - bnds.Min.X
	h := bnds.Max.Y - bnds.Min.Y

	data := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// non premultiplied, same bytes a canvas would hand back
			px := color.NRGBAModel.Convert(img.At(bnds.Min.X+x, bnds.Min.Y+y)).(color.NRGBA)
			switch ch {
			case Green:
				data[x+y*w] = px.G
			case Blue:
				data[x+y*w] = px.B
			case Alpha:
				data[x+y*w] = px.A
			default:
				data[x+y*w] = px.R
			}
		}
	}

	return NewRaster(w, h, data)
}

// LoadRaster decodes an image file (png or jpeg) and reads the given channel.
func LoadRaster(fpath string, ch Channel) (*Raster, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open raster %s", fpath)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode raster %s", fpath)
	}
	return RasterFromImage(img, ch)
}

// Bounds returns width, height
func (r *Raster) Bounds() (int, int) {
	return r.width, r.height
}

// InBounds returns if x,y is inside [0,width) x [0,height)
func (r *Raster) InBounds(x, y float64) bool {
	return x >= 0 && x < float64(r.width) && y >= 0 && y < float64(r.height)
}

// Clamp x,y into [0,width-1] x [0,height-1]
func (r *Raster) Clamp(x, y float64) (float64, float64) {
	p := r.area.ClampPoint(r2.Point{X: x, Y: y})
	return p.X, p.Y
}

// Sample returns the normalised value of the cell at (floor(x), floor(y))
// or OutOfBounds.
func (r *Raster) Sample(x, y float64) float64 {
	if !r.InBounds(x, y) {
		return OutOfBounds
	}
	ix := int(math.Floor(x))
	iy := int(math.Floor(y))
	return float64(r.data[ix+iy*r.width]) / 255
}
