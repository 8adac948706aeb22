package roadgraph

// Sampler tells roadgraph roughly what is at a given location.
// Three of these are handed to the generator;
// - height / elevation (kept for later, the growth rules don't read it)
// - land / water mask (streets only grow where this is "land")
// - population density (highways chase this)
// Coordinates are floats, samplers decide which cell a point falls in.
type Sampler interface {
	// Sample returns a value in [0,1] for the cell containing (x, y) or
	// OutOfBounds (-1) if (x, y) is outside the grid.
	Sample(x, y float64) float64

	// InBounds is true if (x, y) sits within [0,width) x [0,height)
	InBounds(x, y float64) bool

	// Clamp pulls (x, y) into [0,width-1] x [0,height-1]
	Clamp(x, y float64) (float64, float64)

	// Bounds returns the grid width & height
	Bounds() (int, int)
}
