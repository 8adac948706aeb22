package roadgraph

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

const (
	defaultPopulationThreshold = 0.45
	defaultNumRays             = 4
	defaultGridSize            = 50.0
	defaultHighwayLength       = 400.0
	defaultMaxHighwaySteps     = 100000
	defaultLandThreshold       = 0.26
)

// GenerationConfig holds the knobs for a generation run.
// Most settings have sane defaults (see DefaultConfig) & the generator
// exposes setters for the ones people like to fiddle with.
type GenerationConfig struct {
	// Min normalised population [0,1] a highway ray endpoint must exceed
	// for us to branch a highway towards it.
	PopulationThreshold float64 `toml:"population_threshold"`

	// Number of directional probes per highway growth step
	NumRays int `toml:"num_rays"`

	// Street segment length (aka road_seg_length).
	// Also decides how deep street growth recurses, see SegsPerHighway()
	GridSize float64 `toml:"grid_size"`

	// Fixed probe distance for highway rays
	HighwayLength float64 `toml:"highway_length"`

	// Safety valve; the most turtles highway growth will process before
	// giving up with ErrGenerationIncomplete
	MaxHighwaySteps int `toml:"max_highway_steps"`

	// Land / water values above this are "land"
	LandThreshold float64 `toml:"land_threshold"`

	// Where the first highway turtle starts
	HighwayStart [2]float64 `toml:"highway_start"`
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *GenerationConfig {
	return &GenerationConfig{
		PopulationThreshold: defaultPopulationThreshold,
		NumRays:             defaultNumRays,
		GridSize:            defaultGridSize,
		HighwayLength:       defaultHighwayLength,
		MaxHighwaySteps:     defaultMaxHighwaySteps,
		LandThreshold:       defaultLandThreshold,
		HighwayStart:        [2]float64{-10, 100},
	}
}

// LoadConfig reads a TOML file over the top of DefaultConfig().
// Keys not in the file keep their default.
func LoadConfig(fpath string) (*GenerationConfig, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(fpath, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode config %s", fpath)
	}
	return cfg, cfg.Validate()
}

// SegsPerHighway is floor(HighwayLength / GridSize); the street depth limit
func (c GenerationConfig) SegsPerHighway() int {
	if c.GridSize <= 0 {
		return 0
	}
	return int(math.Floor(c.HighwayLength / c.GridSize))
}

// start returns HighwayStart as a coord
func (c GenerationConfig) start() model2d.Coord {
	return model2d.Coord{X: c.HighwayStart[0], Y: c.HighwayStart[1]}
}

// Validate returns ErrInvalidConfig if the config can't be generated from
func (c GenerationConfig) Validate() error {
	switch {
	case c.NumRays < 1:
		return fmt.Errorf("%w: num_rays must be at least 1, got %d", ErrInvalidConfig, c.NumRays)
	case !(c.GridSize > 0) || math.IsInf(c.GridSize, 0):
		return fmt.Errorf("%w: grid_size must be positive, got %v", ErrInvalidConfig, c.GridSize)
	case !(c.HighwayLength > 0) || math.IsInf(c.HighwayLength, 0):
		return fmt.Errorf("%w: highway_length must be positive, got %v", ErrInvalidConfig, c.HighwayLength)
	case c.MaxHighwaySteps < 1:
		return fmt.Errorf("%w: max_highway_steps must be at least 1, got %d", ErrInvalidConfig, c.MaxHighwaySteps)
	case math.IsNaN(c.PopulationThreshold):
		return fmt.Errorf("%w: population_threshold is NaN", ErrInvalidConfig)
	case math.IsNaN(c.LandThreshold):
		return fmt.Errorf("%w: land_threshold is NaN", ErrInvalidConfig)
	case !finite(c.start()):
		return fmt.Errorf("%w: highway_start must be finite, got %v", ErrInvalidConfig, c.HighwayStart)
	}
	return nil
}

// resetTunables puts back the defaults for the settings reset() restores.
// Anything else persists.
func (c *GenerationConfig) resetTunables() {
	c.PopulationThreshold = defaultPopulationThreshold
	c.NumRays = defaultNumRays
	c.GridSize = defaultGridSize
}
