package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/roadgraph"
)

const (
	defaultWidth  = 2000 // raster size when no images are given
	defaultHeight = 1000
)

// worldOpts are the flags that describe what we're growing roads over
type worldOpts struct {
	config string // toml file, see roadgraph.LoadConfig

	water      string // land / water mask image (red channel)
	population string // population density image (red channel)
	height     string // elevation image (red channel)

	uniformWater      float64 // used when there is no water image
	uniformPopulation float64 // used when there is no population image
	width             int     // size of uniform rasters
	heightPx          int

	threshold     float64
	rays          int
	grid          float64
	highwayLength float64
	maxSteps      int
}

func newWorldOpts() *worldOpts {
	return &worldOpts{
		uniformWater:      1,
		uniformPopulation: 0,
		width:             defaultWidth,
		heightPx:          defaultHeight,
	}
}

func (o *worldOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "toml config file")
	cmd.Flags().StringVar(&o.water, "water", "", "land / water mask image, bright is land")
	cmd.Flags().StringVar(&o.population, "population", "", "population density image, bright is dense")
	cmd.Flags().StringVar(&o.height, "height", "", "elevation image")
	cmd.Flags().Float64Var(&o.uniformWater, "uniform-water", o.uniformWater, "land value [0,1] everywhere if there is no --water image")
	cmd.Flags().Float64Var(&o.uniformPopulation, "uniform-population", o.uniformPopulation, "population [0,1] everywhere if there is no --population image")
	cmd.Flags().IntVar(&o.width, "width", o.width, "width of uniform rasters")
	cmd.Flags().IntVar(&o.heightPx, "height-px", o.heightPx, "height of uniform rasters")
	cmd.Flags().Float64Var(&o.threshold, "threshold", 0, "population a highway ray must beat (overrides config)")
	cmd.Flags().IntVar(&o.rays, "rays", 0, "highway rays per step (overrides config)")
	cmd.Flags().Float64Var(&o.grid, "grid", 0, "street segment length (overrides config)")
	cmd.Flags().Float64Var(&o.highwayLength, "highway-length", 0, "highway ray length (overrides config)")
	cmd.Flags().IntVar(&o.maxSteps, "max-steps", 0, "highway growth safety valve (overrides config)")
}

// sampler loads fpath or builds a uniform raster of v
func (o *worldOpts) sampler(fpath string, v float64) (roadgraph.Sampler, error) {
	if fpath != "" {
		return roadgraph.LoadRaster(fpath, roadgraph.Red)
	}
	return roadgraph.NewUniformRaster(o.width, o.heightPx, v)
}

// generator builds a roadgraph.Generator from the flags
func (o *worldOpts) generator(cmd *cobra.Command, logger *log.Logger) (*roadgraph.Generator, error) {
	cfg := roadgraph.DefaultConfig()
	if o.config != "" {
		var err error
		cfg, err = roadgraph.LoadConfig(o.config)
		if err != nil {
			return nil, err
		}
	}

	water, err := o.sampler(o.water, o.uniformWater)
	if err != nil {
		return nil, errors.Wrap(err, "can't load water")
	}
	population, err := o.sampler(o.population, o.uniformPopulation)
	if err != nil {
		return nil, errors.Wrap(err, "can't load population")
	}
	height, err := o.sampler(o.height, 0)
	if err != nil {
		return nil, errors.Wrap(err, "can't load height")
	}

	g, err := roadgraph.New(height, water, population, cfg)
	if err != nil {
		return nil, err
	}
	g.SetLogger(logger)

	overrides := []struct {
		flag string
		set  func() error
	}{
		{"threshold", func() error { return g.SetPopulationThreshold(o.threshold) }},
		{"rays", func() error { return g.SetNumRays(o.rays) }},
		{"grid", func() error { return g.SetGridSize(o.grid) }},
		{"highway-length", func() error { return g.SetHighwayLength(o.highwayLength) }},
		{"max-steps", func() error { return g.SetMaxHighwaySteps(o.maxSteps) }},
	}
	for _, ov := range overrides {
		if !cmd.Flags().Changed(ov.flag) {
			continue
		}
		if err := ov.set(); err != nil {
			return nil, errors.Wrapf(err, "bad --%s", ov.flag)
		}
	}

	w, h := water.Bounds()
	cfgNow := g.Config()
	logger.Debug("world ready", "width", w, "height", h, "rays", cfgNow.NumRays, "grid", cfgNow.GridSize, "segs", cfgNow.SegsPerHighway())
	return g, nil
}

// grow runs generation, an incomplete network is logged & kept
func grow(ctx context.Context, g *roadgraph.Generator, logger *log.Logger) (*roadgraph.Network, error) {
	prog := newProgress(logger)

	err := g.Generate(ctx)
	if errors.Is(err, roadgraph.ErrGenerationIncomplete) {
		logger.Warn("highway growth was cut short, keeping what we have", "err", err)
	} else if err != nil {
		return nil, err
	}

	net := g.Network()
	prog.done(fmt.Sprintf("Grew %d highways & %d streets", net.Stats.EdgesByKind[roadgraph.Highway], net.Stats.EdgesByKind[roadgraph.Street]))
	return net, nil
}

// parsePoint reads "x,y"
func parsePoint(s string) (model2d.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model2d.Coord{}, fmt.Errorf("point %q must be x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model2d.Coord{}, errors.Wrapf(err, "bad x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model2d.Coord{}, errors.Wrapf(err, "bad y in %q", s)
	}
	return model2d.Coord{X: x, Y: y}, nil
}
