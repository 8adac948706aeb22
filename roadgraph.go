package roadgraph

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

var (
	// ErrDegenerateGeometry implies we were asked to build an edge or turtle
	// whose maths would collapse into NaN.
	ErrDegenerateGeometry = fmt.Errorf("degenerate geometry")

	// ErrDegenerateHeading is a zero length turtle heading
	ErrDegenerateHeading = fmt.Errorf("%w: zero length heading", ErrDegenerateGeometry)

	// ErrGenerationIncomplete implies highway growth hit MaxHighwaySteps.
	// The network produced so far is still published.
	ErrGenerationIncomplete = fmt.Errorf("generation incomplete")

	// ErrInvalidConfig implies a setting that can't be generated from
	ErrInvalidConfig = fmt.Errorf("invalid config")

	// ErrInvalidState implies a phase was run out of order
	ErrInvalidState = fmt.Errorf("invalid generator state")
)

const (
	// highway ray angles are a pure function of the ray index
	raySeed = 32711.67175
	rayStep = 3979.55062
	rayBias = 8289.17

	// most highway branches accepted from one turtle
	maxBranchesPerStep = 2
)

// streetTurns are the branch candidates tried from every street turtle;
// forward, right, left (-90 done as +270)
var streetTurns = []float64{0, 90, 270}

// State of a Generator
type State int

const (
	Idle State = iota
	HighwaysGrown
	Complete
)

// String name of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HighwaysGrown:
		return "highways-grown"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Generator grows a road network over three samplers.
// First highways (rays chasing population), then streets (a grid grown
// out from the highways, stopping at water).
//
// Runs are atomic to readers; Network() always returns the last fully
// built snapshot, never one being written to.
type Generator struct {
	height     Sampler
	water      Sampler
	population Sampler

	run sync.Mutex // one run at a time

	mu      sync.RWMutex
	cfg     *GenerationConfig
	logger  *log.Logger
	state   State
	net     *Network
	pending []*Edge // highways waiting to seed streets
}

// New creates a Generator given samplers & config (DefaultConfig() if nil).
// Nothing is generated until Generate() (or the per phase functions) run.
func New(height, water, population Sampler, cfg *GenerationConfig) (*Generator, error) {
	if water == nil || population == nil {
		return nil, fmt.Errorf("%w: land/water & population samplers are required", ErrInvalidConfig)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	mine := *cfg
	return &Generator{
		height:     height,
		water:      water,
		population: population,
		cfg:        &mine,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		net:        newNetwork(),
	}, nil
}

// SetLogger sets where we log to, nil silences us again
func (g *Generator) SetLogger(l *log.Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l == nil {
		l = log.NewWithOptions(io.Discard, log.Options{})
	}
	g.logger = l
}

// Config returns a copy of the current config
func (g *Generator) Config() GenerationConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return *g.cfg
}

// Height returns the elevation sampler. Growth doesn't read it (yet).
func (g *Generator) Height() Sampler {
	return g.height
}

// State returns where the generator is in Idle -> HighwaysGrown -> Complete
func (g *Generator) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Network returns the most recently published network snapshot
func (g *Generator) Network() *Network {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.net
}

// SetPopulationThreshold sets the density a ray endpoint must exceed
func (g *Generator) SetPopulationThreshold(v float64) error {
	return g.configure(func(c *GenerationConfig) { c.PopulationThreshold = v })
}

// SetNumRays sets the number of highway probes per step
func (g *Generator) SetNumRays(n int) error {
	return g.configure(func(c *GenerationConfig) { c.NumRays = n })
}

// SetGridSize sets the street segment length (SegsPerHighway follows)
func (g *Generator) SetGridSize(v float64) error {
	return g.configure(func(c *GenerationConfig) { c.GridSize = v })
}

// SetHighwayLength sets the highway probe distance (SegsPerHighway follows)
func (g *Generator) SetHighwayLength(v float64) error {
	return g.configure(func(c *GenerationConfig) { c.HighwayLength = v })
}

// SetMaxHighwaySteps sets the highway growth safety valve
func (g *Generator) SetMaxHighwaySteps(n int) error {
	return g.configure(func(c *GenerationConfig) { c.MaxHighwaySteps = n })
}

// configure applies fn to a copy of the config & keeps it if it validates
func (g *Generator) configure(fn func(c *GenerationConfig)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := *g.cfg
	fn(&next)
	err := next.Validate()
	if err != nil {
		return err
	}
	g.cfg = &next
	return nil
}

// Reset drops all output & restores the default population threshold,
// ray count & grid size. Other settings persist.
func (g *Generator) Reset() {
	g.run.Lock()
	defer g.run.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.resetTunables()
	g.state = Idle
	g.net = newNetwork()
	g.pending = nil
}

// Generate runs both phases from scratch, discarding prior output.
// The new network is published only once complete; if ctx is cancelled
// the previous network stays put.
// If highway growth trips the safety valve streets are still grown from
// what we have & ErrGenerationIncomplete is returned with the network.
func (g *Generator) Generate(ctx context.Context) error {
	g.run.Lock()
	defer g.run.Unlock()

	cfg, logger := g.snapshotConfig()

	hways, pending, incomplete := g.growHighways(ctx, cfg, logger)
	if incomplete != nil && !isIncomplete(incomplete) {
		return incomplete
	}

	net, err := g.growStreets(ctx, cfg, logger, hways, pending)
	if err != nil {
		return err
	}

	g.publish(Complete, net, nil)
	return incomplete
}

// GenerateHighways runs phase one (Idle -> HighwaysGrown).
func (g *Generator) GenerateHighways(ctx context.Context) error {
	g.run.Lock()
	defer g.run.Unlock()

	if s := g.State(); s != Idle {
		return fmt.Errorf("%w: highways need state %s, generator is %s", ErrInvalidState, Idle, s)
	}
	cfg, logger := g.snapshotConfig()

	net, pending, err := g.growHighways(ctx, cfg, logger)
	if err != nil && !isIncomplete(err) {
		return err
	}

	g.publish(HighwaysGrown, net, pending)
	return err
}

// GenerateRoads runs phase two (HighwaysGrown -> Complete), consuming the
// highways grown by GenerateHighways.
func (g *Generator) GenerateRoads(ctx context.Context) error {
	g.run.Lock()
	defer g.run.Unlock()

	if s := g.State(); s != HighwaysGrown {
		return fmt.Errorf("%w: roads need state %s, generator is %s", ErrInvalidState, HighwaysGrown, s)
	}
	cfg, logger := g.snapshotConfig()

	g.mu.RLock()
	hways, pending := g.net, g.pending
	g.mu.RUnlock()

	net, err := g.growStreets(ctx, cfg, logger, hways, pending)
	if err != nil {
		return err
	}

	g.publish(Complete, net, nil)
	return nil
}

// snapshotConfig takes a copy of config & logger for a run
func (g *Generator) snapshotConfig() (GenerationConfig, *log.Logger) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return *g.cfg, g.logger
}

// publish swaps in a finished network
func (g *Generator) publish(s State, net *Network, pending []*Edge) {
	net.finalise(g.water, g.Config().LandThreshold)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.net = net
	g.pending = pending
}

// rayAngles returns the highway probe angles (degrees) for n rays.
// These depend only on the ray index so every turtle probes the same fan.
// Each seed is raySeed + i*rayStep + rayBias, it does not accumulate ray to ray.
func rayAngles(n int) []float64 {
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		s := raySeed + float64(i)*rayStep + rayBias
		x := math.Sin(s) * 10000
		rand := x - math.Floor(x)

		angle := math.Floor(rand*181.0) - 90
		if i == 0 {
			angle = math.Abs(angle) // first ray is the default direction
		}
		angles[i] = angle
	}
	return angles
}

// growHighways is phase one. Turtles are processed strictly FIFO; each fires
// NumRays probes & branches toward up to two that land on dense enough
// population. If none do we fall back to the first ray, clamping it to the
// raster (& stopping that branch) if it left the map.
//
// Returns the network, the highways in creation order & an error which is
// ErrGenerationIncomplete (network usable) or a hard failure.
func (g *Generator) growHighways(ctx context.Context, cfg GenerationConfig, logger *log.Logger) (*Network, []*Edge, error) {
	net := newNetwork()
	logger.Debug("growing highways", "rays", cfg.NumRays, "threshold", cfg.PopulationThreshold, "length", cfg.HighwayLength)

	seed, err := NewTurtle(cfg.start(), model2d.Coord{X: 1}, 0)
	if err != nil {
		return nil, nil, err
	}

	angles := rayAngles(cfg.NumRays)
	queue := []Turtle{seed}

	var incomplete error
	head := 0
	for ; head < len(queue); head++ {
		if head >= cfg.MaxHighwaySteps {
			incomplete = fmt.Errorf("%w: highway growth stopped after %d steps with %d turtles queued", ErrGenerationIncomplete, head, len(queue)-head)
			logger.Warn("highway safety valve tripped", "steps", head, "queued", len(queue)-head, "edges", len(net.edges))
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		branches, err := g.highwayStep(queue[head], angles, cfg, net)
		if err != nil {
			return nil, nil, err
		}
		// children only join the queue after the whole fan is evaluated
		queue = append(queue, branches...)
	}

	logger.Debug("highways grown", "edges", len(net.edges), "steps", head, "intersections", len(net.intersections))

	pending := make([]*Edge, len(net.highways))
	copy(pending, net.highways)
	return net, pending, incomplete
}

// highwayStep fires the ray fan from one turtle, adding edges to net.
// Returns the child turtles to queue.
func (g *Generator) highwayStep(t Turtle, angles []float64, cfg GenerationConfig, net *Network) ([]Turtle, error) {
	pos := t.Position()
	accepted, defaultTarget := g.probe(pos, angles, cfg)

	branches := []Turtle{}
	for _, target := range accepted {
		child, err := g.branchHighway(t, target, net)
		if err != nil {
			return nil, err
		}
		branches = append(branches, child)
	}
	if len(branches) > 0 {
		return branches, nil
	}

	if g.population.InBounds(defaultTarget.X, defaultTarget.Y) {
		child, err := g.branchHighway(t, defaultTarget, net)
		if err != nil {
			return nil, err
		}
		return []Turtle{child}, nil
	}

	// off the map; run the highway to the edge & stop growing here
	x, y := g.population.Clamp(defaultTarget.X, defaultTarget.Y)
	clamped := model2d.Coord{X: x, Y: y}
	if clamped == pos {
		// already on the edge, nowhere left to go
		return nil, nil
	}
	e, err := NewEdge(pos, clamped, true)
	if err != nil {
		return nil, err
	}
	net.addHighway(e)
	net.addIntersection(clamped)

	return nil, nil
}

// probe projects each ray HighwayLength from pos & returns the (at most
// two) targets with population over the threshold, in ray order, along
// with the first ray's target (the fallback).
func (g *Generator) probe(pos model2d.Coord, angles []float64, cfg GenerationConfig) ([]model2d.Coord, model2d.Coord) {
	accepted := []model2d.Coord{}

	var defaultTarget model2d.Coord
	for i, angle := range angles {
		rad := angle * math.Pi / 180.0
		target := pos.Add(model2d.Coord{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(cfg.HighwayLength))
		if i == 0 {
			defaultTarget = target
		}

		density := g.population.Sample(target.X, target.Y)
		if density > OutOfBounds && density > cfg.PopulationThreshold && len(accepted) < maxBranchesPerStep {
			accepted = append(accepted, target)
		}
	}

	return accepted, defaultTarget
}

// branchHighway lays a highway from t to target & returns a turtle there
func (g *Generator) branchHighway(t Turtle, target model2d.Coord, net *Network) (Turtle, error) {
	e, err := NewEdge(t.Position(), target, true)
	if err != nil {
		return Turtle{}, err
	}
	// highway turtles don't use their heading; point it along the road anyway
	child, err := NewTurtle(target, target.Sub(t.Position()), t.Depth()+1)
	if err != nil {
		return Turtle{}, err
	}

	net.addHighway(e)
	net.addIntersection(target)
	return child, nil
}

// growStreets is phase two. Backbone turtles are walked along each highway
// (Left -> Right) in GridSize steps, then every turtle tries to branch
// forward, right & left. Turtles must be on land & shallower than
// SegsPerHighway to count.
func (g *Generator) growStreets(ctx context.Context, cfg GenerationConfig, logger *log.Logger, hways *Network, pending []*Edge) (*Network, error) {
	net := hways.clone()
	segs := cfg.SegsPerHighway()
	logger.Debug("growing streets", "highways", len(pending), "grid", cfg.GridSize, "segs", segs)

	valid := func(t Turtle) bool {
		p := t.Position()
		return g.water.Sample(p.X, p.Y) > cfg.LandThreshold && t.Depth() < segs
	}

	queue := []Turtle{}
	for len(pending) > 0 {
		hw := pending[0]
		pending = pending[1:]

		// only the steps along the highway seed streets, the start point
		// itself does not
		walker, err := NewTurtle(hw.Left(), hw.Right().Sub(hw.Left()), 0)
		if err != nil {
			return nil, err
		}

		for i := 0; i < segs; i++ {
			walker.Advance(cfg.GridSize)
			step := walker.SpawnChild()
			if !valid(step) {
				break
			}
			queue = append(queue, step)
		}
	}
	backbone := len(queue)

	for head := 0; head < len(queue); head++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := queue[head]
		if !valid(t) {
			continue
		}

		for _, turn := range streetTurns {
			next := t.SpawnChild()
			if turn != 0 {
				next = next.Rotated(turn)
			}
			next.Advance(cfg.GridSize)
			if !valid(next) {
				continue
			}

			e, err := NewEdge(t.Position(), next.Position(), false)
			if err != nil {
				return nil, err
			}
			net.addStreet(e, next.Depth())
			net.addIntersection(next.Position())

			queue = append(queue, next)
		}
	}

	logger.Debug("streets grown", "backbone", backbone, "turtles", len(queue), "edges", len(net.edges))
	return net, nil
}

// isIncomplete returns if err is (or wraps) ErrGenerationIncomplete
func isIncomplete(err error) bool {
	return err != nil && errors.Is(err, ErrGenerationIncomplete)
}
