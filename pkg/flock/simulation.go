// Package flock is a boids engine on the unit torus [0,1)x[0,1).
//
// Each step rebuilds a uniform grid over the agents, sums the cohesion,
// separation and alignment forces every agent gets from the agents in its
// 3x3 block of cells, then integrates friction, velocity and position with
// semi-implicit Euler and wraps positions around the torus.
//
// Given the same Config (including a non-zero Seed) and the same sequence of
// time steps, two simulations produce identical trajectories, whatever the
// number of workers.
package flock

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/aquilax/go-perlin"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Below this many agents the rules are evaluated on the calling goroutine.
const parallelThreshold = 512

// Option customizes a Simulation at construction.
type Option func(*Simulation)

// WithLogger sets the logger used to report numeric anomalies.
func WithLogger(logger log.Logger) Option {
	return func(s *Simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Simulation owns the agents, the spatial index and the integrator.
// It is not safe for concurrent use.
type Simulation struct {
	cfg        Config
	state      AgentState
	index      *SpatialIndex
	integrator Integrator
	logger     log.Logger

	workers   int
	scratch   []Neighborhood // one per worker
	anomalies []int
	steps     uint64
}

// New validates cfg and allocates cfg.AgentCount agents at random positions
// with small random velocities.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	index, err := NewSpatialIndex(cfg.GridSlices)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &Simulation{
		cfg:        cfg,
		state:      newAgentState(cfg.AgentCount),
		index:      index,
		integrator: Integrator{Friction: cfg.FrictionEnabled},
		logger:     log.DiscardLogger,
		workers:    workers,
		scratch:    make([]Neighborhood, workers),
	}
	for _, opt := range opts {
		opt(s)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s.scatter(seed)
	s.logger.Debugf("flock: %d agents on a %dx%d grid, seed %d, %d worker(s)",
		cfg.AgentCount, cfg.GridSlices, cfg.GridSlices, seed, workers)
	return s, nil
}

// scatter draws the initial positions and velocities. Every draw comes from
// the seeded generator, nothing random happens after this.
func (s *Simulation) scatter(seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	speed := s.cfg.InitialSpeed

	for i := range s.state.Position {
		s.state.Position[i] = geometry.Vector2D{X: rng.Float64(), Y: rng.Float64()}
	}

	switch s.cfg.InitialVelocity {
	case VelocityPerlin:
		// Neighbouring agents get similar headings from a smooth noise field.
		noise := perlin.NewPerlin(2, 2, 3, int64(seed))
		for i, p := range s.state.Position {
			theta := noise.Noise2D(p.X*4, p.Y*4) * 2 * math.Pi
			s.state.Velocity[i] = geometry.Vector2D{X: math.Cos(theta), Y: math.Sin(theta)}.Mul(speed)
		}
	default:
		for i := range s.state.Velocity {
			s.state.Velocity[i] = geometry.Vector2D{
				X: (rng.Float64()*2 - 1) * speed,
				Y: (rng.Float64()*2 - 1) * speed,
			}
		}
	}
}

// Step advances the simulation by dt seconds.
//
// dt == 0 and an empty flock are no-ops; a negative or non-finite dt is
// rejected before anything changes. Agents whose state turns non-finite are
// reset and reported through an *InstabilityError once every other agent has
// been advanced.
func (s *Simulation) Step(dt float64) error {
	switch {
	case math.IsNaN(dt) || math.IsInf(dt, 0):
		return fmt.Errorf("%w: %v", ErrInvalidTimeStep, dt)
	case dt < 0:
		return fmt.Errorf("%w: %v", ErrNegativeTimeStep, dt)
	case dt == 0 || s.state.Len() == 0:
		return nil
	}

	st := &s.state
	s.anomalies = s.anomalies[:0]

	// 1. Fresh accumulators, and no corrupted agent may reach its neighbours.
	st.resetForces()
	for i := range st.Position {
		if !st.sanitize(i) {
			s.anomalies = append(s.anomalies, i)
		}
	}

	// 2. Index the step-start positions.
	s.index.Rebuild(st.Position)

	// 3. Forces. Every agent reads step-start state and writes only its own force.
	if err := s.evaluate(); err != nil {
		return err
	}

	// 4. Motion, only once all forces are known.
	for i := range st.Position {
		if !s.integrator.Advance(&st.Position[i], &st.Velocity[i], &st.Force[i], dt) {
			s.anomalies = append(s.anomalies, i)
		}
	}
	s.steps++

	if len(s.anomalies) == 0 {
		return nil
	}
	agents := slices.Clone(s.anomalies)
	slices.Sort(agents)
	agents = slices.Compact(agents)
	err := &InstabilityError{Step: s.steps, Agents: agents}
	s.logger.Warnf("flock: %v", err)
	return err
}

// evaluate runs phase 3, split in contiguous chunks of agents when the flock
// is large enough. Wait is the barrier before integration.
func (s *Simulation) evaluate() error {
	n := s.state.Len()
	workers := min(s.workers, n)
	if workers <= 1 || n < parallelThreshold {
		s.accumulate(0, n, &s.scratch[0])
		return nil
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, n)
		if lo >= hi {
			break
		}
		nb := &s.scratch[w]
		g.Go(func() error {
			s.accumulate(lo, hi, nb)
			return nil
		})
	}
	return g.Wait()
}

// accumulate sums every rule into the force of agents lo..hi-1.
func (s *Simulation) accumulate(lo, hi int, nb *Neighborhood) {
	st := &s.state
	for i := lo; i < hi; i++ {
		s.index.Query(i, st, nb)
		f := st.Force[i]
		for _, rule := range Rules {
			f = f.Add(rule.Apply(nb, s.cfg.RuleParams))
		}
		st.Force[i] = f
	}
}

// Len returns the number of agents, constant for the life of the simulation.
func (s *Simulation) Len() int {
	return s.state.Len()
}

// Steps returns how many non-empty steps have completed.
func (s *Simulation) Steps() uint64 {
	return s.steps
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// PositionOf returns the position of agent i after the last completed step.
// Like a slice access, it panics when i is out of range.
func (s *Simulation) PositionOf(i int) geometry.Vector2D {
	return s.state.Position[i]
}

// VelocityOf returns the velocity of agent i after the last completed step.
func (s *Simulation) VelocityOf(i int) geometry.Vector2D {
	return s.state.Velocity[i]
}

// ForceOf returns the total force, friction included, that moved agent i
// during the last completed step.
func (s *Simulation) ForceOf(i int) geometry.Vector2D {
	return s.state.Force[i]
}

// SetAgent places agent i at pos (wrapped into the domain) with velocity vel.
func (s *Simulation) SetAgent(i int, pos, vel geometry.Vector2D) error {
	if i < 0 || i >= s.state.Len() {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrAgentOutOfRange, i, s.state.Len())
	}
	if pos.IsFinite() {
		pos = geometry.Wrap(pos)
	}
	s.state.Position[i] = pos
	s.state.Velocity[i] = vel
	s.state.Force[i] = geometry.Vector2D{}
	return nil
}

// Stats summarizes the flock after the last completed step.
type Stats struct {
	MeanSpeed float64
	MaxSpeed  float64
	MeanForce float64
}

// Stats computes speed and force magnitudes over every agent.
func (s *Simulation) Stats() Stats {
	var st Stats
	n := s.state.Len()
	if n == 0 {
		return st
	}
	for i := range s.state.Velocity {
		speed := s.state.Velocity[i].Len()
		st.MeanSpeed += speed
		st.MaxSpeed = max(st.MaxSpeed, speed)
		st.MeanForce += s.state.Force[i].Len()
	}
	st.MeanSpeed /= float64(n)
	st.MeanForce /= float64(n)
	return st
}
