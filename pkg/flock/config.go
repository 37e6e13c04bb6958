package flock

import (
	"fmt"
)

// Initial velocity distributions accepted by Config.InitialVelocity.
const (
	VelocityUniform = "uniform"
	VelocityPerlin  = "perlin"
)

// RuleParams holds the fixed gains and thresholds of the three flocking rules.
type RuleParams struct {
	CohesionGain     float64 `json:"cohesionGain" toml:"cohesionGain"`         // pull toward the neighbours' centre
	SeparationGain   float64 `json:"separationGain" toml:"separationGain"`     // push strength, divided by distance
	SeparationRadius float64 `json:"separationRadius" toml:"separationRadius"` // neighbours closer than this push
	AlignmentGain    float64 `json:"alignmentGain" toml:"alignmentGain"`       // pull toward the neighbours' mean velocity
}

// Config is fixed when the Simulation is built. It is never read from global
// state, so several engines can live in one process.
type Config struct {
	AgentCount int `json:"agentCount" toml:"agentCount"`
	GridSlices int `json:"gridSlices" toml:"gridSlices"`

	RuleParams

	FrictionEnabled bool `json:"frictionEnabled" toml:"frictionEnabled"`

	// InitialSpeed bounds each velocity component at start ("uniform") or
	// sets the speed of every agent ("perlin").
	InitialSpeed    float64 `json:"initialSpeed" toml:"initialSpeed"`
	InitialVelocity string  `json:"initialVelocity" toml:"initialVelocity"`

	// Seed drives every random draw of the initialization. Zero seeds from the clock.
	Seed uint64 `json:"seed" toml:"seed"`

	// Workers bounds the goroutines evaluating rules. 0 means GOMAXPROCS, 1 is serial.
	Workers int `json:"workers" toml:"workers"`
}

// DefaultConfig returns the parameters used when no config file is given.
// The gains are tuned for velocities of a few hundredths of the domain per second.
func DefaultConfig() Config {
	return Config{
		AgentCount: 200,
		GridSlices: 6,
		RuleParams: RuleParams{
			CohesionGain:     0.1,
			SeparationGain:   0.0005,
			SeparationRadius: 0.05,
			AlignmentGain:    0.1,
		},
		FrictionEnabled: true,
		InitialSpeed:    0.05,
		InitialVelocity: VelocityUniform,
		Seed:            0,
		Workers:         0,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.AgentCount < 0:
		return fmt.Errorf("%w: agentCount must be >= 0, got %d", ErrInvalidConfig, c.AgentCount)
	case c.GridSlices < 1:
		return fmt.Errorf("%w: gridSlices must be >= 1, got %d", ErrInvalidConfig, c.GridSlices)
	case c.CohesionGain < 0:
		return fmt.Errorf("%w: cohesionGain must be >= 0, got %g", ErrInvalidConfig, c.CohesionGain)
	case c.SeparationGain < 0:
		return fmt.Errorf("%w: separationGain must be >= 0, got %g", ErrInvalidConfig, c.SeparationGain)
	case c.SeparationRadius < 0:
		return fmt.Errorf("%w: separationRadius must be >= 0, got %g", ErrInvalidConfig, c.SeparationRadius)
	case c.AlignmentGain < 0:
		return fmt.Errorf("%w: alignmentGain must be >= 0, got %g", ErrInvalidConfig, c.AlignmentGain)
	case c.InitialSpeed < 0:
		return fmt.Errorf("%w: initialSpeed must be >= 0, got %g", ErrInvalidConfig, c.InitialSpeed)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.InitialVelocity {
	case "", VelocityUniform, VelocityPerlin:
	default:
		return fmt.Errorf("%w: unknown initialVelocity %q", ErrInvalidConfig, c.InitialVelocity)
	}
	return nil
}
