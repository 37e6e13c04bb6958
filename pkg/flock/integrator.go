package flock

import "github.com/lao-tseu-is-alive/go-boids/pkg/geometry"

// Integrator turns an agent's accumulated force into motion.
type Integrator struct {
	Friction bool
}

// Advance applies quadratic drag, then semi-implicit Euler
// (velocity first, then position with the new velocity) and wraps the
// position into [0,1).
//
// When the result is not finite the agent is put back where it was with zero
// velocity and force, and Advance returns false.
func (in Integrator) Advance(pos, vel, force *geometry.Vector2D, dt float64) bool {
	f := *force
	if in.Friction {
		// Drag uses the velocity from before this update.
		f = f.Sub(vel.Mul(vel.Len()))
	}
	v := vel.Add(f.Mul(dt))
	p := pos.Add(v.Mul(dt))

	if !f.IsFinite() || !v.IsFinite() || !p.IsFinite() {
		if !pos.IsFinite() {
			*pos = domainCentre
		}
		*vel = geometry.Vector2D{}
		*force = geometry.Vector2D{}
		return false
	}

	*force = f
	*vel = v
	*pos = geometry.Wrap(p)
	return true
}
