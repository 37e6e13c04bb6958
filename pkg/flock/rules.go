package flock

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// RuleKind is one of the three flocking rules. The set is closed.
type RuleKind uint8

const (
	Cohesion RuleKind = iota
	Separation
	Alignment
)

// Rules lists every rule in the order a step evaluates them.
var Rules = [...]RuleKind{Cohesion, Separation, Alignment}

func (k RuleKind) String() string {
	switch k {
	case Cohesion:
		return "cohesion"
	case Separation:
		return "separation"
	case Alignment:
		return "alignment"
	}
	return fmt.Sprintf("RuleKind(%d)", uint8(k))
}

// Apply returns the force rule k contributes for the agent at the centre of nb.
// It reads nb and p only.
func (k RuleKind) Apply(nb *Neighborhood, p RuleParams) geometry.Vector2D {
	switch k {
	case Cohesion:
		return cohesion(nb, p.CohesionGain)
	case Separation:
		return separation(nb, p.SeparationGain, p.SeparationRadius)
	case Alignment:
		return alignment(nb, p.AlignmentGain)
	}
	return geometry.Vector2D{}
}

// cohesion steers toward the mean neighbour position. The mean is taken over
// the shortest offsets from the agent, so a group straddling an edge pulls
// across the edge instead of toward the middle of the domain.
func cohesion(nb *Neighborhood, gain float64) geometry.Vector2D {
	n := nb.Len()
	if n == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, q := range nb.Positions {
		sum = sum.Add(geometry.TorusDelta(nb.Position, q))
	}
	return sum.Mul(gain / float64(n))
}

// separation pushes away from every neighbour closer than radius, with a
// magnitude of gain/distance per neighbour.
func separation(nb *Neighborhood, gain, radius float64) geometry.Vector2D {
	var sum geometry.Vector2D
	r2 := radius * radius
	for _, q := range nb.Positions {
		away := geometry.TorusDelta(q, nb.Position)
		d2 := away.LenSqr()
		// d2 == 0: coincident agents have no direction to push along.
		if d2 == 0 || d2 >= r2 {
			continue
		}
		// unit(away) * gain / d == away * gain / d^2
		sum = sum.Add(away.Mul(gain / d2))
	}
	return sum
}

// alignment steers the agent's velocity toward the mean neighbour velocity.
func alignment(nb *Neighborhood, gain float64) geometry.Vector2D {
	n := nb.Len()
	if n == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, v := range nb.Velocities {
		sum = sum.Add(v)
	}
	mean := sum.Mul(1 / float64(n))
	return mean.Sub(nb.Velocity).Mul(gain)
}
