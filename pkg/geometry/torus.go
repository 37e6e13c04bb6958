package geometry

import "math"

// The unit torus is the square [0,1)x[0,1) where both axes wrap around.

// WrapUnit reduces x modulo 1.0 into [0,1), for both positive and negative x.
func WrapUnit(x float64) float64 {
	x -= math.Floor(x)
	// x - Floor(x) rounds up to exactly 1 for tiny negative inputs.
	if x >= 1 {
		return 0
	}
	return x
}

// Wrap reduces both components of v into [0,1).
func Wrap(v Vector2D) Vector2D {
	return Vector2D{X: WrapUnit(v.X), Y: WrapUnit(v.Y)}
}

// shortestUnit returns d shifted by a whole number of periods so that it lies
// in [-0.5, 0.5].
func shortestUnit(d float64) float64 {
	return d - math.Round(d)
}

// TorusDelta returns the shortest vector pointing from a to b on the unit
// torus, each axis taken independently.
func TorusDelta(a, b Vector2D) Vector2D {
	return Vector2D{X: shortestUnit(b.X - a.X), Y: shortestUnit(b.Y - a.Y)}
}

// TorusDistance is the length of TorusDelta(a, b).
func TorusDistance(a, b Vector2D) float64 {
	return TorusDelta(a, b).Len()
}
