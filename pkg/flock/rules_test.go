package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

var testParams = RuleParams{
	CohesionGain:     0.1,
	SeparationGain:   0.0005,
	SeparationRadius: 0.05,
	AlignmentGain:    0.2,
}

func near(a, b geometry.Vector2D) bool {
	return math.Abs(a.X-b.X) <= 1e-9 && math.Abs(a.Y-b.Y) <= 1e-9
}

func neighborhood(pos, vel geometry.Vector2D, others ...geometry.Vector2D) *Neighborhood {
	nb := &Neighborhood{Position: pos, Velocity: vel}
	for _, o := range others {
		nb.Positions = append(nb.Positions, o)
		nb.Velocities = append(nb.Velocities, geometry.Vector2D{})
	}
	return nb
}

func TestRules_ZeroNeighbors(t *testing.T) {
	nb := neighborhood(geometry.Vector2D{X: 0.5, Y: 0.5}, geometry.Vector2D{X: 0.3, Y: -0.1})
	for _, rule := range Rules {
		t.Run(rule.String(), func(t *testing.T) {
			if got := rule.Apply(nb, testParams); !got.IsZero() {
				t.Errorf("%s with no neighbours = %v; want zero vector", rule, got)
			}
		})
	}
}

func TestCohesion(t *testing.T) {
	tests := []struct {
		name   string
		me     geometry.Vector2D
		others []geometry.Vector2D
		want   geometry.Vector2D
	}{
		{
			"toward single neighbour",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.6, Y: 0.5}},
			geometry.Vector2D{X: 0.1 * 0.1, Y: 0},
		},
		{
			"toward the mean",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.6, Y: 0.5}, {X: 0.5, Y: 0.7}},
			geometry.Vector2D{X: 0.1 * 0.05, Y: 0.1 * 0.1},
		},
		{
			"across the edge",
			geometry.Vector2D{X: 0.02, Y: 0.5},
			[]geometry.Vector2D{{X: 0.98, Y: 0.5}},
			geometry.Vector2D{X: 0.1 * -0.04, Y: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cohesion.Apply(neighborhood(tt.me, geometry.Vector2D{}, tt.others...), testParams)
			if !near(got, tt.want) {
				t.Errorf("cohesion = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		name   string
		me     geometry.Vector2D
		others []geometry.Vector2D
		want   geometry.Vector2D
	}{
		{
			"pushes away from close neighbour",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.51, Y: 0.5}},
			geometry.Vector2D{X: -0.0005 / 0.01, Y: 0},
		},
		{
			"closer pushes harder",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.5, Y: 0.505}},
			geometry.Vector2D{X: 0, Y: -0.0005 / 0.005},
		},
		{
			"ignores neighbour outside radius",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.6, Y: 0.5}},
			geometry.Vector2D{},
		},
		{
			"uses the toroidal distance",
			geometry.Vector2D{X: 0.01, Y: 0.5},
			[]geometry.Vector2D{{X: 0.99, Y: 0.5}},
			geometry.Vector2D{X: 0.0005 / 0.02, Y: 0},
		},
		{
			"coincident neighbour has no direction",
			geometry.Vector2D{X: 0.3, Y: 0.3},
			[]geometry.Vector2D{{X: 0.3, Y: 0.3}},
			geometry.Vector2D{},
		},
		{
			"symmetric neighbours cancel",
			geometry.Vector2D{X: 0.5, Y: 0.5},
			[]geometry.Vector2D{{X: 0.52, Y: 0.5}, {X: 0.48, Y: 0.5}},
			geometry.Vector2D{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Separation.Apply(neighborhood(tt.me, geometry.Vector2D{}, tt.others...), testParams)
			// 1/d amplifies rounding in the offsets, compare relatively.
			if d := got.Sub(tt.want).Len(); d > 1e-6*max(1, tt.want.Len()) {
				t.Errorf("separation = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSeparation_WraparoundDistance(t *testing.T) {
	// (0.01, 0.5) and (0.99, 0.5) are 0.02 apart, not 0.98: with a radius of
	// 0.05 they must repel.
	me := geometry.Vector2D{X: 0.01, Y: 0.5}
	other := geometry.Vector2D{X: 0.99, Y: 0.5}
	got := Separation.Apply(neighborhood(me, geometry.Vector2D{}, other), testParams)

	if got.X <= 0 {
		t.Fatalf("separation across the edge = %v; want a push toward +X", got)
	}
	if d := testParams.SeparationGain / got.Len(); math.Abs(d-0.02) > 1e-9 {
		t.Errorf("separation implies distance %v; want 0.02", d)
	}
}

func TestAlignment(t *testing.T) {
	nb := &Neighborhood{
		Position:   geometry.Vector2D{X: 0.5, Y: 0.5},
		Velocity:   geometry.Vector2D{X: 0.1, Y: 0},
		Positions:  []geometry.Vector2D{{X: 0.52, Y: 0.5}, {X: 0.5, Y: 0.52}},
		Velocities: []geometry.Vector2D{{X: 0.3, Y: 0}, {X: 0.1, Y: 0.2}},
	}
	got := Alignment.Apply(nb, testParams)
	// mean (0.2, 0.1) - own (0.1, 0) = (0.1, 0.1), times 0.2
	want := geometry.Vector2D{X: 0.02, Y: 0.02}
	if !near(got, want) {
		t.Errorf("alignment = %v; want %v", got, want)
	}
}

func TestRuleKind_String(t *testing.T) {
	tests := []struct {
		kind RuleKind
		want string
	}{
		{Cohesion, "cohesion"},
		{Separation, "separation"},
		{Alignment, "alignment"},
		{RuleKind(9), "RuleKind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("RuleKind(%d).String() = %q; want %q", uint8(tt.kind), got, tt.want)
		}
	}
	if got := RuleKind(9).Apply(&Neighborhood{}, testParams); !got.IsZero() {
		t.Errorf("unknown rule = %v; want zero vector", got)
	}
}
