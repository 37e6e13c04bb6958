package flock

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

func newTestIndex(t testing.TB, n int) *SpatialIndex {
	t.Helper()
	g, err := NewSpatialIndex(n)
	if err != nil {
		t.Fatalf("NewSpatialIndex(%d) failed: %v", n, err)
	}
	return g
}

func stateAt(positions ...geometry.Vector2D) *AgentState {
	st := newAgentState(len(positions))
	copy(st.Position, positions)
	return &st
}

func TestNewSpatialIndex_RejectsEmptyGrid(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := NewSpatialIndex(n); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewSpatialIndex(%d) error = %v; want ErrInvalidConfig", n, err)
		}
	}
}

func TestSpatialIndex_Cell(t *testing.T) {
	g := newTestIndex(t, 4)
	tests := []struct {
		name   string
		p      geometry.Vector2D
		cx, cy int
	}{
		{"origin", geometry.Vector2D{X: 0, Y: 0}, 0, 0},
		{"boundary goes to larger cell", geometry.Vector2D{X: 0.25, Y: 0.5}, 1, 2},
		{"last cell", geometry.Vector2D{X: 0.999, Y: 0.999}, 3, 3},
		{"wrapped input", geometry.Vector2D{X: 1.0, Y: -0.25}, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := g.Cell(tt.p)
			if cx != tt.cx || cy != tt.cy {
				t.Errorf("Cell(%v) = (%d, %d); want (%d, %d)", tt.p, cx, cy, tt.cx, tt.cy)
			}
			if id := g.CellID(tt.p); id != tt.cy*4+tt.cx {
				t.Errorf("CellID(%v) = %d; want %d", tt.p, id, tt.cy*4+tt.cx)
			}
		})
	}
}

func TestSpatialIndex_RebuildKeepsEveryAgentOnce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	positions := make([]geometry.Vector2D, 500)
	g := newTestIndex(t, 7)

	for round := 0; round < 3; round++ {
		for i := range positions {
			positions[i] = geometry.Vector2D{X: rng.Float64(), Y: rng.Float64()}
		}
		g.Rebuild(positions)

		seen := make([]int, len(positions))
		total := 0
		for id, cell := range g.cells {
			total += g.Occupancy(id)
			for _, i := range cell {
				seen[i]++
				if g.CellID(positions[i]) != id {
					t.Fatalf("round %d: agent %d filed in cell %d, belongs to %d", round, i, id, g.CellID(positions[i]))
				}
			}
		}
		if total != len(positions) {
			t.Fatalf("round %d: grid holds %d agents; want %d", round, total, len(positions))
		}
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("round %d: agent %d appears %d times", round, i, n)
			}
		}
	}
}

func TestSpatialIndex_QueryWrapsAcrossEdges(t *testing.T) {
	g := newTestIndex(t, 10)
	st := stateAt(
		geometry.Vector2D{X: 0.01, Y: 0.5},
		geometry.Vector2D{X: 0.99, Y: 0.5},
		geometry.Vector2D{X: 0.5, Y: 0.5},
		geometry.Vector2D{X: 0.01, Y: 0.99},
		geometry.Vector2D{X: 0.99, Y: 0.01},
	)
	st.Velocity[1] = geometry.Vector2D{X: 0.1, Y: -0.2}
	g.Rebuild(st.Position)

	if got := g.NeighborIndices(0, nil); !slices.Equal(got, []int{1}) {
		t.Errorf("neighbours of agent 0 = %v; want [1]", got)
	}
	if got := g.NeighborIndices(2, nil); len(got) != 0 {
		t.Errorf("neighbours of agent 2 = %v; want none", got)
	}
	// (0.01, 0.99) and (0.99, 0.01) touch through the corner.
	if got := g.NeighborIndices(3, nil); !slices.Equal(got, []int{4}) {
		t.Errorf("neighbours of agent 3 = %v; want [4]", got)
	}

	var nb Neighborhood
	g.Query(0, st, &nb)
	if nb.Self != 0 || nb.Len() != 1 {
		t.Fatalf("Query(0) = self %d with %d neighbours; want self 0 with 1", nb.Self, nb.Len())
	}
	if nb.Positions[0] != st.Position[1] || nb.Velocities[0] != st.Velocity[1] {
		t.Errorf("Query(0) returned %v/%v; want agent 1's %v/%v",
			nb.Positions[0], nb.Velocities[0], st.Position[1], st.Velocity[1])
	}
}

func TestSpatialIndex_QuerySmallGrids(t *testing.T) {
	positions := []geometry.Vector2D{
		{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.9}, {X: 0.4, Y: 0.6}, {X: 0.6, Y: 0.4}, {X: 0.5, Y: 0.5},
	}
	for _, n := range []int{1, 2} {
		g := newTestIndex(t, n)
		g.Rebuild(positions)
		for i := range positions {
			got := g.NeighborIndices(i, nil)
			slices.Sort(got)
			want := make([]int, 0, len(positions)-1)
			for j := range positions {
				if j != i {
					want = append(want, j)
				}
			}
			if !slices.Equal(got, want) {
				t.Errorf("slices=%d: neighbours of %d = %v; want %v", n, i, got, want)
			}
		}
	}
}

func TestSpatialIndex_QueryIgnoresDistantCells(t *testing.T) {
	g := newTestIndex(t, 10)
	st := stateAt(
		geometry.Vector2D{X: 0.15, Y: 0.15}, // cell (1,1)
		geometry.Vector2D{X: 0.05, Y: 0.05}, // cell (0,0), adjacent
		geometry.Vector2D{X: 0.35, Y: 0.35}, // cell (3,3), two cells away
	)
	g.Rebuild(st.Position)

	got := g.NeighborIndices(0, nil)
	if !slices.Equal(got, []int{1}) {
		t.Errorf("neighbours of agent 0 = %v; want [1]", got)
	}
}

func BenchmarkSpatialIndex_Rebuild(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	positions := make([]geometry.Vector2D, 5000)
	for i := range positions {
		positions[i] = geometry.Vector2D{X: rng.Float64(), Y: rng.Float64()}
	}
	g := newTestIndex(b, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Rebuild(positions)
	}
}

func BenchmarkSpatialIndex_Query(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	st := newAgentState(5000)
	for i := range st.Position {
		st.Position[i] = geometry.Vector2D{X: rng.Float64(), Y: rng.Float64()}
	}
	g := newTestIndex(b, 20)
	g.Rebuild(st.Position)
	var nb Neighborhood

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Query(i%st.Len(), &st, &nb)
	}
}
