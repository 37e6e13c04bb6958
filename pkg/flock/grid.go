package flock

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Neighborhood is what a neighbour query returns for one agent: its own
// position and velocity plus those of every agent found in the 3x3 block of
// cells around it. The slices are reused from one query to the next.
type Neighborhood struct {
	Self       int
	Position   geometry.Vector2D
	Velocity   geometry.Vector2D
	Positions  []geometry.Vector2D
	Velocities []geometry.Vector2D
}

// Len returns the number of neighbours found.
func (nb *Neighborhood) Len() int {
	return len(nb.Positions)
}

func (nb *Neighborhood) reset(i int, st *AgentState) {
	nb.Self = i
	nb.Position = st.Position[i]
	nb.Velocity = st.Velocity[i]
	nb.Positions = nb.Positions[:0]
	nb.Velocities = nb.Velocities[:0]
}

// SpatialIndex partitions the unit torus into slices x slices cells.
// Cells live in one flat slice indexed by cy*slices+cx, and each cell keeps
// the capacity of its agent list between rebuilds.
type SpatialIndex struct {
	slices int
	cells  [][]int
	cellOf []int // agent -> cell id, valid after Rebuild
}

// NewSpatialIndex creates an empty index. slices must be at least 1.
func NewSpatialIndex(slices int) (*SpatialIndex, error) {
	if slices < 1 {
		return nil, fmt.Errorf("%w: gridSlices must be >= 1, got %d", ErrInvalidConfig, slices)
	}
	return &SpatialIndex{
		slices: slices,
		cells:  make([][]int, slices*slices),
	}, nil
}

// Slices returns the number of cells along each axis.
func (g *SpatialIndex) Slices() int {
	return g.slices
}

// axisCell maps one coordinate to its cell column (or row).
// A coordinate equal to k/slices lands in cell k.
func (g *SpatialIndex) axisCell(x float64) int {
	c := int(math.Floor(geometry.WrapUnit(x) * float64(g.slices)))
	c %= g.slices
	if c < 0 {
		c += g.slices
	}
	return c
}

// Cell returns the cell coordinates of position p.
func (g *SpatialIndex) Cell(p geometry.Vector2D) (cx, cy int) {
	return g.axisCell(p.X), g.axisCell(p.Y)
}

// CellID returns the flat index of the cell holding p.
func (g *SpatialIndex) CellID(p geometry.Vector2D) int {
	cx, cy := g.Cell(p)
	return cy*g.slices + cx
}

// Occupancy returns how many agents the last Rebuild put in cell id.
func (g *SpatialIndex) Occupancy(id int) int {
	return len(g.cells[id])
}

// Rebuild empties every cell and inserts each agent index exactly once,
// in increasing index order.
func (g *SpatialIndex) Rebuild(positions []geometry.Vector2D) {
	// Truncate instead of reallocating: the cell arrays are reused every step.
	for c := range g.cells {
		g.cells[c] = g.cells[c][:0]
	}
	if cap(g.cellOf) < len(positions) {
		g.cellOf = make([]int, len(positions))
	}
	g.cellOf = g.cellOf[:len(positions)]

	for i, p := range positions {
		id := g.CellID(p)
		g.cellOf[i] = id
		g.cells[id] = append(g.cells[id], i)
	}
}

// adjacent writes the distinct wrapped coordinates c-1, c, c+1 into out.
// With fewer than 3 slices some of them coincide and are kept once.
func (g *SpatialIndex) adjacent(c int, out *[3]int) int {
	n := 0
	for d := -1; d <= 1; d++ {
		v := (c + d + g.slices) % g.slices
		seen := false
		for _, o := range out[:n] {
			if o == v {
				seen = true
				break
			}
		}
		if !seen {
			out[n] = v
			n++
		}
	}
	return n
}

// forEachNeighbor calls fn for every agent in the 3x3 block around agent i,
// except i itself.
func (g *SpatialIndex) forEachNeighbor(i int, fn func(j int)) {
	id := g.cellOf[i]
	var cols, rows [3]int
	nc := g.adjacent(id%g.slices, &cols)
	nr := g.adjacent(id/g.slices, &rows)

	for _, r := range rows[:nr] {
		for _, c := range cols[:nc] {
			for _, j := range g.cells[r*g.slices+c] {
				if j != i {
					fn(j)
				}
			}
		}
	}
}

// Query fills nb with agent i and its grid neighbours taken from st.
// Rebuild must have been called with st.Position beforehand.
func (g *SpatialIndex) Query(i int, st *AgentState, nb *Neighborhood) {
	nb.reset(i, st)
	g.forEachNeighbor(i, func(j int) {
		nb.Positions = append(nb.Positions, st.Position[j])
		nb.Velocities = append(nb.Velocities, st.Velocity[j])
	})
}

// NeighborIndices appends the indices of agent i's grid neighbours to dst.
func (g *SpatialIndex) NeighborIndices(i int, dst []int) []int {
	g.forEachNeighbor(i, func(j int) {
		dst = append(dst, j)
	})
	return dst
}
