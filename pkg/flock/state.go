package flock

import "github.com/lao-tseu-is-alive/go-boids/pkg/geometry"

// AgentState holds the per-agent arrays. Agent i is Position[i], Velocity[i]
// and Force[i]; the three slices always have the same length.
type AgentState struct {
	Position []geometry.Vector2D
	Velocity []geometry.Vector2D
	Force    []geometry.Vector2D
}

func newAgentState(n int) AgentState {
	return AgentState{
		Position: make([]geometry.Vector2D, n),
		Velocity: make([]geometry.Vector2D, n),
		Force:    make([]geometry.Vector2D, n),
	}
}

// Len returns the number of agents.
func (s *AgentState) Len() int {
	return len(s.Position)
}

func (s *AgentState) resetForces() {
	clear(s.Force)
}

// domainCentre is where an agent whose position is lost gets placed back.
var domainCentre = geometry.Vector2D{X: 0.5, Y: 0.5}

// sanitize resets agent i when its position or velocity is not finite.
// It returns false when a reset happened.
func (s *AgentState) sanitize(i int) bool {
	posOK, velOK := s.Position[i].IsFinite(), s.Velocity[i].IsFinite()
	if posOK && velOK {
		return true
	}
	if !posOK {
		s.Position[i] = domainCentre
	}
	s.Velocity[i] = geometry.Vector2D{}
	s.Force[i] = geometry.Vector2D{}
	return false
}
