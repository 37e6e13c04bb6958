package flock

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig      = errors.New("invalid flock config")
	ErrNegativeTimeStep   = errors.New("negative time step")
	ErrInvalidTimeStep    = errors.New("non-finite time step")
	ErrAgentOutOfRange    = errors.New("agent index out of range")
	ErrNumericInstability = errors.New("numeric instability")
)

// InstabilityError lists the agents whose state became non-finite during a
// step and was reset. errors.Is(err, ErrNumericInstability) holds for it.
type InstabilityError struct {
	Step   uint64
	Agents []int
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s at step %d: %d agent(s) reset %v",
		ErrNumericInstability, e.Step, len(e.Agents), e.Agents)
}

func (e *InstabilityError) Unwrap() error {
	return ErrNumericInstability
}
