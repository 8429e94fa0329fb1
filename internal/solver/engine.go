package solver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one Solve call.
type Status int

const (
	// StatusUnknown means no usable assignment was found within the budget.
	StatusUnknown Status = iota
	// StatusInfeasible means the model was proven to have no solution.
	StatusInfeasible
	// StatusFeasible means Values satisfies every constraint.
	StatusFeasible
	// StatusOptimal means Values is feasible and its objective cannot be beaten.
	StatusOptimal
)

func (s Status) String() string {
	switch s {
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusOptimal:
		return "OPTIMAL"
	default:
		return "UNKNOWN"
	}
}

// Solved reports whether the status carries a usable assignment.
func (s Status) Solved() bool {
	return s == StatusFeasible || s == StatusOptimal
}

// Result is what an Engine returns.
type Result struct {
	Status     Status
	Values     []bool
	Objective  int
	Iterations int
	// Restarts counts the searches that followed the first one.
	Restarts int
	Elapsed  time.Duration
	// Conflict names the constraint that root propagation could not satisfy.
	// It is empty when the infeasibility was proven by search.
	Conflict string
	Err      error
}

// Engine solves a Model. Implementations must return once ctx is done.
type Engine interface {
	Solve(ctx context.Context, m *Model) Result
}

// Engine names accepted by NewEngine.
const (
	EngineSAT   = "sat"
	EngineLocal = "local"
)

// NewEngine returns the engine called name. An empty name selects SAT.
func NewEngine(name string, opts Options) (Engine, error) {
	switch strings.ToLower(name) {
	case "", EngineSAT:
		return NewSAT(opts), nil
	case EngineLocal:
		return NewLocalSearch(opts), nil
	}
	return nil, fmt.Errorf("unknown solver engine %q", name)
}
