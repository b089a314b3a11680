package mcmc

import (
	"fmt"

	"github.com/mcmcgo/twalk/rng"
)

// Sampler is a single-variable MCMC step method.
type Sampler interface {
	// Step runs one iteration.
	Step() error
	// Variable returns the variable under sampling.
	Variable() Stochastic
	// LogP returns the last known log-probability of the variable's
	// visible value (NaN before the first evaluation).
	LogP() float64
	// NAccepted and NRejected return total proposal counts.
	NAccepted() int
	NRejected() int
	// Tune adapts proposal scales given a recent acceptance rate and
	// reports whether anything changed.
	Tune(rate float64) bool
	// Tally reports whether this sampler's values go to the trace.
	Tally() bool
	// State exports resumable state; SetState restores it.
	State() *State
	SetState(*State) error
}

// State is the serializable state of a sampler. The t-walk fills both
// points and per-kernel counters; Metropolis uses the primary point,
// single-element counters and the proposal scale.
type State struct {
	Primary   []float64 `json:"primary"`
	Auxiliary []float64 `json:"auxiliary,omitempty"`
	Accepted  []int     `json:"accepted"`
	Rejected  []int     `json:"rejected"`
	SD        float64   `json:"sd,omitempty"`
	Steps     int       `json:"steps"`
}

// TWalkCompetence scores the applicability of the t-walk to a
// variable on the usual 0 to 3 scale. The t-walk pays off on larger
// continuous variables.
func TWalkCompetence(v Stochastic) int {
	if !v.Continuous() || v.Len() <= 4 {
		return 0
	}
	if v.Len() >= 10 {
		return 2
	}
	return 1
}

// MetropolisCompetence scores the Metropolis sampler: a safe default
// for any continuous variable.
func MetropolisCompetence(v Stochastic) int {
	if v.Continuous() {
		return 1
	}
	return 0
}

// Assign builds the most competent sampler for a variable, the t-walk
// winning ties.
func Assign(v Stochastic, gen *rng.Generator) (Sampler, error) {
	tw, mh := TWalkCompetence(v), MetropolisCompetence(v)
	if tw == 0 && mh == 0 {
		return nil, fmt.Errorf("mcmc: no competent sampler for variable %s", v.Name())
	}
	if tw >= mh {
		return NewTWalk(v, nil, gen)
	}
	return NewMetropolis(v, nil, gen), nil
}
