package mcmc

import (
	"errors"
	"fmt"
	"math"

	"github.com/mcmcgo/twalk/rng"
)

// MetropolisSettings are the tunables of the Metropolis sampler.
type MetropolisSettings struct {
	// SD is the initial proposal scale.
	SD float64
	// Tally reports whether this sampler's values should be recorded
	// in the trace.
	Tally bool
}

// NewMetropolisSettings returns the defaults.
func NewMetropolisSettings() *MetropolisSettings {
	return &MetropolisSettings{
		SD:    1e-2,
		Tally: true,
	}
}

// Metropolis is a symmetric random-walk Metropolis sampler with the
// classic acceptance-driven scale adaptation. It mainly serves small
// variables the t-walk is not competent for.
type Metropolis struct {
	v        Stochastic
	gen      *rng.Generator
	settings *MetropolisSettings

	sd   float64
	prop []float64
	logp float64

	accepted int
	rejected int
	steps    int
}

// NewMetropolis creates a Metropolis sampler for a variable. Nil
// settings mean NewMetropolisSettings defaults.
func NewMetropolis(v Stochastic, settings *MetropolisSettings, gen *rng.Generator) *Metropolis {
	if settings == nil {
		settings = NewMetropolisSettings()
	}
	m := &Metropolis{
		v:        v,
		gen:      gen,
		settings: settings,
		sd:       settings.SD,
		prop:     make([]float64, v.Len()),
		logp:     math.NaN(),
	}
	if lp, err := v.LogP(); err == nil {
		m.logp = lp
	}
	return m
}

// Step runs one Metropolis iteration.
func (m *Metropolis) Step() error {
	m.steps++

	logp, err := m.v.LogP()
	if err != nil {
		return fmt.Errorf("metropolis %s: log-probability at current point: %v", m.v.Name(), err)
	}
	m.logp = logp

	x := m.v.Value()
	for i := range m.prop {
		m.prop[i] = x[i] + m.sd*m.gen.NormFloat64()
	}
	m.v.SetValue(m.prop)

	logpP, err := m.v.LogP()
	if err != nil {
		if errors.Is(err, ErrZeroProb) {
			m.v.Revert()
			m.rejected++
			return nil
		}
		m.v.Revert()
		return fmt.Errorf("metropolis %s: log-probability at proposal: %v", m.v.Name(), err)
	}

	if math.Log(m.gen.Float64()) <= logpP-logp {
		m.logp = logpP
		m.accepted++
	} else {
		m.v.Revert()
		m.rejected++
	}
	return nil
}

// Variable returns the sampled variable.
func (m *Metropolis) Variable() Stochastic {
	return m.v
}

// LogP returns the last known log-probability of the current value.
func (m *Metropolis) LogP() float64 {
	return m.logp
}

// NAccepted returns the number of accepted proposals.
func (m *Metropolis) NAccepted() int {
	return m.accepted
}

// NRejected returns the number of rejected proposals.
func (m *Metropolis) NRejected() int {
	return m.rejected
}

// SD returns the current proposal scale.
func (m *Metropolis) SD() float64 {
	return m.sd
}

// Tally reports whether this sampler's values go to the trace.
func (m *Metropolis) Tally() bool {
	return m.settings.Tally
}

// Tune adjusts the proposal scale from a recent acceptance rate using
// the standard ladder and reports whether the scale changed.
func (m *Metropolis) Tune(rate float64) bool {
	factor := 1.0
	switch {
	case rate < 0.001:
		factor = 0.1
	case rate < 0.05:
		factor = 0.5
	case rate < 0.2:
		factor = 0.9
	case rate > 0.95:
		factor = 10
	case rate > 0.75:
		factor = 2
	}
	if factor == 1.0 {
		return false
	}
	m.sd *= factor
	log.Debugf("%s: proposal sd tuned to %g (acceptance %.3f)", m.v.Name(), m.sd, rate)
	return true
}

// State exports the resumable sampler state.
func (m *Metropolis) State() *State {
	return &State{
		Primary:  append([]float64(nil), m.v.Value()...),
		Accepted: []int{m.accepted},
		Rejected: []int{m.rejected},
		SD:       m.sd,
		Steps:    m.steps,
	}
}

// SetState restores a previously exported state.
func (m *Metropolis) SetState(s *State) error {
	if len(s.Primary) != m.v.Len() {
		return fmt.Errorf("metropolis: state dimension %d does not match variable %s (%d)",
			len(s.Primary), m.v.Name(), m.v.Len())
	}
	if len(s.Accepted) != 1 || len(s.Rejected) != 1 {
		return fmt.Errorf("metropolis: state carries %d counters, want 1", len(s.Accepted))
	}
	m.v.SetValue(s.Primary)
	m.accepted = s.Accepted[0]
	m.rejected = s.Rejected[0]
	if s.SD > 0 {
		m.sd = s.SD
	}
	m.steps = s.Steps
	m.logp = math.NaN()
	return nil
}
