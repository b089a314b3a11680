package mcmc

import (
	"errors"
	"fmt"
	"math"

	"github.com/mcmcgo/twalk/rng"
)

// TWalkSettings are the tunables of the t-walk sampler.
type TWalkSettings struct {
	// Inits is an optional starting auxiliary point. When nil the
	// auxiliary point is drawn from the variable itself.
	Inits []float64
	// KernelWeights are the relative probabilities of the walk,
	// traverse, blow and hop moves. They need not sum to one; they
	// are normalized internally.
	KernelWeights [NKernels]float64
	// WalkTheta is the walk move parameter. Christen and Fox
	// recommend values in [0.3, 2].
	WalkTheta float64
	// TraverseTheta is the traverse move parameter. Christen and Fox
	// recommend values in [2, 10].
	TraverseTheta float64
	// N1 is the expected number of coordinates to update per step.
	// Christen and Fox recommend values in [2, 20].
	N1 int
	// Support restricts proposals to a subset of the space. Nil
	// means the full space.
	Support func(x []float64) bool
	// MaxSupportRetries bounds the number of support-rejected
	// proposals per step before Step gives up with ErrStuck.
	MaxSupportRetries int
	// Verbosity controls diagnostic output (0 to 3). It has no
	// behavioral effect.
	Verbosity int
	// Tally reports whether this sampler's values should be recorded
	// in the trace.
	Tally bool
}

// NewTWalkSettings returns the recommended defaults.
func NewTWalkSettings() *TWalkSettings {
	return &TWalkSettings{
		KernelWeights:     [NKernels]float64{0.4918, 0.4918, 0.0082, 0.0082},
		WalkTheta:         1.5,
		TraverseTheta:     6.0,
		N1:                4,
		MaxSupportRetries: 100000,
		Tally:             true,
	}
}

// TWalk samples a continuous variable with the t-walk algorithm of
// Christen and Fox (2010). It keeps two points in the variable's
// state space; each step updates one of them (the pivot) using the
// other as reference through one of four scale-free proposal
// kernels. Between steps the variable always shows the primary
// point.
type TWalk struct {
	v        Stochastic
	gen      *rng.Generator
	settings *TWalkSettings

	n int
	// p is the per-coordinate selection probability, min(n1, n)/n.
	p   float64
	cum [NKernels]float64

	primary   []float64
	auxiliary []float64
	prime     bool

	phi  []bool
	prop []float64

	kernels    [NKernels]func(x, xp []float64)
	current    Kernel
	hastings   float64
	degenerate bool

	logPri float64

	accepted [NKernels]int
	rejected [NKernels]int
	steps    int
}

// NewTWalk creates a t-walk sampler for a variable. Nil settings mean
// NewTWalkSettings defaults. When no initial auxiliary point is
// supplied one is drawn from the variable; the variable's visible
// value is restored afterwards.
func NewTWalk(v Stochastic, settings *TWalkSettings, gen *rng.Generator) (*TWalk, error) {
	if settings == nil {
		settings = NewTWalkSettings()
	}
	n := v.Len()
	if n == 0 {
		return nil, fmt.Errorf("twalk: variable %s has zero length", v.Name())
	}
	if settings.N1 <= 0 {
		return nil, fmt.Errorf("twalk: n1 must be positive, got %d", settings.N1)
	}
	if settings.MaxSupportRetries <= 0 {
		return nil, fmt.Errorf("twalk: support retry bound must be positive, got %d", settings.MaxSupportRetries)
	}
	total := 0.0
	for i, w := range settings.KernelWeights {
		if w < 0 {
			return nil, fmt.Errorf("twalk: negative weight %g for the %v kernel", w, Kernel(i))
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("twalk: kernel weights sum to zero")
	}

	t := &TWalk{
		v:        v,
		gen:      gen,
		settings: settings,
		n:        n,
		phi:      make([]bool, n),
		prop:     make([]float64, n),
		logPri:   math.NaN(),
	}
	sum := 0.0
	for i, w := range settings.KernelWeights {
		sum += w / total
		t.cum[i] = sum
	}
	n1 := settings.N1
	if n1 > n {
		n1 = n
	}
	t.p = float64(n1) / float64(n)
	t.kernels = [NKernels]func(x, xp []float64){
		Walk:     t.walkMove,
		Traverse: t.traverseMove,
		Blow:     t.blowMove,
		Hop:      t.hopMove,
	}

	t.primary = append([]float64(nil), v.Value()...)
	if settings.Inits != nil {
		if len(settings.Inits) != n {
			return nil, fmt.Errorf("twalk: %d initial values for %d-dimensional variable %s",
				len(settings.Inits), n, v.Name())
		}
		t.auxiliary = append([]float64(nil), settings.Inits...)
	} else {
		aux, err := v.Random()
		if err != nil {
			return nil, fmt.Errorf("twalk: drawing auxiliary point for %s: %v", v.Name(), err)
		}
		t.auxiliary = append([]float64(nil), aux...)
		v.SetValue(t.primary)
	}
	if lp, err := v.LogP(); err == nil {
		t.logPri = lp
	}
	return t, nil
}

// Step runs one t-walk iteration.
func (t *TWalk) Step() error {
	t.steps++

	// The pivot alternates between the two points; detailed balance
	// holds on the product space.
	t.prime = t.gen.Float64() < 0.5
	pivot, other := t.primary, t.auxiliary
	if t.prime {
		pivot, other = t.auxiliary, t.primary
		t.v.SetValue(pivot)
	}

	logp, err := t.v.LogP()
	if err != nil {
		if t.prime {
			t.v.SetValue(t.primary)
		}
		return fmt.Errorf("twalk %s: log-probability at current point: %v", t.v.Name(), err)
	}
	if !t.prime {
		t.logPri = logp
	}

	supported := false
	for retry := 0; retry < t.settings.MaxSupportRetries; retry++ {
		t.propose(pivot, other)
		if t.settings.Support == nil || t.settings.Support(t.prop) {
			supported = true
			break
		}
	}
	if !supported {
		if t.prime {
			t.v.SetValue(t.primary)
		}
		return ErrStuck
	}

	if t.nphi() == 0 || t.degenerate {
		// A proposal that moved nothing or collapsed its scale is
		// rejected without evaluating the density.
		if t.settings.Verbosity > 1 {
			log.Debugf("%s: rejecting degenerate %v proposal", t.v.Name(), t.current)
		}
		t.reject()
		return nil
	}

	t.v.SetValue(t.prop)
	logpP, err := t.v.LogP()
	if err != nil {
		if errors.Is(err, ErrZeroProb) {
			if t.settings.Verbosity > 1 {
				log.Debugf("%s: rejecting %v proposal with zero probability", t.v.Name(), t.current)
			}
			t.reject()
			return nil
		}
		t.v.SetValue(t.primary)
		return fmt.Errorf("twalk %s: log-probability at proposal: %v", t.v.Name(), err)
	}

	if math.Log(t.gen.Float64()) <= logpP-logp+t.hastings {
		t.accepted[t.current]++
		copy(pivot, t.prop)
		if !t.prime {
			t.logPri = logpP
		}
		if t.settings.Verbosity > 1 {
			log.Debugf("%s: accepting %v proposal (dlogp=%g, hastings=%g)",
				t.v.Name(), t.current, logpP-logp, t.hastings)
		}
		if t.prime {
			t.v.SetValue(t.primary)
		}
		return nil
	}
	t.reject()
	return nil
}

// propose selects a kernel, redraws the coordinate mask and builds a
// proposal from the pivot.
func (t *TWalk) propose(x, xp []float64) {
	u := t.gen.Float64()
	t.current = NKernels - 1
	for k := Walk; k < NKernels; k++ {
		if u <= t.cum[k] {
			t.current = k
			break
		}
	}
	for i := range t.phi {
		t.phi[i] = t.gen.Float64() < t.p
	}
	t.degenerate = false
	t.kernels[t.current](x, xp)
	if t.settings.Verbosity > 2 {
		log.Debugf("%s: %v proposal %v", t.v.Name(), t.current, t.prop)
	}
}

// reject counts a rejection and restores the visible value to the
// primary point. The pivot slot keeps its last accepted value.
func (t *TWalk) reject() {
	t.rejected[t.current]++
	t.v.SetValue(t.primary)
}

// nphi counts the masked coordinates of the current proposal.
func (t *TWalk) nphi() int {
	n := 0
	for _, on := range t.phi {
		if on {
			n++
		}
	}
	return n
}

// Variable returns the sampled variable.
func (t *TWalk) Variable() Stochastic {
	return t.v
}

// LogP returns the last known log-probability of the primary point.
// It is NaN until the primary point is first evaluated.
func (t *TWalk) LogP() float64 {
	return t.logPri
}

// Accepted returns the per-kernel accepted counts.
func (t *TWalk) Accepted() [NKernels]int {
	return t.accepted
}

// Rejected returns the per-kernel rejected counts.
func (t *TWalk) Rejected() [NKernels]int {
	return t.rejected
}

// NAccepted returns the total number of accepted proposals.
func (t *TWalk) NAccepted() int {
	n := 0
	for _, a := range t.accepted {
		n += a
	}
	return n
}

// NRejected returns the total number of rejected proposals.
func (t *TWalk) NRejected() int {
	n := 0
	for _, r := range t.rejected {
		n += r
	}
	return n
}

// Points returns copies of the primary and auxiliary points.
func (t *TWalk) Points() (primary, auxiliary []float64) {
	return append([]float64(nil), t.primary...), append([]float64(nil), t.auxiliary...)
}

// Tally reports whether this sampler's values go to the trace.
func (t *TWalk) Tally() bool {
	return t.settings.Tally
}

// Tune is a no-op: the t-walk needs no scale adaptation.
func (t *TWalk) Tune(float64) bool {
	return false
}

// State exports the resumable sampler state.
func (t *TWalk) State() *State {
	return &State{
		Primary:   append([]float64(nil), t.primary...),
		Auxiliary: append([]float64(nil), t.auxiliary...),
		Accepted:  append([]int(nil), t.accepted[:]...),
		Rejected:  append([]int(nil), t.rejected[:]...),
		Steps:     t.steps,
	}
}

// SetState restores a previously exported state and syncs the
// variable to the restored primary point.
func (t *TWalk) SetState(s *State) error {
	if len(s.Primary) != t.n || len(s.Auxiliary) != t.n {
		return fmt.Errorf("twalk: state dimension %d/%d does not match variable %s (%d)",
			len(s.Primary), len(s.Auxiliary), t.v.Name(), t.n)
	}
	if len(s.Accepted) != int(NKernels) || len(s.Rejected) != int(NKernels) {
		return fmt.Errorf("twalk: state carries %d kernel counters, want %d",
			len(s.Accepted), NKernels)
	}
	copy(t.primary, s.Primary)
	copy(t.auxiliary, s.Auxiliary)
	copy(t.accepted[:], s.Accepted)
	copy(t.rejected[:], s.Rejected)
	t.steps = s.Steps
	t.logPri = math.NaN()
	t.v.SetValue(t.primary)
	if lp, err := t.v.LogP(); err == nil {
		t.logPri = lp
	}
	return nil
}
