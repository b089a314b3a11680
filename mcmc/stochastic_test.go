package mcmc

import (
	"math"

	"github.com/mcmcgo/twalk/rng"
)

const smallDiff = 1e-6

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

/*** Tests that arrays have approximately same values ***/
func cmp(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !appreq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// testStochastic is a minimal continuous variable with a pluggable
// log-density, counting evaluations.
type testStochastic struct {
	name     string
	value    []float64
	prev     []float64
	logp     func(x []float64) (float64, error)
	gen      *rng.Generator
	discrete bool

	logpCalls   int
	randomCalls int
}

func newTestStochastic(name string, init []float64, logp func([]float64) (float64, error), gen *rng.Generator) *testStochastic {
	return &testStochastic{
		name:  name,
		value: append([]float64(nil), init...),
		prev:  append([]float64(nil), init...),
		logp:  logp,
		gen:   gen,
	}
}

func (s *testStochastic) Name() string {
	return s.name
}

func (s *testStochastic) Value() []float64 {
	return s.value
}

func (s *testStochastic) SetValue(x []float64) {
	s.prev, s.value = s.value, s.prev
	if len(s.value) != len(x) {
		s.value = make([]float64, len(x))
	}
	copy(s.value, x)
}

func (s *testStochastic) Revert() {
	s.prev, s.value = s.value, s.prev
}

func (s *testStochastic) LogP() (float64, error) {
	s.logpCalls++
	return s.logp(s.value)
}

func (s *testStochastic) Random() ([]float64, error) {
	s.randomCalls++
	x := make([]float64, len(s.value))
	for i := range x {
		x[i] = s.gen.NormFloat64()
	}
	s.SetValue(x)
	return s.value, nil
}

func (s *testStochastic) Len() int {
	return len(s.value)
}

func (s *testStochastic) Continuous() bool {
	return !s.discrete
}

func stdNormalLogP(x []float64) (float64, error) {
	res := 0.0
	for _, v := range x {
		res += -0.5*v*v - 0.5*math.Log(2*math.Pi)
	}
	return res, nil
}

// boxLogP is flat inside [0, 1] in every coordinate and zero
// probability outside.
func boxLogP(x []float64) (float64, error) {
	for _, v := range x {
		if v < 0 || v > 1 {
			return 0, ErrZeroProb
		}
	}
	return 0, nil
}
