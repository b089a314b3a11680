// Package model provides continuous random variables for the mcmc
// samplers. A variable couples a value vector with its own
// log-density, optional dependent likelihood factors and an optional
// direct sampler, and satisfies the mcmc.Stochastic contract.
package model

import (
	"fmt"
	"math"

	"github.com/op/go-logging"

	"github.com/mcmcgo/twalk/mcmc"
	"github.com/mcmcgo/twalk/rng"
)

// log is the global logging variable.
var log = logging.MustGetLogger("model")

// LogDensity evaluates the log-density of a flattened value.
type LogDensity func(x []float64) float64

// RandomFunc draws an independent sample from a distribution.
type RandomFunc func(gen *rng.Generator) []float64

// Variable is a continuous random vector with a log-density.
type Variable struct {
	name    string
	value   []float64
	prev    []float64
	logd    LogDensity
	factors []LogDensity
	random  RandomFunc
	gen     *rng.Generator
}

// New creates a variable with an initial value and its own
// log-density. The initial value is copied.
func New(name string, init []float64, logd LogDensity, gen *rng.Generator) *Variable {
	return &Variable{
		name:  name,
		value: append([]float64(nil), init...),
		prev:  append([]float64(nil), init...),
		logd:  logd,
		gen:   gen,
	}
}

// WithRandom sets the direct sampler used by Random and returns the
// variable.
func (v *Variable) WithRandom(random RandomFunc) *Variable {
	v.random = random
	return v
}

// AddFactor registers a dependent log-density term, typically the
// likelihood of observed data given this variable.
func (v *Variable) AddFactor(f LogDensity) {
	v.factors = append(v.factors, f)
}

// Name returns the variable name.
func (v *Variable) Name() string {
	return v.name
}

// Value returns the current value. The slice must not be modified by
// the caller.
func (v *Variable) Value() []float64 {
	return v.value
}

// SetValue replaces the current value, remembering the previous one.
func (v *Variable) SetValue(x []float64) {
	v.prev, v.value = v.value, v.prev
	if len(v.value) != len(x) {
		v.value = make([]float64, len(x))
	}
	copy(v.value, x)
}

// Revert restores the value held before the most recent SetValue.
func (v *Variable) Revert() {
	v.prev, v.value = v.value, v.prev
}

// LogP returns the variable's log-density plus all factor
// contributions. Non-finite results are reported as
// mcmc.ErrZeroProb.
func (v *Variable) LogP() (float64, error) {
	res := v.logd(v.value)
	for _, f := range v.factors {
		res += f(v.value)
	}
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, mcmc.ErrZeroProb
	}
	return res, nil
}

// Random draws an independent sample from the variable's own
// distribution and makes it the current value.
func (v *Variable) Random() ([]float64, error) {
	if v.random == nil {
		return nil, fmt.Errorf("model: variable %s has no direct sampler", v.name)
	}
	x := v.random(v.gen)
	if len(x) != len(v.value) {
		return nil, fmt.Errorf("model: direct sampler for %s returned %d values, want %d",
			v.name, len(x), len(v.value))
	}
	log.Debugf("%s: drew %v", v.name, x)
	v.SetValue(x)
	return v.value, nil
}

// Len returns the number of elements of the value.
func (v *Variable) Len() int {
	return len(v.value)
}

// Continuous reports that the variable is real-valued.
func (v *Variable) Continuous() bool {
	return true
}
