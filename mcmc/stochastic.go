// Package mcmc implements MCMC step methods for continuous model
// variables: the t-walk sampler of Christen and Fox (2010), a classic
// adaptive-scale Metropolis sampler, and a chain driver with
// reporting, tallying and checkpoint support.
package mcmc

import (
	"errors"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("mcmc")

// ErrZeroProb signals a zero or otherwise invalid probability.
// Stochastic implementations return it from LogP; the step methods
// treat it as an ordinary rejection when it occurs at a proposed
// point.
var ErrZeroProb = errors.New("zero probability")

// ErrStuck is returned by a step when no proposal satisfying the
// support predicate was found within the retry bound.
var ErrStuck = errors.New("no proposal in support after retry limit")

// Stochastic is the contract a model variable must satisfy to be
// sampled.
type Stochastic interface {
	// Name returns the variable name.
	Name() string
	// Value returns the current flattened value. Callers must not
	// modify the returned slice.
	Value() []float64
	// SetValue replaces the current value, remembering the previous
	// one. The slice is copied in.
	SetValue(x []float64)
	// Revert restores the value held before the most recent SetValue.
	Revert()
	// LogP returns the variable's own log-density plus the
	// contributions of its dependent factors. Zero or invalid
	// densities are signalled with ErrZeroProb.
	LogP() (float64, error)
	// Random draws an independent sample from the variable's own
	// distribution and makes it the current value. It is used to seed
	// the t-walk's auxiliary point.
	Random() ([]float64, error)
	// Len returns the number of elements of the flattened value.
	Len() int
	// Continuous reports whether the variable is real-valued.
	Continuous() bool
}
