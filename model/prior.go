package model

import (
	"math"

	"github.com/gonum/stat/distuv"
)

// Scalar priors return a log-density for a single coordinate. Bad
// hyperparameters panic: priors are constructed once, at model
// building time.

func UniformPrior(min, max float64, incmin, incmax bool) func(float64) float64 {
	if max <= min {
		panic("max <= min")
	}
	return func(x float64) float64 {
		if (incmin && x < min) ||
			(!incmin && x <= min) ||
			(incmax && x > max) ||
			(!incmax && x >= max) {
			return math.Inf(-1)
		}
		return -math.Log(max - min)
	}
}

func NormalPrior(mean, sd float64) func(float64) float64 {
	if sd <= 0 {
		panic("sd of normal distribution must be > 0")
	}
	dist := distuv.Normal{Mu: mean, Sigma: sd}
	return dist.LogProb
}

func GammaPrior(shape, scale float64, inczero bool) func(float64) float64 {
	if shape <= 0 || scale <= 0 {
		panic("shape and scale of gamma distribution must be > 0")
	}
	dist := distuv.Gamma{Alpha: shape, Beta: 1 / scale}
	return func(x float64) float64 {
		if x < 0 || (x == 0 && !inczero) {
			return math.Inf(-1)
		}
		return dist.LogProb(x)
	}
}

func ExponentialPrior(rate float64, inczero bool) func(float64) float64 {
	if rate <= 0 {
		panic("exponential rate should be > 0")
	}
	dist := distuv.Exponential{Rate: rate}
	return func(x float64) float64 {
		if x < 0 || (x == 0 && !inczero) {
			return math.Inf(-1)
		}
		return dist.LogProb(x)
	}
}

// ProductPrior is the density product of two priors, i.e. the sum of
// their log-densities.
func ProductPrior(f, g func(float64) float64) func(float64) float64 {
	return func(x float64) float64 {
		return f(x) + g(x)
	}
}

// IID lifts a scalar prior to a vector density with independent
// identically distributed coordinates.
func IID(prior func(float64) float64) LogDensity {
	return func(x []float64) float64 {
		res := 0.0
		for _, v := range x {
			res += prior(v)
		}
		return res
	}
}
