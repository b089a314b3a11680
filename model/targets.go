package model

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
	"github.com/gonum/stat/distuv"

	"github.com/mcmcgo/twalk/rng"
)

// Target couples a variable with the support predicate of its
// density. A nil Support means the whole space.
type Target struct {
	*Variable
	Support func(x []float64) bool
}

// PositiveSupport accepts points with all coordinates positive.
func PositiveSupport(x []float64) bool {
	for _, v := range x {
		if v <= 0 {
			return false
		}
	}
	return true
}

// NewNormal builds an n-dimensional standard normal target.
func NewNormal(n int, gen *rng.Generator) *Target {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Source: gen.Rand}
	v := New("normal", make([]float64, n), func(x []float64) float64 {
		res := 0.0
		for _, xi := range x {
			res += dist.LogProb(xi)
		}
		return res
	}, gen)
	v.WithRandom(func(gen *rng.Generator) []float64 {
		x := make([]float64, n)
		for i := range x {
			x[i] = dist.Rand()
		}
		return x
	})
	return &Target{Variable: v}
}

// NewMVNormal builds an n-dimensional normal target with unit
// variances and constant correlation rho between coordinates.
func NewMVNormal(n int, rho float64, gen *rng.Generator) (*Target, error) {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				data[i*n+j] = 1
			} else {
				data[i*n+j] = rho
			}
		}
	}
	cov := mat64.NewSymDense(n, data)
	dist, ok := distmv.NewNormal(make([]float64, n), cov, gen.Rand)
	if !ok {
		return nil, fmt.Errorf("model: correlation %v does not give a positive definite covariance", rho)
	}
	v := New("mvnormal", make([]float64, n), dist.LogProb, gen)
	v.WithRandom(func(gen *rng.Generator) []float64 {
		return dist.Rand(make([]float64, n))
	})
	return &Target{Variable: v}, nil
}

// NewBanana builds the two-dimensional Rosenbrock-shaped target
// exp(-((a-x)^2+b(y-x^2)^2)), a classic curved-ridge benchmark.
func NewBanana(a, b float64, gen *rng.Generator) *Target {
	v := New("banana", []float64{a, a * a}, func(x []float64) float64 {
		d1 := a - x[0]
		d2 := x[1] - x[0]*x[0]
		return -(d1*d1 + b*d2*d2)
	}, gen)
	v.WithRandom(func(gen *rng.Generator) []float64 {
		return []float64{a + 2*gen.NormFloat64(), a*a + 2*gen.NormFloat64()}
	})
	return &Target{Variable: v}
}

// NewGamma builds a one-dimensional gamma target with the given
// shape and rate.
func NewGamma(shape, rate float64, gen *rng.Generator) *Target {
	dist := distuv.Gamma{Alpha: shape, Beta: rate, Source: gen.Rand}
	v := New("gamma", []float64{shape / rate}, func(x []float64) float64 {
		if x[0] <= 0 {
			return math.Inf(-1)
		}
		return dist.LogProb(x[0])
	}, gen)
	v.WithRandom(func(gen *rng.Generator) []float64 {
		return []float64{dist.Rand()}
	})
	return &Target{Variable: v, Support: PositiveSupport}
}

// NewNormalPosterior builds the two-dimensional posterior of a
// normal mean and standard deviation given observed data, with wide
// uniform priors on both.
func NewNormalPosterior(data []float64, gen *rng.Generator) *Target {
	if len(data) < 2 {
		panic("posterior needs at least two observations")
	}
	mean, sd := meanSD(data)
	muPrior := UniformPrior(-100, 100, false, false)
	sdPrior := UniformPrior(0, 100, false, false)
	v := New("posterior", []float64{mean, sd}, func(x []float64) float64 {
		return muPrior(x[0]) + sdPrior(x[1])
	}, gen)
	v.AddFactor(func(x []float64) float64 {
		mu, sigma := x[0], x[1]
		res := 0.0
		for _, d := range data {
			res += -math.Log(sigma*math.Sqrt(2*math.Pi)) - (d-mu)*(d-mu)/2/(sigma*sigma)
		}
		return res
	})
	v.WithRandom(func(gen *rng.Generator) []float64 {
		return []float64{
			mean + sd*gen.NormFloat64(),
			sd * math.Exp(0.5*gen.NormFloat64()),
		}
	})
	return &Target{
		Variable: v,
		Support: func(x []float64) bool {
			return x[1] > 0
		},
	}
}

// GenNormalData draws n observations from N(mean, sd^2).
func GenNormalData(mean, sd float64, n int, gen *rng.Generator) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = gen.NormFloat64()*sd + mean
	}
	return data
}

func meanSD(data []float64) (mean, sd float64) {
	for _, x := range data {
		mean += x
	}
	mean /= float64(len(data))
	for _, x := range data {
		sd += (mean - x) * (mean - x)
	}
	sd /= float64(len(data) - 1)
	sd = math.Sqrt(sd)
	return
}
