// Package rng provides the seeded random source shared by the
// samplers. All stochastic components take an explicit generator, so
// runs with equal seeds are reproducible.
package rng

import (
	"math/rand"

	"github.com/seehuhn/mt19937"
)

// Generator is a Mersenne Twister source wrapped in math/rand. It is
// not safe for concurrent use.
type Generator struct {
	*rand.Rand
	seed int64
}

// New creates a generator from a seed.
func New(seed int64) *Generator {
	src := mt19937.New()
	src.Seed(seed)
	return &Generator{
		Rand: rand.New(src),
		seed: seed,
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Uniforms returns n independent draws from U(0, 1).
func (g *Generator) Uniforms(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = g.Float64()
	}
	return u
}
